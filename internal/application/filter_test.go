package application_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/bursar/internal/application"
)

func TestListFilter_ResolveStatuses(t *testing.T) {
	tests := []struct {
		name           string
		filter         application.ListFilter
		wantStatuses   []application.Status
		wantRestricted bool
	}{
		{
			name:   "Unrestricted",
			filter: application.ListFilter{},
		},
		{
			name:           "ExplicitStatuses",
			filter:         application.ListFilter{Statuses: []application.Status{application.StatusPaid}},
			wantStatuses:   []application.Status{application.StatusPaid},
			wantRestricted: true,
		},
		{
			name:           "FinanceScope",
			filter:         application.ListFilter{Role: application.RoleFinance},
			wantStatuses:   application.Scope(application.RoleFinance),
			wantRestricted: true,
		},
		{
			name: "FinanceIntersection",
			filter: application.ListFilter{
				Role:     application.RoleFinance,
				Statuses: []application.Status{application.StatusPendingSAG, application.StatusPaid, application.StatusPaid},
			},
			wantStatuses:   []application.Status{application.StatusPaid},
			wantRestricted: true,
		},
		{
			name: "ReviewerOutOfScope",
			filter: application.ListFilter{
				Role:     application.RoleReviewer,
				Statuses: []application.Status{application.StatusPaid},
			},
			wantRestricted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, restricted := tt.filter.ResolveStatuses()

			assert.Equal(t, tt.wantRestricted, restricted)
			assert.ElementsMatch(t, tt.wantStatuses, got)
		})
	}
}

func TestListFilter_Matches(t *testing.T) {
	student := uuid.New()
	app := &application.Application{
		URN:              "URN-2026-000007",
		ScholarshipTitle: "STEM Innovation Grant",
		StudentID:        student,
		Status:           application.StatusPendingSAG,
	}

	assert.True(t, application.ListFilter{}.Matches(app))
	assert.True(t, application.ListFilter{Query: "stem"}.Matches(app))
	assert.True(t, application.ListFilter{Query: "000007"}.Matches(app))
	assert.False(t, application.ListFilter{Query: "arts"}.Matches(app))
	assert.True(t, application.ListFilter{StudentID: &student}.Matches(app))
	assert.False(t, application.ListFilter{StudentID: new(uuid.New())}.Matches(app))
	assert.False(t, application.ListFilter{Role: application.RoleFinance}.Matches(app))
	assert.True(t, application.ListFilter{Role: application.RoleReviewer}.Matches(app))
}
