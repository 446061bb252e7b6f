package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/application"
)

func TestEvaluate(t *testing.T) {
	type testCase struct {
		name        string
		app         *application.Application
		req         application.TransitionRequest
		wantTo      application.Status
		wantRemarks *string
		wantAmount  *int64
		wantErr     any
	}

	tests := []testCase{
		{
			name:        "ReviewerApproves",
			app:         &application.Application{Status: application.StatusPendingSAG},
			req:         application.TransitionRequest{Action: application.ActionApprove, ActorRole: application.RoleReviewer, Remarks: "ok"},
			wantTo:      application.StatusApprovedBySAG,
			wantRemarks: new("ok"),
		},
		{
			name:   "ApproveWithoutRemarks",
			app:    &application.Application{Status: application.StatusPendingSAG},
			req:    application.TransitionRequest{Action: application.ActionApprove, ActorRole: application.RoleReviewer},
			wantTo: application.StatusApprovedBySAG,
		},
		{
			name:        "ReviewerRejects",
			app:         &application.Application{Status: application.StatusPendingSAG},
			req:         application.TransitionRequest{Action: application.ActionReject, ActorRole: application.RoleReviewer, Remarks: "  insufficient GPA "},
			wantTo:      application.StatusRejectedBySAG,
			wantRemarks: new("insufficient GPA"),
		},
		{
			name:    "RejectNeedsRemarks",
			app:     &application.Application{Status: application.StatusPendingSAG},
			req:     application.TransitionRequest{Action: application.ActionReject, ActorRole: application.RoleReviewer, Remarks: "   "},
			wantErr: &application.ValidationError{},
		},
		{
			name:   "SystemForwards",
			app:    &application.Application{Status: application.StatusApprovedBySAG},
			req:    application.TransitionRequest{Action: application.ActionForward, ActorRole: application.RoleSystem},
			wantTo: application.StatusPendingFinance,
		},
		{
			name:    "ReviewerCannotForward",
			app:     &application.Application{Status: application.StatusApprovedBySAG},
			req:     application.TransitionRequest{Action: application.ActionForward, ActorRole: application.RoleReviewer},
			wantErr: &application.AuthorizationError{},
		},
		{
			name:        "FinanceDisbursesWithDefaultRemarks",
			app:         &application.Application{Status: application.StatusPendingFinance, Amount: 2500},
			req:         application.TransitionRequest{Action: application.ActionDisburse, ActorRole: application.RoleFinance, Amount: new(int64(2500))},
			wantTo:      application.StatusPaid,
			wantRemarks: new(application.DefaultDisbursalRemarks),
			wantAmount:  new(int64(2500)),
		},
		{
			name:        "FinanceDisbursesWithRemarks",
			app:         &application.Application{Status: application.StatusPendingFinance, Amount: 2500},
			req:         application.TransitionRequest{Action: application.ActionDisburse, ActorRole: application.RoleFinance, Amount: new(int64(2000)), Remarks: "partial award"},
			wantTo:      application.StatusPaid,
			wantRemarks: new("partial award"),
			wantAmount:  new(int64(2000)),
		},
		{
			name:    "DisburseZeroAmount",
			app:     &application.Application{Status: application.StatusPendingFinance},
			req:     application.TransitionRequest{Action: application.ActionDisburse, ActorRole: application.RoleFinance, Amount: new(int64(0))},
			wantErr: &application.ValidationError{},
		},
		{
			name:    "DisburseNegativeAmount",
			app:     &application.Application{Status: application.StatusPendingFinance},
			req:     application.TransitionRequest{Action: application.ActionDisburse, ActorRole: application.RoleFinance, Amount: new(int64(-5))},
			wantErr: &application.ValidationError{},
		},
		{
			name:    "DisburseMissingAmount",
			app:     &application.Application{Status: application.StatusPendingFinance},
			req:     application.TransitionRequest{Action: application.ActionDisburse, ActorRole: application.RoleFinance},
			wantErr: &application.ValidationError{},
		},
		{
			name:        "FinanceRejects",
			app:         &application.Application{Status: application.StatusPendingFinance},
			req:         application.TransitionRequest{Action: application.ActionReject, ActorRole: application.RoleFinance, Remarks: "budget exhausted"},
			wantTo:      application.StatusRejectedByFinance,
			wantRemarks: new("budget exhausted"),
		},
		{
			name:    "StudentCannotAct",
			app:     &application.Application{Status: application.StatusPendingSAG},
			req:     application.TransitionRequest{Action: application.ActionApprove, ActorRole: application.RoleStudent},
			wantErr: &application.AuthorizationError{},
		},
		{
			name:    "FinanceCannotRejectBeforeReview",
			app:     &application.Application{Status: application.StatusPendingSAG},
			req:     application.TransitionRequest{Action: application.ActionReject, ActorRole: application.RoleFinance, Remarks: "no"},
			wantErr: &application.AuthorizationError{},
		},
		{
			name:    "ReviewerCannotDisburse",
			app:     &application.Application{Status: application.StatusPendingFinance},
			req:     application.TransitionRequest{Action: application.ActionDisburse, ActorRole: application.RoleReviewer, Amount: new(int64(10))},
			wantErr: &application.AuthorizationError{},
		},
		{
			name:    "DisburseFromPendingSAG",
			app:     &application.Application{Status: application.StatusPendingSAG},
			req:     application.TransitionRequest{Action: application.ActionDisburse, ActorRole: application.RoleFinance, Amount: new(int64(10))},
			wantErr: &application.InvalidTransitionError{},
		},
		{
			name:    "UnknownAction",
			app:     &application.Application{Status: application.StatusPendingSAG},
			req:     application.TransitionRequest{Action: "escalate", ActorRole: application.RoleReviewer},
			wantErr: &application.InvalidTransitionError{},
		},
		{
			name:    "ReviewerRemarksRecordedOnce",
			app:     &application.Application{Status: application.StatusPendingSAG, ReviewerRemarks: new("earlier")},
			req:     application.TransitionRequest{Action: application.ActionApprove, ActorRole: application.RoleReviewer},
			wantErr: &application.ValidationError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := *tt.app

			got, err := application.Evaluate(tt.app, tt.req)

			assert.Equal(t, before, *tt.app, "evaluate must not mutate the application")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.IsType(t, tt.wantErr, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.app.Status, got.From)
			assert.Equal(t, tt.wantTo, got.To)
			assert.Equal(t, tt.wantRemarks, got.Remarks)
			assert.Equal(t, tt.wantAmount, got.Amount)
		})
	}
}

func TestEvaluate_TerminalStatesRejectEverything(t *testing.T) {
	roles := []application.Role{application.RoleStudent, application.RoleReviewer, application.RoleFinance, application.RoleSystem}
	actions := []application.Action{application.ActionApprove, application.ActionReject, application.ActionForward, application.ActionDisburse}

	for _, status := range application.AllStatuses {
		if !status.Terminal() {
			continue
		}

		for _, role := range roles {
			for _, action := range actions {
				_, err := application.Evaluate(
					&application.Application{Status: status},
					application.TransitionRequest{Action: action, ActorRole: role, Remarks: "x", Amount: new(int64(1))},
				)

				var invalid *application.InvalidTransitionError
				require.ErrorAs(t, err, &invalid, "%s %s %s", status, role, action)
				assert.Equal(t, application.ReasonTerminal, invalid.Reason)
			}
		}
	}
}

func TestOutcome_Apply(t *testing.T) {
	app := &application.Application{Status: application.StatusPendingFinance, Amount: 2500}

	out, err := application.Evaluate(app, application.TransitionRequest{
		Action:    application.ActionDisburse,
		ActorRole: application.RoleFinance,
		Amount:    new(int64(1800)),
	})
	require.NoError(t, err)

	next := app.Clone()
	at := mustTime(t, "2026-05-01T10:00:00Z")
	out.Apply(next, at)

	assert.Equal(t, application.StatusPaid, next.Status)
	assert.Equal(t, int64(1800), next.Amount)
	assert.Equal(t, at, next.LastUpdated)
	require.NotNil(t, next.FinanceRemarks)
	assert.Equal(t, application.DefaultDisbursalRemarks, *next.FinanceRemarks)
	assert.Nil(t, next.ReviewerRemarks)
	assert.Equal(t, application.StatusPendingFinance, app.Status)
}

func TestNext(t *testing.T) {
	assert.ElementsMatch(t,
		[]application.Status{application.StatusApprovedBySAG, application.StatusRejectedBySAG},
		application.Next(application.StatusPendingSAG),
	)
	assert.Equal(t, []application.Status{application.StatusPendingFinance}, application.Next(application.StatusApprovedBySAG))
	assert.ElementsMatch(t,
		[]application.Status{application.StatusPaid, application.StatusRejectedByFinance},
		application.Next(application.StatusPendingFinance),
	)

	for _, s := range application.AllStatuses {
		if s.Terminal() {
			assert.Empty(t, application.Next(s), s)
		}
	}
}

func TestActionsFor(t *testing.T) {
	assert.Equal(t,
		[]application.Action{application.ActionApprove, application.ActionReject},
		application.ActionsFor(application.StatusPendingSAG, application.RoleReviewer),
	)
	assert.Equal(t,
		[]application.Action{application.ActionDisburse, application.ActionReject},
		application.ActionsFor(application.StatusPendingFinance, application.RoleFinance),
	)
	assert.Empty(t, application.ActionsFor(application.StatusPendingSAG, application.RoleStudent))
	assert.Empty(t, application.ActionsFor(application.StatusPaid, application.RoleFinance))
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()

	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)

	return ts
}
