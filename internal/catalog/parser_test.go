package catalog_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/catalog"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		check   func(t *testing.T, got []*catalog.Scholarship)
		wantErr bool
	}{
		{
			name: "CommaSeparated",
			input: "Title,Summary,Category,Amount,Documents,Deadline\n" +
				"STEM Innovation Grant,Supporting STEM,STEM,\"$3,000\",Research Proposal|Academic Records,2027-04-01\n",
			check: func(t *testing.T, got []*catalog.Scholarship) {
				require.Len(t, got, 1)
				assert.Equal(t, "STEM Innovation Grant", got[0].Title)
				assert.Equal(t, int64(3000), got[0].Amount)
				assert.Equal(t, []string{"Research Proposal", "Academic Records"}, got[0].RequiredDocuments)
				assert.Equal(t, time.Date(2027, time.April, 1, 0, 0, 0, 0, time.UTC), got[0].Deadline)
				assert.Equal(t, catalog.StableID("STEM Innovation Grant"), got[0].ID)
			},
		},
		{
			name: "SemicolonWithPreamble",
			input: "Scholarship catalog export;;\n" +
				"\n" +
				"Name;Award Amount;Last Date\n" +
				"Arts & Humanities Grant;2.000,00;20-03-2027\n" +
				";;\n" +
				"Financial Need Assistance Program;4000;\n",
			check: func(t *testing.T, got []*catalog.Scholarship) {
				require.Len(t, got, 2)
				assert.Equal(t, int64(2000), got[0].Amount)
				assert.Equal(t, time.Date(2027, time.March, 20, 0, 0, 0, 0, time.UTC), got[0].Deadline)
				assert.True(t, got[1].Deadline.IsZero())
			},
		},
		{
			name:  "ExplicitID",
			input: "id,title,amount\n6f1d7f4e-3f0a-4c55-9a8e-0f5e2b1c9d11,Graduate Research Fellowship,5000\n",
			check: func(t *testing.T, got []*catalog.Scholarship) {
				require.Len(t, got, 1)
				assert.Equal(t, "6f1d7f4e-3f0a-4c55-9a8e-0f5e2b1c9d11", got[0].ID.String())
			},
		},
		{
			name:    "NoHeader",
			input:   "foo,bar\n1,2\n",
			wantErr: true,
		},
		{
			name:    "BadAmount",
			input:   "title,amount\nSomething,free\n",
			wantErr: true,
		},
		{
			name:    "BadDeadline",
			input:   "title,amount,deadline\nSomething,100,someday\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.Parse(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, catalog.ErrMalformed)
				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestParse_Windows1252(t *testing.T) {
	// "Bolsa de Mérito" encoded as Windows-1252.
	input := []byte("title;amount\nBolsa de M\xe9rito;1500\n")

	got, err := catalog.Parse(strings.NewReader(string(input)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bolsa de Mérito", got[0].Title)
}

func TestScholarship_Closed(t *testing.T) {
	sch := &catalog.Scholarship{Deadline: time.Date(2027, time.March, 15, 0, 0, 0, 0, time.UTC)}

	assert.False(t, sch.Closed(time.Date(2027, time.March, 14, 12, 0, 0, 0, time.UTC)))
	assert.False(t, sch.Closed(time.Date(2027, time.March, 15, 23, 59, 59, 0, time.UTC)))
	assert.True(t, sch.Closed(time.Date(2027, time.March, 16, 0, 0, 0, 0, time.UTC)))
	assert.False(t, (&catalog.Scholarship{}).Closed(time.Now()))
}
