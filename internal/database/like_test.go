package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/bursar/internal/database"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "Empty", query: "", want: ""},
		{name: "OnlySpaces", query: "   ", want: ""},
		{name: "Plain", query: "merit", want: "%merit%"},
		{name: "Trimmed", query: "  merit award ", want: "%merit award%"},
		{name: "Percent", query: "%", want: `%\%%`},
		{name: "Underscore", query: "_", want: `%\_%`},
		{name: "Backslash", query: `a\b`, want: `%a\\b%`},
		{name: "Mixed", query: `100%_\`, want: `%100\%\_\\%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, database.ContainsPattern(tt.query))
		})
	}
}
