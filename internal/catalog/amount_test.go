package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/bursar/internal/catalog"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "2500", want: 2500},
		{raw: "$2,500", want: 2500},
		{raw: "$2,500.00", want: 2500},
		{raw: "2.500,00 €", want: 2500},
		{raw: "1500,50", want: 1501},
		{raw: "  4000 ", want: 4000},
		{raw: "12,345,678", want: 12345678},
		{raw: "0", wantErr: true},
		{raw: "-200", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "n/a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := catalog.ParseAmount(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$0", catalog.FormatAmount(0))
	assert.Equal(t, "$999", catalog.FormatAmount(999))
	assert.Equal(t, "$2,500", catalog.FormatAmount(2500))
	assert.Equal(t, "$1,234,567", catalog.FormatAmount(1234567))
	assert.Equal(t, "-$4,000", catalog.FormatAmount(-4000))
}
