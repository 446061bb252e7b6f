package catalog

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ParseAmount parses an award amount such as "2500", "$2,500.00" or "2.500,00 €"
// into whole currency units, rounding half away from zero.
func ParseAmount(raw string) (int64, error) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		default:
			return -1
		}
	}, raw)

	if clean == "" {
		return 0, fmt.Errorf("empty amount")
	}

	clean = normalizeSeparators(clean)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", raw, err)
	}

	if !d.IsPositive() {
		return 0, fmt.Errorf("amount %q must be positive", raw)
	}

	return d.Round(0).IntPart(), nil
}

// FormatAmount renders whole currency units with thousands separators, e.g. "$2,500".
func FormatAmount(units int64) string {
	if units < 0 {
		return "-$" + humanize.Comma(-units)
	}

	return "$" + humanize.Comma(units)
}

// normalizeSeparators turns the input into a plain "1234.56" form. When both
// separators appear the rightmost one is the decimal mark; a lone comma is a
// decimal mark only when it is not followed by exactly three digits.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0 && strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3:
		return strings.Replace(s, ",", ".", 1)
	default:
		return strings.ReplaceAll(s, ",", "")
	}
}
