package application

import (
	"fmt"
	"regexp"
)

const maxURNSequence = 999999

var urnPattern = regexp.MustCompile(`^URN-\d{4}-\d{6}$`)

// FormatURN builds the human-readable reference URN-<year>-<6 digit sequence>.
func FormatURN(year int, seq int64) (string, error) {
	if year < 1000 || year > 9999 {
		return "", fmt.Errorf("urn year %d out of range", year)
	}

	if seq < 1 || seq > maxURNSequence {
		return "", fmt.Errorf("urn sequence %d out of range for %d", seq, year)
	}

	return fmt.Sprintf("URN-%04d-%06d", year, seq), nil
}

func ValidURN(s string) bool {
	return urnPattern.MatchString(s)
}
