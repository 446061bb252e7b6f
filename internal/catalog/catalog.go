package catalog

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("scholarship not found")
	// ErrMalformed wraps every error caused by the content of an imported catalog file.
	ErrMalformed = errors.New("malformed catalog")
)

// Scholarship is reference data. The application workflow reads it and never writes it.
type Scholarship struct {
	ID                uuid.UUID
	Title             string
	Summary           string
	Category          string
	Eligibility       string
	Amount            int64 // whole currency units
	RequiredDocuments []string
	Deadline          time.Time // date only, zero means open-ended
}

// Closed reports whether the deadline day has passed at t. Submissions are
// accepted through the whole deadline day (UTC).
func (s *Scholarship) Closed(t time.Time) bool {
	if s.Deadline.IsZero() {
		return false
	}

	y, m, d := s.Deadline.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	return !t.Before(cutoff)
}

func (s *Scholarship) Clone() *Scholarship {
	c := *s
	c.RequiredDocuments = slices.Clone(s.RequiredDocuments)

	return &c
}

type ListFilter struct {
	Query    string
	Category string
}

func (f ListFilter) Matches(s *Scholarship) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, s.Category) {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}

	return strings.Contains(strings.ToLower(s.Title), q) ||
		strings.Contains(strings.ToLower(s.Summary), q)
}

// StableID derives a scholarship id from its title so that re-importing the same
// catalog updates rows instead of duplicating them.
func StableID(title string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("bursar:scholarship:"+strings.ToLower(strings.TrimSpace(title))))
}
