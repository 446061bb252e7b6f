package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/catalog"
)

// Memory keeps the catalog in process. Used for development and tests.
type Memory struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*catalog.Scholarship
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[uuid.UUID]*catalog.Scholarship)}
}

func (m *Memory) GetScholarship(_ context.Context, id uuid.UUID) (*catalog.Scholarship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sch, ok := m.rows[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}

	return sch.Clone(), nil
}

func (m *Memory) ListScholarships(_ context.Context, filter catalog.ListFilter) ([]*catalog.Scholarship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*catalog.Scholarship

	for _, sch := range m.rows {
		if filter.Matches(sch) {
			out = append(out, sch.Clone())
		}
	}

	slices.SortFunc(out, func(a, b *catalog.Scholarship) int {
		switch {
		case a.Deadline.IsZero() && !b.Deadline.IsZero():
			return 1
		case !a.Deadline.IsZero() && b.Deadline.IsZero():
			return -1
		}

		if c := a.Deadline.Compare(b.Deadline); c != 0 {
			return c
		}

		return cmp.Compare(a.Title, b.Title)
	})

	return out, nil
}

func (m *Memory) UpsertScholarships(_ context.Context, scholarships []*catalog.Scholarship) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sch := range scholarships {
		m.rows[sch.ID] = sch.Clone()
	}

	return nil
}
