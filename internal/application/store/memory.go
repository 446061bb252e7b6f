package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/application"
)

// Memory is an in-process Repository. Each application has its own lock, held
// from BeginTransition until Commit or Rollback, so transitions on one
// application are serialized while others proceed.
type Memory struct {
	mu          sync.RWMutex
	apps        map[uuid.UUID]*application.Application
	transitions map[uuid.UUID][]*application.Transition
	sequences   map[int]int64
	locks       map[uuid.UUID]chan struct{}
}

func NewMemory() *Memory {
	return &Memory{
		apps:        make(map[uuid.UUID]*application.Application),
		transitions: make(map[uuid.UUID][]*application.Transition),
		sequences:   make(map[int]int64),
		locks:       make(map[uuid.UUID]chan struct{}),
	}
}

func (m *Memory) CreateApplication(_ context.Context, app *application.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.apps[app.ID] = app.Clone()
	m.locks[app.ID] = make(chan struct{}, 1)

	return nil
}

func (m *Memory) GetApplication(_ context.Context, id uuid.UUID) (*application.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.apps[id]
	if !ok {
		return nil, application.ErrNotFound
	}

	return app.Clone(), nil
}

func (m *Memory) ListApplications(_ context.Context, filter application.ListFilter) ([]*application.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*application.Application

	for _, app := range m.apps {
		if filter.Matches(app) {
			out = append(out, app.Clone())
		}
	}

	slices.SortFunc(out, func(a, b *application.Application) int {
		if c := b.AppliedDate.Compare(a.AppliedDate); c != 0 {
			return c
		}

		return cmp.Compare(b.URN, a.URN)
	})

	return out, nil
}

func (m *Memory) ListTransitions(_ context.Context, applicationID uuid.UUID) ([]*application.Transition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.transitions[applicationID]
	out := make([]*application.Transition, len(records))

	for i, r := range records {
		c := *r
		out[i] = &c
	}

	return out, nil
}

func (m *Memory) NextURNSequence(_ context.Context, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sequences[year]++

	return m.sequences[year], nil
}

func (m *Memory) BeginTransition(ctx context.Context, id uuid.UUID) (application.TransitionTx, error) {
	m.mu.RLock()
	lock, ok := m.locks[id]
	m.mu.RUnlock()

	if !ok {
		return nil, application.ErrNotFound
	}

	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	m.mu.RLock()
	app := m.apps[id].Clone()
	m.mu.RUnlock()

	return &memoryTx{store: m, lock: lock, app: app}, nil
}

type memoryTx struct {
	store *Memory
	lock  chan struct{}
	app   *application.Application

	pending *application.Application
	record  *application.Transition
	done    bool
}

func (tx *memoryTx) Application() *application.Application {
	return tx.app.Clone()
}

// Save stages the write. Nothing is visible to readers until Commit.
func (tx *memoryTx) Save(_ context.Context, app *application.Application, expected application.Status, record *application.Transition) error {
	tx.store.mu.RLock()
	current := tx.store.apps[app.ID].Status
	tx.store.mu.RUnlock()

	if current != expected {
		return application.ErrStale
	}

	tx.pending = app.Clone()

	r := *record
	tx.record = &r

	return nil
}

func (tx *memoryTx) Commit() error {
	if tx.done {
		return nil
	}

	if tx.pending != nil {
		tx.store.mu.Lock()
		tx.store.apps[tx.pending.ID] = tx.pending
		tx.store.transitions[tx.pending.ID] = append(tx.store.transitions[tx.pending.ID], tx.record)
		tx.store.mu.Unlock()
	}

	tx.release()

	return nil
}

func (tx *memoryTx) Rollback() error {
	if tx.done {
		return nil
	}

	tx.release()

	return nil
}

func (tx *memoryTx) release() {
	tx.done = true
	tx.pending = nil
	tx.record = nil
	<-tx.lock
}
