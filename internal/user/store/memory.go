package store

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/user"
)

type Memory struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
}

func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (m *Memory) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[u.Email]; taken {
		return user.ErrEmailTaken
	}

	m.byID[u.ID] = clone(u)
	m.byEmail[u.Email] = u.ID

	return nil
}

func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}

	return clone(u), nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	id, ok := m.byEmail[email]
	m.mu.RUnlock()

	if !ok {
		return nil, user.ErrNotFound
	}

	return m.GetUser(ctx, id)
}

func clone(u *user.User) *user.User {
	c := *u
	c.PasswordHash = bytes.Clone(u.PasswordHash)

	return &c
}
