package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/bursar/internal/application"
)

const minPasswordLength = 8

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type Service struct {
	repo Repository
	cost int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// WithCost returns a copy of the service hashing with the given bcrypt cost.
func (s *Service) WithCost(cost int) *Service {
	c := *s
	c.cost = cost

	return &c
}

type RegisterParams struct {
	FullName      string
	Email         string
	Password      string
	Role          application.Role
	ContactNumber string
	Address       string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	email := normalizeEmail(params.Email)

	switch {
	case strings.TrimSpace(params.FullName) == "":
		return nil, &application.ValidationError{Field: "full_name", Reason: "this field is required"}
	case !strings.Contains(email, "@"):
		return nil, &application.ValidationError{Field: "email", Reason: "not a valid email address"}
	case len(params.Password) < minPasswordLength:
		return nil, &application.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	case !params.Role.Assignable():
		return nil, &application.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", params.Role)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		ID:            uuid.New(),
		FullName:      strings.TrimSpace(params.FullName),
		Email:         email,
		Role:          params.Role,
		ContactNumber: strings.TrimSpace(params.ContactNumber),
		Address:       strings.TrimSpace(params.Address),
		PasswordHash:  hash,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login returns the user owning email when password matches. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// DemoPassword is the password of every account created by SeedDemo.
const DemoPassword = "password"

// SeedDemo registers one account per role for local use. Existing accounts are left alone.
func (s *Service) SeedDemo(ctx context.Context) error {
	demo := []RegisterParams{
		{FullName: "Demo Student", Email: "student@bursar.local", Role: application.RoleStudent},
		{FullName: "Demo Reviewer", Email: "reviewer@bursar.local", Role: application.RoleReviewer},
		{FullName: "Demo Finance", Email: "finance@bursar.local", Role: application.RoleFinance},
	}

	for _, p := range demo {
		p.Password = DemoPassword

		if _, err := s.Register(ctx, p); err != nil && !errors.Is(err, ErrEmailTaken) {
			return fmt.Errorf("seeding %s: %w", p.Email, err)
		}
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
