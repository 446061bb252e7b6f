package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	GetScholarship(ctx context.Context, id uuid.UUID) (*Scholarship, error)
	ListScholarships(ctx context.Context, filter ListFilter) ([]*Scholarship, error)
	UpsertScholarships(ctx context.Context, scholarships []*Scholarship) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Scholarship, error) {
	return s.repo.GetScholarship(ctx, id)
}

// List returns scholarships ordered by deadline, soonest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Scholarship, error) {
	return s.repo.ListScholarships(ctx, filter)
}

// Categories returns the distinct categories in catalog order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	all, err := s.repo.ListScholarships(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(all))

	var categories []string

	for _, sch := range all {
		if _, ok := seen[sch.Category]; ok || sch.Category == "" {
			continue
		}

		seen[sch.Category] = struct{}{}
		categories = append(categories, sch.Category)
	}

	return categories, nil
}

// Import parses a catalog CSV and upserts every row.
func (s *Service) Import(ctx context.Context, r io.Reader) ([]*Scholarship, error) {
	scholarships, err := Parse(r)
	if err != nil {
		return nil, err
	}

	if len(scholarships) == 0 {
		return nil, nil
	}

	if err := s.repo.UpsertScholarships(ctx, scholarships); err != nil {
		return nil, fmt.Errorf("saving catalog: %w", err)
	}

	slog.Info("imported scholarship catalog", "count", len(scholarships))

	return scholarships, nil
}

// Seed stores the given scholarships, typically Defaults().
func (s *Service) Seed(ctx context.Context, scholarships []*Scholarship) error {
	return s.repo.UpsertScholarships(ctx, scholarships)
}
