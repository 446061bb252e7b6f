package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/catalog"
	"github.com/MrJamesThe3rd/bursar/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectScholarshipColumns = `id, title, summary, category, eligibility, amount, required_documents, deadline`

func scanScholarship(s scanner) (*catalog.Scholarship, error) {
	var (
		sch      catalog.Scholarship
		docs     []byte
		deadline sql.NullTime
	)

	if err := s.Scan(
		&sch.ID, &sch.Title, &sch.Summary, &sch.Category, &sch.Eligibility, &sch.Amount, &docs, &deadline,
	); err != nil {
		return nil, err
	}

	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &sch.RequiredDocuments); err != nil {
			return nil, fmt.Errorf("decoding required documents: %w", err)
		}
	}

	if deadline.Valid {
		sch.Deadline = deadline.Time.UTC()
	}

	return &sch, nil
}

func (s *Store) GetScholarship(ctx context.Context, id uuid.UUID) (*catalog.Scholarship, error) {
	query := `SELECT ` + selectScholarshipColumns + ` FROM scholarships WHERE id = $1`

	sch, err := scanScholarship(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting scholarship: %w", err)
	}

	return sch, nil
}

func (s *Store) ListScholarships(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Scholarship, error) {
	query := `SELECT ` + selectScholarshipColumns + ` FROM scholarships WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" AND LOWER(category) = LOWER($%d)", argIdx)

		args = append(args, filter.Category)
		argIdx++
	}

	if pattern := database.ContainsPattern(filter.Query); pattern != "" {
		query += fmt.Sprintf(` AND (title ILIKE $%d ESCAPE '\' OR summary ILIKE $%d ESCAPE '\')`, argIdx, argIdx)

		args = append(args, pattern)
		argIdx++
	}

	query += " ORDER BY deadline ASC NULLS LAST, title ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing scholarships: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Scholarship

	for rows.Next() {
		sch, err := scanScholarship(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scholarship: %w", err)
		}

		out = append(out, sch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scholarships: %w", err)
	}

	return out, nil
}

// UpsertScholarships writes the whole batch in one database transaction.
func (s *Store) UpsertScholarships(ctx context.Context, scholarships []*catalog.Scholarship) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO scholarships (id, title, summary, category, eligibility, amount, required_documents, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			category = EXCLUDED.category,
			eligibility = EXCLUDED.eligibility,
			amount = EXCLUDED.amount,
			required_documents = EXCLUDED.required_documents,
			deadline = EXCLUDED.deadline
	`

	for _, sch := range scholarships {
		docs, err := json.Marshal(sch.RequiredDocuments)
		if err != nil {
			return fmt.Errorf("encoding required documents: %w", err)
		}

		var deadline sql.NullTime
		if !sch.Deadline.IsZero() {
			deadline = sql.NullTime{Time: sch.Deadline, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, query,
			sch.ID, sch.Title, sch.Summary, sch.Category, sch.Eligibility, sch.Amount, docs, deadline,
		); err != nil {
			return fmt.Errorf("upserting scholarship %q: %w", sch.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}

	return nil
}
