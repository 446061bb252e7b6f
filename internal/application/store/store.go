package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order matches selectApplicationColumns.
func scanApplication(s scanner) (*application.Application, error) {
	var (
		app             application.Application
		status          string
		form, documents []byte
		reviewerRemarks sql.NullString
		financeRemarks  sql.NullString
	)

	if err := s.Scan(
		&app.ID, &app.URN, &app.ScholarshipID, &app.ScholarshipTitle, &app.StudentID, &app.Amount, &status,
		&form, &documents, &reviewerRemarks, &financeRemarks, &app.PaymentReference,
		&app.AppliedDate, &app.LastUpdated,
	); err != nil {
		return nil, err
	}

	app.Status = application.Status(status)

	if len(form) > 0 {
		if err := json.Unmarshal(form, &app.Form); err != nil {
			return nil, fmt.Errorf("decoding form: %w", err)
		}
	}

	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &app.Documents); err != nil {
			return nil, fmt.Errorf("decoding documents: %w", err)
		}
	}

	if reviewerRemarks.Valid {
		app.ReviewerRemarks = new(reviewerRemarks.String)
	}

	if financeRemarks.Valid {
		app.FinanceRemarks = new(financeRemarks.String)
	}

	return &app, nil
}

const selectApplicationColumns = `
	id, urn, scholarship_id, scholarship_title, student_id, amount, status,
	form, documents, reviewer_remarks, finance_remarks, payment_reference,
	applied_date, last_updated
`

func (s *Store) CreateApplication(ctx context.Context, app *application.Application) error {
	form, err := json.Marshal(app.Form)
	if err != nil {
		return fmt.Errorf("encoding form: %w", err)
	}

	documents, err := json.Marshal(app.Documents)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}

	query := `
		INSERT INTO applications (
			id, urn, scholarship_id, scholarship_title, student_id, amount, status,
			form, documents, reviewer_remarks, finance_remarks, payment_reference,
			applied_date, last_updated
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = s.db.ExecContext(ctx, query,
		app.ID,
		app.URN,
		app.ScholarshipID,
		app.ScholarshipTitle,
		app.StudentID,
		app.Amount,
		app.Status,
		form,
		documents,
		app.ReviewerRemarks,
		app.FinanceRemarks,
		app.PaymentReference,
		app.AppliedDate,
		app.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}

	return nil
}

func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (*application.Application, error) {
	query := `SELECT ` + selectApplicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, application.ErrNotFound
		}

		return nil, fmt.Errorf("getting application: %w", err)
	}

	return app, nil
}

func (s *Store) ListApplications(ctx context.Context, filter application.ListFilter) ([]*application.Application, error) {
	query := `SELECT ` + selectApplicationColumns + ` FROM applications WHERE TRUE`

	var args []any

	argIdx := 1

	if statuses, restricted := filter.ResolveStatuses(); restricted {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}

		query += fmt.Sprintf(" AND status = ANY($%d)", argIdx)

		args = append(args, names)
		argIdx++
	}

	if filter.StudentID != nil {
		query += fmt.Sprintf(" AND student_id = $%d", argIdx)

		args = append(args, *filter.StudentID)
		argIdx++
	}

	if pattern := database.ContainsPattern(filter.Query); pattern != "" {
		query += fmt.Sprintf(` AND (scholarship_title ILIKE $%d ESCAPE '\' OR urn ILIKE $%d ESCAPE '\')`, argIdx, argIdx)

		args = append(args, pattern)
		argIdx++
	}

	query += " ORDER BY applied_date DESC, urn DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	var apps []*application.Application

	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}

		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applications: %w", err)
	}

	return apps, nil
}

func (s *Store) ListTransitions(ctx context.Context, applicationID uuid.UUID) ([]*application.Transition, error) {
	query := `
		SELECT id, application_id, from_status, to_status, action, actor_role, actor_id, remarks, amount, created_at
		FROM application_transitions
		WHERE application_id = $1
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("listing transitions: %w", err)
	}
	defer rows.Close()

	var out []*application.Transition

	for rows.Next() {
		var (
			t                 application.Transition
			from, to          string
			action, actorRole string
			remarks           sql.NullString
			amount            sql.NullInt64
		)

		if err := rows.Scan(
			&t.ID, &t.ApplicationID, &from, &to, &action, &actorRole, &t.ActorID, &remarks, &amount, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}

		t.From = application.Status(from)
		t.To = application.Status(to)
		t.Action = application.Action(action)
		t.ActorRole = application.Role(actorRole)

		if remarks.Valid {
			t.Remarks = new(remarks.String)
		}

		if amount.Valid {
			t.Amount = new(amount.Int64)
		}

		out = append(out, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transitions: %w", err)
	}

	return out, nil
}

func (s *Store) NextURNSequence(ctx context.Context, year int) (int64, error) {
	query := `
		INSERT INTO urn_sequences (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = urn_sequences.last_value + 1
		RETURNING last_value
	`

	var seq int64
	if err := s.db.QueryRowContext(ctx, query, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("incrementing urn sequence: %w", err)
	}

	return seq, nil
}

func transitionLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("application"))
	h.Write([]byte{0})
	h.Write(id[:])

	return int64(h.Sum64())
}

type transitionTx struct {
	tx  *sql.Tx
	app *application.Application
}

// BeginTransition takes a transaction-scoped advisory lock on the application
// and reads its row FOR UPDATE. The lock is released by Commit or Rollback.
func (s *Store) BeginTransition(ctx context.Context, id uuid.UUID) (application.TransitionTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transition tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", transitionLockKey(id)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring application lock: %w", err)
	}

	query := `SELECT ` + selectApplicationColumns + ` FROM applications WHERE id = $1 FOR UPDATE`

	app, err := scanApplication(dbTx.QueryRowContext(ctx, query, id))
	if err != nil {
		dbTx.Rollback()

		if errors.Is(err, sql.ErrNoRows) {
			return nil, application.ErrNotFound
		}

		return nil, fmt.Errorf("reading application: %w", err)
	}

	return &transitionTx{tx: dbTx, app: app}, nil
}

func (ttx *transitionTx) Application() *application.Application { return ttx.app.Clone() }
func (ttx *transitionTx) Commit() error                         { return ttx.tx.Commit() }
func (ttx *transitionTx) Rollback() error                       { return ttx.tx.Rollback() }

func (ttx *transitionTx) Save(ctx context.Context, app *application.Application, expected application.Status, record *application.Transition) error {
	query := `
		UPDATE applications
		SET status = $1, amount = $2, reviewer_remarks = $3, finance_remarks = $4,
			payment_reference = $5, last_updated = $6
		WHERE id = $7 AND status = $8
	`

	res, err := ttx.tx.ExecContext(ctx, query,
		app.Status,
		app.Amount,
		app.ReviewerRemarks,
		app.FinanceRemarks,
		app.PaymentReference,
		app.LastUpdated,
		app.ID,
		expected,
	)
	if err != nil {
		return fmt.Errorf("updating application: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}

	if n == 0 {
		return application.ErrStale
	}

	insert := `
		INSERT INTO application_transitions (
			id, application_id, from_status, to_status, action, actor_role, actor_id, remarks, amount, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if _, err := ttx.tx.ExecContext(ctx, insert,
		record.ID,
		record.ApplicationID,
		record.From,
		record.To,
		record.Action,
		record.ActorRole,
		record.ActorID,
		record.Remarks,
		record.Amount,
		record.CreatedAt,
	); err != nil {
		return fmt.Errorf("recording transition: %w", err)
	}

	return nil
}
