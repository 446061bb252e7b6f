package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/catalog"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=application
type Repository interface {
	CreateApplication(ctx context.Context, app *Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*Application, error)
	ListApplications(ctx context.Context, filter ListFilter) ([]*Application, error)
	ListTransitions(ctx context.Context, applicationID uuid.UUID) ([]*Transition, error)

	// NextURNSequence returns the next unused sequence number for year, starting at 1.
	NextURNSequence(ctx context.Context, year int) (int64, error)

	// BeginTransition locks the application until Commit or Rollback.
	BeginTransition(ctx context.Context, id uuid.UUID) (TransitionTx, error)
}

type TransitionTx interface {
	// Application returns the state read under the lock.
	Application() *Application
	// Save persists app and the history record if the stored status still equals expected.
	Save(ctx context.Context, app *Application, expected Status, record *Transition) error
	Commit() error
	Rollback() error
}

// Catalog supplies scholarship reference data. It is never written by this package.
type Catalog interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Scholarship, error)
}

// PaymentProcessor moves money to a student. It returns the processor's reference.
type PaymentProcessor interface {
	Disburse(ctx context.Context, d Disbursement) (string, error)
}

// Notifier receives one event per committed transition.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Disbursement is the request sent to a payment processor.
type Disbursement struct {
	ApplicationID uuid.UUID
	URN           string
	StudentID     uuid.UUID
	Amount        int64
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

type Service struct {
	repo     Repository
	catalog  Catalog
	payments PaymentProcessor
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, cat Catalog, payments PaymentProcessor, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		catalog:  cat,
		payments: payments,
		notifier: notifier,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	ScholarshipID uuid.UUID
	StudentID     uuid.UUID
	Form          Form
	Documents     map[string]string
}

// Create submits a new application. It always starts in PENDING_SAG.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Application, error) {
	if params.StudentID == uuid.Nil {
		return nil, &ValidationError{Field: "student_id", Reason: "a student is required"}
	}

	sch, err := s.catalog.Get(ctx, params.ScholarshipID)
	if err != nil {
		return nil, fmt.Errorf("looking up scholarship %s: %w", params.ScholarshipID, err)
	}

	now := s.now().UTC()

	if sch.Closed(now) {
		return nil, &ValidationError{
			Field:  "deadline",
			Reason: fmt.Sprintf("applications for %q closed on %s", sch.Title, sch.Deadline.Format(time.DateOnly)),
		}
	}

	if err := validateForm(params.Form); err != nil {
		return nil, err
	}

	if err := validateDocuments(sch.RequiredDocuments, params.Documents); err != nil {
		return nil, err
	}

	seq, err := s.repo.NextURNSequence(ctx, now.Year())
	if err != nil {
		return nil, fmt.Errorf("allocating urn: %w", err)
	}

	urn, err := FormatURN(now.Year(), seq)
	if err != nil {
		return nil, err
	}

	app := &Application{
		ID:               uuid.New(),
		URN:              urn,
		ScholarshipID:    sch.ID,
		ScholarshipTitle: sch.Title,
		StudentID:        params.StudentID,
		Amount:           sch.Amount,
		Status:           StatusPendingSAG,
		Form:             params.Form,
		Documents:        maps.Clone(params.Documents),
		AppliedDate:      now,
		LastUpdated:      now,
	}

	if err := s.repo.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	return app, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	return s.repo.GetApplication(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Application, error) {
	if filter.Role == RoleStudent && filter.StudentID == nil {
		return nil, &ValidationError{Field: "student_id", Reason: "students can only list their own applications"}
	}

	if statuses, restricted := filter.ResolveStatuses(); restricted && len(statuses) == 0 {
		return nil, nil
	}

	return s.repo.ListApplications(ctx, filter)
}

// History returns the transitions of an application, oldest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]*Transition, error) {
	if _, err := s.repo.GetApplication(ctx, id); err != nil {
		return nil, err
	}

	return s.repo.ListTransitions(ctx, id)
}

// ApplyTransition runs one guarded transition. An approval is followed by the
// automatic forward to finance, so approve returns the application in PENDING_FINANCE.
// If the approval commits but the forward fails, the approved application is
// returned together with the error and ForwardApproved picks it up later.
func (s *Service) ApplyTransition(ctx context.Context, id uuid.UUID, req TransitionRequest) (*Application, error) {
	if req.ActorRole == RoleSystem {
		return nil, &AuthorizationError{Role: req.ActorRole, Action: req.Action}
	}

	app, err := s.transition(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if app.Status != StatusApprovedBySAG {
		return app, nil
	}

	forwarded, err := s.forward(ctx, id)

	var invalid *InvalidTransitionError
	if errors.As(err, &invalid) {
		// Forwarded concurrently, usually by ForwardApproved.
		return s.repo.GetApplication(ctx, id)
	}

	if err != nil {
		return app, fmt.Errorf("approved %s but forwarding to finance failed: %w", app.URN, err)
	}

	return forwarded, nil
}

// ForwardApproved forwards every application left in APPROVED_BY_SAG, for example
// after a crash between the approval and the forward commit.
func (s *Service) ForwardApproved(ctx context.Context) (int, error) {
	apps, err := s.repo.ListApplications(ctx, ListFilter{Statuses: []Status{StatusApprovedBySAG}})
	if err != nil {
		return 0, fmt.Errorf("listing approved applications: %w", err)
	}

	var (
		forwarded int
		errs      []error
	)

	for _, app := range apps {
		_, err := s.forward(ctx, app.ID)

		var invalid *InvalidTransitionError
		if errors.As(err, &invalid) {
			// Someone else moved it first.
			continue
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("forwarding %s: %w", app.URN, err))
			continue
		}

		forwarded++
	}

	return forwarded, errors.Join(errs...)
}

func (s *Service) forward(ctx context.Context, id uuid.UUID) (*Application, error) {
	return s.transition(ctx, id, TransitionRequest{
		Action:         ActionForward,
		ActorRole:      RoleSystem,
		ExpectedStatus: new(StatusApprovedBySAG),
	})
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, req TransitionRequest) (*Application, error) {
	ttx, err := s.repo.BeginTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	defer ttx.Rollback()

	current := ttx.Application()

	if req.ExpectedStatus != nil && *req.ExpectedStatus != current.Status {
		return nil, &InvalidTransitionError{From: current.Status, Action: req.Action, Reason: ReasonStale}
	}

	outcome, err := Evaluate(current, req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	next := current.Clone()
	outcome.Apply(next, now)

	if outcome.Action == ActionDisburse {
		ref, err := s.payments.Disburse(ctx, Disbursement{
			ApplicationID: next.ID,
			URN:           next.URN,
			StudentID:     next.StudentID,
			Amount:        next.Amount,
		})
		if err != nil {
			return nil, &PaymentError{ApplicationID: next.ID, Amount: next.Amount, Err: err}
		}

		next.PaymentReference = ref
	}

	record := &Transition{
		ID:            uuid.New(),
		ApplicationID: next.ID,
		From:          outcome.From,
		To:            outcome.To,
		Action:        outcome.Action,
		ActorRole:     req.ActorRole,
		ActorID:       req.ActorID,
		Remarks:       outcome.Remarks,
		Amount:        outcome.Amount,
		CreatedAt:     now,
	}

	if err := ttx.Save(ctx, next, current.Status, record); err != nil {
		if errors.Is(err, ErrStale) {
			return nil, &InvalidTransitionError{From: current.Status, Action: req.Action, Reason: ReasonStale}
		}

		return nil, fmt.Errorf("saving transition: %w", err)
	}

	if err := ttx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transition: %w", err)
	}

	s.notify(ctx, Event{
		ApplicationID: next.ID,
		URN:           next.URN,
		From:          outcome.From,
		To:            outcome.To,
		ActorRole:     req.ActorRole,
		ActorID:       req.ActorID,
		Timestamp:     now,
	})

	return next, nil
}

// notify runs after the commit; a failing emitter is logged and never undoes the transition.
func (s *Service) notify(ctx context.Context, event Event) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.Notify(ctx, event); err != nil {
		slog.Error("failed to emit transition event",
			"application_id", event.ApplicationID,
			"to_status", event.To,
			"error", err,
		)
	}
}

// RequiredFormFields are the answers every application must carry.
var RequiredFormFields = []string{"full_name", "email", "university", "major", "current_gpa", "personal_statement"}

func validateForm(f Form) error {
	values := map[string]string{
		"full_name":          f.FullName,
		"email":              f.Email,
		"university":         f.University,
		"major":              f.Major,
		"current_gpa":        f.CurrentGPA,
		"personal_statement": f.PersonalStatement,
	}

	for _, field := range RequiredFormFields {
		if strings.TrimSpace(values[field]) == "" {
			return &ValidationError{Field: "form." + field, Reason: "this field is required"}
		}
	}

	if !strings.Contains(f.Email, "@") {
		return &ValidationError{Field: "form.email", Reason: "not a valid email address"}
	}

	return nil
}

func validateDocuments(required []string, docs map[string]string) error {
	for _, name := range required {
		if strings.TrimSpace(docs[name]) == "" {
			return &ValidationError{Field: "documents." + name, Reason: "this document is required"}
		}
	}

	return nil
}
