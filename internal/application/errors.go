package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("application not found")
	// ErrStale is returned by a repository when the stored status no longer matches the expected one.
	ErrStale = errors.New("application status changed concurrently")
)

// Reasons carried by InvalidTransitionError.
const (
	ReasonTerminal   = "terminal"
	ReasonNotAllowed = "not_allowed"
	ReasonStale      = "stale"
)

// ValidationError reports missing or invalid input. The caller can correct it and retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthorizationError reports an actor whose role is not listed for the requested edge.
type AuthorizationError struct {
	Role    Role
	Action  Action
	Allowed []Role
}

func (e *AuthorizationError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("role %s may not %s applications", e.Role, e.Action)
	}

	allowed := make([]string, len(e.Allowed))
	for i, r := range e.Allowed {
		allowed[i] = string(r)
	}

	return fmt.Sprintf("role %s may not %s this application (requires %s)", e.Role, e.Action, strings.Join(allowed, " or "))
}

// InvalidTransitionError reports an action that the current status does not permit.
type InvalidTransitionError struct {
	From   Status
	Action Action
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	switch e.Reason {
	case ReasonTerminal:
		return fmt.Sprintf("cannot %s: application is %s, which is final", e.Action, e.From)
	case ReasonStale:
		return fmt.Sprintf("cannot %s: application is now %s", e.Action, e.From)
	default:
		return fmt.Sprintf("cannot %s an application in status %s", e.Action, e.From)
	}
}

// PaymentError wraps a payment processor failure. The application is left unchanged.
type PaymentError struct {
	ApplicationID uuid.UUID
	Amount        int64
	Err           error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("disbursing %d for application %s: %v", e.Amount, e.ApplicationID, e.Err)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}
