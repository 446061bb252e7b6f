// Package notify delivers application transition events to interested parties.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MrJamesThe3rd/bursar/internal/application"
)

// Emitter is the application.Notifier capability.
type Emitter interface {
	Notify(ctx context.Context, event application.Event) error
}

// Logger writes every event to the structured log.
type Logger struct{}

func (Logger) Notify(ctx context.Context, e application.Event) error {
	attrs := []any{
		"application_id", e.ApplicationID,
		"urn", e.URN,
		"from_status", e.From,
		"to_status", e.To,
		"actor_role", e.ActorRole,
	}

	if e.ActorID != nil {
		attrs = append(attrs, "actor_id", *e.ActorID)
	}

	slog.InfoContext(ctx, "application status changed", attrs...)

	return nil
}

// Multi fans an event out to every emitter. All emitters run even if one fails.
type Multi []Emitter

func (m Multi) Notify(ctx context.Context, e application.Event) error {
	var errs []error

	for _, emitter := range m {
		if err := emitter.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
