// Package httperr maps domain errors to HTTP responses and decodes request bodies.
package httperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/catalog"
	"github.com/MrJamesThe3rd/bursar/internal/payment"
	"github.com/MrJamesThe3rd/bursar/internal/user"
)

// BadRequest marks malformed input such as unparsable JSON or ids.
type BadRequest struct {
	Err error
}

func (e *BadRequest) Error() string { return e.Err.Error() }
func (e *BadRequest) Unwrap() error { return e.Err }

type body struct {
	Error   string             `json:"error"`
	Field   string             `json:"field,omitempty"`
	Status  application.Status `json:"status,omitempty"`
	Reason  string             `json:"reason,omitempty"`
	Allowed []application.Role `json:"allowed_roles,omitempty"`
}

// Write sends the response matching err. Unknown errors are logged and answered with a generic 500.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *application.ValidationError
		authz      *application.AuthorizationError
		invalid    *application.InvalidTransitionError
		paymentErr *application.PaymentError
		gateway    *payment.GatewayError
		bad        *BadRequest
	)

	switch {
	case errors.As(err, &validation):
		JSON(w, http.StatusUnprocessableEntity, body{Error: validation.Error(), Field: validation.Field})
	case errors.As(err, &authz):
		JSON(w, http.StatusForbidden, body{Error: authz.Error(), Allowed: authz.Allowed})
	case errors.As(err, &invalid):
		JSON(w, http.StatusConflict, body{Error: invalid.Error(), Status: invalid.From, Reason: invalid.Reason})
	case errors.As(err, &paymentErr):
		slog.Error("payment failed", "application_id", paymentErr.ApplicationID, "error", paymentErr.Err)

		msg := "payment processor failed; the application was not changed"
		if errors.As(err, &gateway) {
			msg = "payment gateway rejected the disbursement; the application was not changed"
		}

		JSON(w, http.StatusBadGateway, body{Error: msg})
	case errors.Is(err, application.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		JSON(w, http.StatusNotFound, body{Error: err.Error()})
	case errors.Is(err, user.ErrEmailTaken):
		JSON(w, http.StatusConflict, body{Error: err.Error(), Field: "email"})
	case errors.Is(err, user.ErrInvalidCredentials):
		JSON(w, http.StatusUnauthorized, body{Error: err.Error()})
	case errors.Is(err, catalog.ErrMalformed):
		JSON(w, http.StatusBadRequest, body{Error: err.Error(), Field: "file"})
	case errors.As(err, &bad):
		JSON(w, http.StatusBadRequest, body{Error: bad.Error()})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, http.StatusInternalServerError, body{Error: "internal error"})
	}
}

// Message writes a plain error body with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, body{Error: msg})
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
