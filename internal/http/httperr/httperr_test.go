package httperr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/catalog"
	"github.com/MrJamesThe3rd/bursar/internal/http/httperr"
	"github.com/MrJamesThe3rd/bursar/internal/user"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantField  string
		wantReason string
	}{
		{name: "Validation", err: &application.ValidationError{Field: "amount", Reason: "must be positive"}, wantStatus: http.StatusUnprocessableEntity, wantField: "amount"},
		{name: "Authorization", err: &application.AuthorizationError{Role: application.RoleStudent, Action: application.ActionApprove}, wantStatus: http.StatusForbidden},
		{name: "InvalidTransition", err: &application.InvalidTransitionError{From: application.StatusPaid, Action: application.ActionReject, Reason: application.ReasonTerminal}, wantStatus: http.StatusConflict, wantReason: "terminal"},
		{name: "Payment", err: &application.PaymentError{ApplicationID: uuid.New(), Amount: 10, Err: errors.New("timeout")}, wantStatus: http.StatusBadGateway},
		{name: "WrappedNotFound", err: fmt.Errorf("looking up: %w", catalog.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "ApplicationNotFound", err: application.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "EmailTaken", err: user.ErrEmailTaken, wantStatus: http.StatusConflict, wantField: "email"},
		{name: "BadCredentials", err: user.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "BadRequest", err: &httperr.BadRequest{Err: errors.New("bad id")}, wantStatus: http.StatusBadRequest},
		{name: "Unknown", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			httperr.Write(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])

			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, body["field"])
			}

			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, body["reason"])
			}

			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "internal error", body["error"])
			}
		})
	}
}

type sample struct {
	Email  string `json:"email" validate:"required,email"`
	Amount *int64 `json:"amount" validate:"omitempty,gt=0"`
	Nested struct {
		Name string `json:"name" validate:"required"`
	} `json:"nested"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantBad   bool
	}{
		{name: "Valid", body: `{"email":"a@b.co","nested":{"name":"x"}}`},
		{name: "MissingEmail", body: `{"nested":{"name":"x"}}`, wantField: "email"},
		{name: "NestedField", body: `{"email":"a@b.co","nested":{}}`, wantField: "nested.name"},
		{name: "NonPositive", body: `{"email":"a@b.co","amount":0,"nested":{"name":"x"}}`, wantField: "amount"},
		{name: "Malformed", body: `{"email":`, wantBad: true},
		{name: "UnknownField", body: `{"email":"a@b.co","role":"finance","nested":{"name":"x"}}`, wantBad: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var v sample
			err := httperr.Decode(req, &v)

			switch {
			case tt.wantBad:
				var bad *httperr.BadRequest
				assert.ErrorAs(t, err, &bad)
			case tt.wantField != "":
				var verr *application.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				assert.NotEmpty(t, verr.Reason)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
