package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/auth"
	"github.com/MrJamesThe3rd/bursar/internal/http/middleware"
)

func TestAuthenticate(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", "bursar", time.Hour)
	userID := uuid.New()

	token, _, err := issuer.Issue(auth.Identity{UserID: userID, Role: application.RoleReviewer})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "Valid", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "LowercaseScheme", header: "bearer " + token, wantStatus: http.StatusOK},
		{name: "Missing", header: "", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "Garbage", header: "Bearer not-a-token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got auth.Identity

			h := middleware.Authenticate(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = auth.IdentityFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID, got.UserID)
				assert.Equal(t, application.RoleReviewer, got.Role)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		identity   *auth.Identity
		wantStatus int
	}{
		{name: "Allowed", identity: &auth.Identity{UserID: uuid.New(), Role: application.RoleFinance}, wantStatus: http.StatusOK},
		{name: "Forbidden", identity: &auth.Identity{UserID: uuid.New(), Role: application.RoleStudent}, wantStatus: http.StatusForbidden},
		{name: "Anonymous", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := middleware.RequireRole(application.RoleReviewer, application.RoleFinance)(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
			)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.identity != nil {
				req = req.WithContext(auth.WithIdentity(req.Context(), *tt.identity))
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

type countingLimiter struct {
	counts map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) bool {
	l.counts[key]++
	return l.counts[key] <= limit
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int{}}
	h := middleware.RateLimit(limiter, "login", 2, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5002"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000"))

	assert.Equal(t, 3, limiter.counts["login:10.0.0.1"])
}

func TestRedisLimiterNilAllows(t *testing.T) {
	l := middleware.NewRedisLimiter(nil)
	assert.Nil(t, l)
	assert.True(t, l.Allow(context.Background(), "login:1.2.3.4", 1, time.Minute))

	h := middleware.RateLimit(nil, "login", 1, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
