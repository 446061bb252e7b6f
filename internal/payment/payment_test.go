package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/payment"
)

func TestClient_Disburse(t *testing.T) {
	d := application.Disbursement{
		ApplicationID: uuid.New(),
		URN:           "URN-2026-000001",
		StudentID:     uuid.New(),
		Amount:        2500,
	}

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
		wantErr bool
	}{
		{
			name: "Success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/disbursements", r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				assert.Equal(t, d.ApplicationID.String(), r.Header.Get("Idempotency-Key"))

				var body map[string]any
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, float64(2500), body["amount"])
				assert.Equal(t, d.URN, body["reference"])

				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"id":"pay_42","status":"accepted"}`))
			},
			want: "pay_42",
		},
		{
			name: "GatewayRejects",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "insufficient float", http.StatusUnprocessableEntity)
			},
			wantErr: true,
		},
		{
			name: "MissingID",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"status":"accepted"}`))
			},
			wantErr: true,
		},
		{
			name: "Garbage",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := payment.NewClient(srv.URL+"/", "secret", time.Second)
			got, err := client.Disburse(context.Background(), d)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Disburse_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := payment.NewClient(srv.URL, "", time.Second).Disburse(context.Background(), application.Disbursement{ApplicationID: uuid.New()})

	var gerr *payment.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusServiceUnavailable, gerr.StatusCode)
	assert.Equal(t, "down for maintenance", gerr.Message)
}

func TestSimulator_Idempotent(t *testing.T) {
	sim := payment.NewSimulator()
	d := application.Disbursement{ApplicationID: uuid.New(), Amount: 100}

	first, err := sim.Disburse(context.Background(), d)
	require.NoError(t, err)

	second, err := sim.Disburse(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := sim.Disburse(context.Background(), application.Disbursement{ApplicationID: uuid.New(), Amount: 100})
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}
