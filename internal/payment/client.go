// Package payment moves approved award amounts to students.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/bursar/internal/application"
)

// Client talks to a disbursement gateway over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type disbursementRequest struct {
	ApplicationID string `json:"application_id"`
	Reference     string `json:"reference"`
	StudentID     string `json:"student_id"`
	Amount        int64  `json:"amount"`
}

type disbursementResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// GatewayError is a non-2xx answer from the gateway.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

// Disburse posts the disbursement. The application id is sent as the idempotency
// key so a retried request never pays twice.
func (c *Client) Disburse(ctx context.Context, d application.Disbursement) (string, error) {
	body, err := json.Marshal(disbursementRequest{
		ApplicationID: d.ApplicationID.String(),
		Reference:     d.URN,
		StudentID:     d.StudentID.String(),
		Amount:        d.Amount,
	})
	if err != nil {
		return "", fmt.Errorf("encoding disbursement: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/disbursements", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", d.ApplicationID.String())

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &GatewayError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var out disbursementResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decoding gateway response: %w", err)
	}

	if out.ID == "" {
		return "", fmt.Errorf("gateway response has no disbursement id")
	}

	return out.ID, nil
}
