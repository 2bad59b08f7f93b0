package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignite/subscription-gateway/internal/config"
	"github.com/ignite/subscription-gateway/internal/pkg/httpretry"
	"github.com/ignite/subscription-gateway/internal/subscription"
)

// HTTPTransport delivers submissions to a generic list provider over
// HTTPS. Requests retry with backoff on transient failures.
type HTTPTransport struct {
	baseURL string
	apiKey  string
	client  httpretry.HTTPDoer
}

// NewHTTPTransport creates an HTTP transport from config. The
// underlying client retries 429/5xx with exponential backoff.
func NewHTTPTransport(cfg config.TransportConfig) *HTTPTransport {
	base := &http.Client{Timeout: cfg.Timeout()}
	if cfg.TimeoutSeconds == 0 {
		base.Timeout = 30 * time.Second
	}
	return &HTTPTransport{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpretry.NewRetryClient(base, 3),
	}
}

type subscribeRequest struct {
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

type subscribeResponse struct {
	SubscriptionID string `json:"subscription_id"`
	Message        string `json:"message"`
	Error          string `json:"error"`
}

// Submit posts the subscription to {baseURL}/subscriptions.
func (t *HTTPTransport) Submit(ctx context.Context, data subscription.Data) (subscription.Result, error) {
	payload, err := json.Marshal(subscribeRequest{
		Email:     data.Email,
		Source:    data.Source,
		Timestamp: data.Timestamp,
	})
	if err != nil {
		return subscription.Result{}, fmt.Errorf("encoding subscription: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/subscriptions", bytes.NewReader(payload))
	if err != nil {
		return subscription.Result{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return subscription.Result{}, fmt.Errorf("delivering subscription: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return subscription.Result{}, fmt.Errorf("reading provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var parsed subscribeResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
			return subscription.Result{}, fmt.Errorf("provider returned %d: %s", resp.StatusCode, parsed.Error)
		}
		return subscription.Result{}, fmt.Errorf("provider returned %d", resp.StatusCode)
	}

	var parsed subscribeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return subscription.Result{}, fmt.Errorf("parsing provider response: %w", err)
	}
	if parsed.SubscriptionID == "" {
		return subscription.Result{}, fmt.Errorf("provider response missing subscription id")
	}

	return subscription.Result{
		SubscriptionID: parsed.SubscriptionID,
		Message:        parsed.Message,
	}, nil
}
