package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Southwavecodes/Southwaveapp/pkg/circuitbreaker"
)

// RequestError reports a non-success response from the session endpoint.
type RequestError struct {
	Status int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("checkout session request failed with status %d", e.Status)
}

type SessionClientConfig struct {
	SecretKey  string
	Endpoint   string
	SuccessURL string
	CancelURL  string
	HTTPClient *http.Client
}

// SessionClient creates hosted-checkout sessions over the provider's HTTP
// API using the configured secret key.
type SessionClient struct {
	cfg        SessionClientConfig
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
}

func NewSessionClient(cfg SessionClientConfig) *SessionClient {
	c := &SessionClient{
		cfg:        cfg,
		httpClient: cfg.HTTPClient,
		breaker:    circuitbreaker.New("checkout"),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

type sessionRequest struct {
	Mode       string     `json:"mode"`
	SuccessURL string     `json:"success_url"`
	CancelURL  string     `json:"cancel_url"`
	LineItems  []LineItem `json:"line_items"`
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *SessionClient) CreateSession(ctx context.Context, items []LineItem) (*Session, error) {
	payload, err := json.Marshal(sessionRequest{
		Mode:       "payment",
		SuccessURL: c.cfg.SuccessURL,
		CancelURL:  c.cfg.CancelURL,
		LineItems:  items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)

	resp, err := c.breaker.Do(c.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{Status: resp.StatusCode}
	}

	var body sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	return &Session{ID: body.ID, URL: body.URL}, nil
}
