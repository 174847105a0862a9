package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// httpClient implements Client against the provider's REST API.
type httpClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
	logger    zerolog.Logger
}

// NewHTTPClient creates a Client for the hosted payment provider. The
// timeout bounds every session lookup so reconciliation never blocks
// indefinitely on the provider.
func NewHTTPClient(baseURL, secretKey string, timeout time.Duration, logger zerolog.Logger) Client {
	return &httpClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
		logger:    logger.With().Str("component", "payment-client").Logger(),
	}
}

// CreateSession creates a hosted checkout session.
func (c *httpClient) CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", params, &session); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("session_id", session.ID).
		Int64("amount_total", session.AmountTotal).
		Msg("checkout session created")

	return &session, nil
}

// FetchSession retrieves the authoritative session state by ID.
func (c *httpClient) FetchSession(ctx context.Context, id string) (*Session, error) {
	path := "/v1/checkout/sessions/" + url.PathEscape(id)

	var session Session
	if err := c.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Network failures and timeouts are retryable by the caller.
		c.logger.Warn().Err(err).Str("path", path).Msg("provider request failed")
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Msg("provider returned retryable status")
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("body", string(data)).
			Msg("provider rejected request")
		return fmt.Errorf("provider rejected request with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}

	return nil
}
