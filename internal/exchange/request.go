package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/coinanalysis/internal/metrics"
	"github.com/rickgao/coinanalysis/internal/model"
)

// APIError is a non-2xx HTTP response from the exchange.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange http error %d: %s", e.StatusCode, e.Message)
}

// Envelope is the common response wrapper of every endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Err returns an *model.UpstreamError when the exchange reported failure.
func (e *Envelope) Err(endpoint, market string) error {
	if e.Success {
		return nil
	}
	return &model.UpstreamError{
		Endpoint: endpoint,
		Market:   market,
		Message:  e.Message,
	}
}

// Decode unmarshals the result payload into v.
// Shape mismatches, including a missing or null result, are reported as
// *model.MalformedDataError.
func (e *Envelope) Decode(v any) error {
	raw := bytes.TrimSpace(e.Result)
	if len(raw) == 0 {
		return &model.MalformedDataError{Field: "result", Err: errors.New("missing")}
	}
	if bytes.Equal(raw, []byte("null")) {
		return &model.MalformedDataError{Field: "result", Value: "null", Err: errors.New("result is null")}
	}
	if err := json.Unmarshal(e.Result, v); err != nil {
		return &model.MalformedDataError{Field: "result", Value: preview(e.Result), Err: err}
	}
	return nil
}

// doRequest performs a GET request against path.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("exchange request",
		"path", path,
		"query", query.Encode(),
		"request_id", requestID,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// get performs a request and decodes the response envelope.
// A success=false envelope is returned without error.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) (*Envelope, error) {
	start := time.Now()

	body, err := c.doRequest(ctx, "/public/"+endpoint, query)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.metrics.Observe(endpoint, metrics.OutcomeHTTPError, time.Since(start))
		} else {
			c.metrics.Observe(endpoint, metrics.OutcomeTransportError, time.Since(start))
		}
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.metrics.Observe(endpoint, metrics.OutcomeTransportError, time.Since(start))
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if !env.Success {
		c.metrics.Observe(endpoint, metrics.OutcomeUpstreamError, time.Since(start))
		c.logger.Debug("exchange reported failure",
			"endpoint", endpoint,
			"message", env.Message,
		)
		return &env, nil
	}

	c.metrics.Observe(endpoint, metrics.OutcomeOK, time.Since(start))
	return &env, nil
}

// preview shortens a payload for error messages.
func preview(b []byte) string {
	const limit = 64
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
