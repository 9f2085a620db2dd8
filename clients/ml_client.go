package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// MLClient proxies to the Python recommendation/vision service. The store
// works without it; callers treat failures as degraded, not fatal.
type MLClient interface {
	Recommend(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	Trending(ctx context.Context) (json.RawMessage, error)
	MapColor(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	TryOn(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
}

// HTTPMLClient is the production MLClient over plain HTTP.
type HTTPMLClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPMLClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPMLClient {
	return &HTTPMLClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPMLClient) Recommend(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/recommend", payload)
}

func (c *HTTPMLClient) Trending(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/trending", nil)
}

func (c *HTTPMLClient) MapColor(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/color-map", payload)
}

func (c *HTTPMLClient) TryOn(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/try-on", payload)
}

// do forwards the raw JSON payload and hands back the raw JSON response.
// The ML service owns both schemas; this side stays a thin pipe.
func (c *HTTPMLClient) do(ctx context.Context, method, path string, payload json.RawMessage) (json.RawMessage, error) {
	var body io.Reader
	if len(payload) > 0 {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build ML request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call ML service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ML response: %w", err)
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("ML service error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("ML service returned %d", resp.StatusCode)
	}
	return data, nil
}
