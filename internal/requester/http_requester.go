package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brizzai/swagger-token/internal/config"
	"github.com/brizzai/swagger-token/internal/logger"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// HTTPRequester executes outbound requests with a shared client
type HTTPRequester struct {
	client *http.Client
}

// NewHTTPRequester creates a new HTTPRequester using the backend timeout
func NewHTTPRequester(cfg *config.BackendConfig) *HTTPRequester {
	timeout := defaultTimeout
	if cfg != nil && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	return &HTTPRequester{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Client returns the underlying HTTP client
func (r *HTTPRequester) Client() *http.Client {
	return r.client
}

// PostJSON marshals payload and POSTs it to url
func (r *HTTPRequester) PostJSON(ctx context.Context, url string, payload interface{}) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return r.Do(ctx, &Request{
		URL:         url,
		Method:      http.MethodPost,
		Body:        body,
		ContentType: "application/json",
		Headers:     map[string]string{"Accept": "application/json"},
	})
}

// Do executes the request and reads the whole response body. Non-2xx
// statuses are not errors; callers inspect Response.StatusCode.
func (r *HTTPRequester) Do(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	logger.Info("request route", zap.String("method", req.Method), zap.String("url", req.URL))

	httpResp, err := r.client.Do(httpReq)
	if err != nil {
		logger.Error("failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close response body", zap.Error(closeErr))
		}
	}()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logger.Debug("response received", zap.Int("status", httpResp.StatusCode), zap.Int("bytes", len(bodyBytes)))
	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       bodyBytes,
		Headers:    httpResp.Header,
	}, nil
}
