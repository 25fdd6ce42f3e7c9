// Package backend talks to the service issuing access tokens for provider logins.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brizzai/swagger-token/internal/config"
	"github.com/brizzai/swagger-token/internal/logger"
	"github.com/brizzai/swagger-token/internal/requester"
	"go.uber.org/zap"
)

// ErrInvalidResponse is returned when a 2xx answer is not a login envelope
var ErrInvalidResponse = errors.New("backend returned an unreadable success response")

// LoginClient exchanges a provider token for a service token
type LoginClient interface {
	SocialLogin(ctx context.Context, provider, providerToken string) (*LoginResponse, error)
}

type Client struct {
	loginURL  string
	requester *requester.HTTPRequester
}

func NewClient(cfg *config.BackendConfig, r *requester.HTTPRequester) *Client {
	return &Client{
		loginURL:  cfg.LoginURL,
		requester: r,
	}
}

// SocialLogin posts the provider token to the login endpoint. Error statuses
// are returned as a LoginResponse, not as an error: only transport failures
// and unreadable 2xx bodies are errors.
func (c *Client) SocialLogin(ctx context.Context, provider, providerToken string) (*LoginResponse, error) {
	resp, err := c.requester.PostJSON(ctx, c.loginURL, LoginRequest{
		Provider:    provider,
		AccessToken: providerToken,
	})
	if err != nil {
		return nil, fmt.Errorf("social login request failed: %w", err)
	}

	result, err := parseResult(resp)
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		logger.Warn("backend rejected social login",
			zap.Int("status", resp.StatusCode),
			zap.String("message", result.Message),
		)
	}
	return &LoginResponse{StatusCode: resp.StatusCode, Result: result}, nil
}

func parseResult(resp *requester.Response) (*LoginResult, error) {
	var result LoginResult
	err := json.Unmarshal(resp.Body, &result)
	if err == nil {
		return &result, nil
	}

	if resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	// Error pages from proxies are rarely JSON; keep the text for the operator
	logger.Debug("backend error body is not JSON", zap.Int("status", resp.StatusCode), zap.Error(err))
	return &LoginResult{
		Status:  resp.StatusCode,
		Message: string(resp.Body),
	}, nil
}
