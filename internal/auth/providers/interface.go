package providers

import (
	"context"
)

// Provider defines the identity provider side of the redemption flow
type Provider interface {
	// Name is the provider identifier sent to the backend, e.g. "KAKAO"
	Name() string

	// GetAuthURL returns the authorize URL the operator's browser is sent to.
	// An empty state leaves the state parameter out.
	GetAuthURL(state string) string

	// ExchangeCode redeems an authorization code for a provider access token
	ExchangeCode(ctx context.Context, code string) (string, error)
}
