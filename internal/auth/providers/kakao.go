package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/brizzai/swagger-token/internal/config"
	"github.com/brizzai/swagger-token/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrEmptyAccessToken is returned when the token endpoint answered without an access token
var ErrEmptyAccessToken = errors.New("provider returned an empty access token")

// KakaoProvider redeems codes against a Kakao style token endpoint, which
// expects the client credentials in the form body.
type KakaoProvider struct {
	name         string
	oauth2Config *oauth2.Config
	client       *http.Client
}

func NewKakaoProvider(cfg *config.ProviderConfig, client *http.Client) *KakaoProvider {
	return &KakaoProvider{
		name: cfg.Name,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: cfg.RedirectURI,
		},
		client: client,
	}
}

func (p *KakaoProvider) Name() string {
	return p.name
}

func (p *KakaoProvider) GetAuthURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

func (p *KakaoProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	if p.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	}

	logger.Debug("exchanging authorization code", zap.String("token_url", p.oauth2Config.Endpoint.TokenURL))
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			logger.Error("token endpoint rejected the code",
				zap.Int("status", retrieveErr.Response.StatusCode),
				zap.String("error_code", retrieveErr.ErrorCode),
				zap.ByteString("body", retrieveErr.Body),
			)
		}
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}
	if token.AccessToken == "" {
		return "", ErrEmptyAccessToken
	}

	logger.Debug("received provider access token", zap.String("token_type", token.TokenType))
	return token.AccessToken, nil
}
