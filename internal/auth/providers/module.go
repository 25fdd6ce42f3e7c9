package providers

import (
	"github.com/brizzai/swagger-token/internal/config"
	"github.com/brizzai/swagger-token/internal/requester"
	"go.uber.org/fx"
)

// Module provides the configured Provider
var Module = fx.Module("providers",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.ProviderConfig, r *requester.HTTPRequester) *KakaoProvider {
				return NewKakaoProvider(cfg, r.Client())
			},
			fx.As(new(Provider)),
		),
	),
)
