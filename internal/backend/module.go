package backend

import "go.uber.org/fx"

// Module provides the backend login client
var Module = fx.Module("backend",
	fx.Provide(
		fx.Annotate(
			NewClient,
			fx.As(new(LoginClient)),
		),
	),
)
