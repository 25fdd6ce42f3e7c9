package flow

import "go.uber.org/fx"

// Module provides the redemption Flow
var Module = fx.Module("flow",
	fx.Provide(
		New,
	),
)
