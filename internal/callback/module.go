package callback

import "go.uber.org/fx"

// Module provides the listener factory used by each flow run
var Module = fx.Module("callback",
	fx.Provide(
		NewFactory,
	),
)
