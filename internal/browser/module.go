package browser

import "go.uber.org/fx"

// Module provides the browser Launcher
var Module = fx.Module("browser",
	fx.Provide(
		NewLauncher,
	),
)
