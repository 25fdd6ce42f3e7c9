package config

import "go.uber.org/fx"

// Module exposes the sections of a supplied *Config to the other modules
var Module = fx.Module("config",
	fx.Provide(
		func(c *Config) *ProviderConfig { return &c.Provider },
		func(c *Config) *BackendConfig { return &c.Backend },
		func(c *Config) *CallbackConfig { return &c.Callback },
		func(c *Config) *BrowserConfig { return &c.Browser },
		func(c *Config) *OutputConfig { return &c.Output },
	),
)
