package config

import (
	"go.uber.org/fx"
)

// Module is the Fx module providing *Config from the embedded YAML bytes
// supplied by the application's main package.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
)
