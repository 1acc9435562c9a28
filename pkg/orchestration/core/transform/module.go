package transform

import (
	"go.uber.org/fx"
)

// Module is the Fx module providing the batch-type registry preloaded with
// the built-in types. Applications extend it via fx.Invoke hooks that call
// Register on the provided *Registry.
var Module = fx.Options(
	fx.Provide(NewDefaultRegistry),
)
