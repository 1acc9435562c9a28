package notification

import (
	"go.uber.org/fx"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
)

// Module provides the logging Notifier implementation.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLoggingNotifier,
		fx.As(new(port.Notifier)),
	)),
)
