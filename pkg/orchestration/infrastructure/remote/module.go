package remote

import (
	"go.uber.org/fx"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
)

// Module provides the HTTP implementations of the external service ports.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewHTTPProcessingService,
		fx.As(new(port.ProcessingService)),
	)),
	fx.Provide(fx.Annotate(
		NewHTTPEntityExistenceChecker,
		fx.As(new(port.EntityExistenceChecker)),
	)),
)
