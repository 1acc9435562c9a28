package metrics

import (
	"go.uber.org/fx"
)

// NoopModule is the Fx module providing the noop MetricRecorder. Swap in
// infrastructure/metrics.Module for the Prometheus-backed recorder.
var NoopModule = fx.Options(
	fx.Provide(fx.Annotate(
		NewNoopRecorder,
		fx.As(new(MetricRecorder)),
	)),
)
