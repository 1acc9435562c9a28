package metrics

import (
	"go.uber.org/fx"

	metrics "github.com/tigerroll/lineup/pkg/orchestration/core/metrics"
)

// Module provides the Prometheus-backed metric recorder.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewPrometheusRecorder,
		fx.As(new(metrics.MetricRecorder)),
	)),
)
