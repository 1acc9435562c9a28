package export

import (
	"go.uber.org/fx"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
)

// Module provides the Parquet audit exporter.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewParquetAuditExporter,
		fx.As(new(port.AuditTrailExporter)),
	)),
)
