package analytics

import (
	"go.uber.org/fx"

	"github.com/sightcare/netra/internal/analytics/service"
)

var Module = fx.Module("analytics.service",
	fx.Provide(service.NewService),
)
