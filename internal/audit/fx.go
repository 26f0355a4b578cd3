package audit

import (
	"go.uber.org/fx"

	"github.com/sightcare/netra/internal/audit/repository"
	"github.com/sightcare/netra/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
