package pledge

import (
	"go.uber.org/fx"

	"github.com/sightcare/netra/internal/pledge/repository"
	"github.com/sightcare/netra/internal/pledge/service"
)

var Module = fx.Module("pledge.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.NewStore),
	fx.Provide(service.NewService),
)
