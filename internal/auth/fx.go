package auth

import (
	"go.uber.org/fx"

	"github.com/sightcare/netra/internal/auth/repository"
	"github.com/sightcare/netra/internal/auth/service"
	"github.com/sightcare/netra/internal/auth/session"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(session.NewManager),
)
