package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/sightcare/netra/internal/analytics"
	"github.com/sightcare/netra/internal/audit"
	"github.com/sightcare/netra/internal/auth"
	"github.com/sightcare/netra/internal/card"
	"github.com/sightcare/netra/internal/clock"
	"github.com/sightcare/netra/internal/config"
	"github.com/sightcare/netra/internal/migration"
	"github.com/sightcare/netra/internal/observability"
	"github.com/sightcare/netra/internal/pledge"
	"github.com/sightcare/netra/internal/ratelimit"
	"github.com/sightcare/netra/internal/server"
	"github.com/sightcare/netra/pkg/db"
)

// The api app serves the public surface only: pledge intake, reference
// verification and the stats endpoints. Staff routes stay on the monolith.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		audit.Module,
		auth.Module,
		pledge.Module,
		analytics.Module,
		card.Module,
		ratelimit.Module,
		migration.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterPublicRoutes()
			s.RegisterStatsRoutes()
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
