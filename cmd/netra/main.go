package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/sightcare/netra/internal/clock"
	"github.com/sightcare/netra/internal/migration"
	"github.com/sightcare/netra/internal/observability"
	"github.com/sightcare/netra/internal/server"
	"github.com/sightcare/netra/pkg/db"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,

		migration.Module,
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
