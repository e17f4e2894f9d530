package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/internal/clock"
	"github.com/smallbiznis/gstbill/internal/config"
	"github.com/smallbiznis/gstbill/internal/migration"
	"github.com/smallbiznis/gstbill/internal/observability"
	"github.com/smallbiznis/gstbill/internal/seed"
	"github.com/smallbiznis/gstbill/internal/server"
	"github.com/smallbiznis/gstbill/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Schema first, then optional bootstrap data
		migration.Module,
		seed.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
