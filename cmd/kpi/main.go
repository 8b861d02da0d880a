package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kpi/internal/clock"
	"github.com/smallbiznis/kpi/internal/config"
	"github.com/smallbiznis/kpi/internal/migration"
	"github.com/smallbiznis/kpi/internal/observability"
	"github.com/smallbiznis/kpi/internal/server"
	"github.com/smallbiznis/kpi/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
