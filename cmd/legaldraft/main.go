package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/legaldraft/legaldraft/internal/auth"
	"github.com/legaldraft/legaldraft/internal/clock"
	"github.com/legaldraft/legaldraft/internal/config"
	"github.com/legaldraft/legaldraft/internal/logger"
	"github.com/legaldraft/legaldraft/internal/migration"
	"github.com/legaldraft/legaldraft/internal/observability/metrics"
	"github.com/legaldraft/legaldraft/internal/providers/email"
	"github.com/legaldraft/legaldraft/internal/server"
	"github.com/legaldraft/legaldraft/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(newSnowflake),
		db.Module,
		migration.Module,
		metrics.Module,
		email.Module,
		auth.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
