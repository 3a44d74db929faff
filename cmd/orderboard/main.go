package main

import (
	"github.com/ovenlight/orderboard/internal/authz"
	"github.com/ovenlight/orderboard/internal/clock"
	"github.com/ovenlight/orderboard/internal/command"
	"github.com/ovenlight/orderboard/internal/config"
	"github.com/ovenlight/orderboard/internal/counter"
	"github.com/ovenlight/orderboard/internal/discord"
	"github.com/ovenlight/orderboard/internal/logger"
	"github.com/ovenlight/orderboard/internal/metrics"
	"github.com/ovenlight/orderboard/internal/migration"
	"github.com/ovenlight/orderboard/internal/server"
	"github.com/ovenlight/orderboard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		db.Module,
		migration.Module,
		metrics.Module,

		// Domain
		counter.Module,
		authz.Module,
		fx.Provide(func(s *authz.Service) command.Authorizer { return s }),
		command.Module,

		// Surfaces
		discord.Module,
		server.Module,
	)
	app.Run()
}
