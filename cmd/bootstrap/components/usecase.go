package components

import (
	"packtrack/internal/pkg/clock"
	"packtrack/internal/pkg/config"
	"packtrack/internal/usecase/commands"
	"packtrack/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) config.ReceptionConfig {
		return cfg.Reception
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReceptionCommands,
		commands.NewPackCommands,
		commands.NewShiftCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewPackQueries,
		queries.NewShiftQueries,
	),
)
