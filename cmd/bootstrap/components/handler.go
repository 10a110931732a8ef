package components

import (
	"packtrack/internal/handler"
	"packtrack/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReceptionHandler,
		api.NewPackHandler,
		api.NewShiftHandler,
	),
	fx.Invoke(handler.NewRouter),
)
