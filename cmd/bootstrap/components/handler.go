package components

import (
	"discount-service/internal/handler"
	"discount-service/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewDiscountHandler,
	),
	fx.Invoke(handler.NewRouter),
)
