package components

import (
	"discount-service/internal/pkg/clock"
	"discount-service/internal/usecase/commands"
	"discount-service/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		commands.NewDiscountCommands,
		queries.NewDiscountQueries,
	),
)
