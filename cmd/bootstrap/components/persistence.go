package components

import (
	"discount-service/internal/infra/audit"
	"discount-service/internal/infra/db"
	"discount-service/internal/infra/readstore"
	"discount-service/internal/infra/uow"
	"discount-service/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		audit.NewPostgresSink,
		fx.Annotate(
			readstore.NewDiscountReadStore,
			fx.As(new(queries.DiscountReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
