package components

import (
	"packtrack/internal/infra/db"
	"packtrack/internal/infra/readstore"
	"packtrack/internal/infra/uow"
	"packtrack/internal/usecase/queries"
	"packtrack/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		fx.Annotate(
			readstore.NewPackReadStore,
			fx.As(new(queries.PackReadStore)),
		),
		fx.Annotate(
			readstore.NewShiftReadStore,
			fx.As(new(queries.ShiftReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
