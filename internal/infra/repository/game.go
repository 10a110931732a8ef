package repository

import (
	"context"

	"packtrack/internal/domain/game"
	"packtrack/internal/infra"
	"packtrack/internal/infra/db"
	"packtrack/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type GameRepository struct {
	db db.DBTX
}

func NewGameRepository(dbtx db.DBTX) *GameRepository {
	return &GameRepository{db: dbtx}
}

const gameColumns = `id, code, name, price_cents, pack_size, status, created_at`

func (r *GameRepository) FindByCode(ctx context.Context, code string) (*game.Game, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE code = $1`, code)
	g, err := scanGame(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("game not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find game by code", err)
	}
	return g, nil
}

func (r *GameRepository) FindByID(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("game not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find game by id", err)
	}
	return g, nil
}

func scanGame(row pgx.Row) (*game.Game, error) {
	var (
		id         uuid.UUID
		code, name string
		priceCents int64
		packSize   pgtype.Int4
		status     string
		createdAt  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &code, &name, &priceCents, &packSize, &status, &createdAt); err != nil {
		return nil, err
	}

	st, err := game.NewStatus(status)
	if err != nil {
		return nil, err
	}

	var size *int
	if packSize.Valid {
		v := int(packSize.Int32)
		size = &v
	}

	return game.ReconstructGame(id, code, name, priceCents, size, st, pgconv.TimeFromPgtype(createdAt)), nil
}
