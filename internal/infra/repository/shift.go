package repository

import (
	"context"

	"packtrack/internal/infra"
	"packtrack/internal/infra/db"
	"packtrack/internal/pkg/pgconv"
	"packtrack/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ShiftRepository struct {
	db db.DBTX
}

func NewShiftRepository(dbtx db.DBTX) *ShiftRepository {
	return &ShiftRepository{db: dbtx}
}

func (r *ShiftRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.ShiftSnapshot, error) {
	var (
		shiftID, storeID uuid.UUID
		openedAt         pgtype.Timestamptz
		closedAt         pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, store_id, opened_at, closed_at FROM shifts WHERE id = $1`, id,
	).Scan(&shiftID, &storeID, &openedAt, &closedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("shift not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find shift by id", err)
	}
	return &shared.ShiftSnapshot{
		ID:       shiftID,
		StoreID:  storeID,
		OpenedAt: pgconv.TimeFromPgtype(openedAt),
		ClosedAt: pgconv.TimePtrFromPgtype(closedAt),
	}, nil
}

// MarkClosed is guarded on closed_at being null so a raced double close
// surfaces as not found instead of silently rewriting the timestamp.
func (r *ShiftRepository) MarkClosed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE shifts SET closed_at = now() WHERE id = $1 AND closed_at IS NULL`, id,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to mark shift closed", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("open shift not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *ShiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete shift", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("shift not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}
