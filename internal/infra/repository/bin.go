package repository

import (
	"context"

	dombin "packtrack/internal/domain/bin"
	"packtrack/internal/infra"
	"packtrack/internal/infra/db"
	"packtrack/internal/pkg/pgconv"
	"packtrack/internal/usecase/shared"

	"github.com/google/uuid"
)

type BinRepository struct {
	db db.DBTX
}

func NewBinRepository(dbtx db.DBTX) *BinRepository {
	return &BinRepository{db: dbtx}
}

const createBinSQL = `
INSERT INTO bins (id, store_id, label, display_order, is_active)
VALUES ($1, $2, $3, $4, $5)`

func (r *BinRepository) Create(ctx context.Context, b *dombin.Bin) error {
	_, err := r.db.Exec(ctx, createBinSQL,
		b.ID(), b.StoreID(), b.Label(), b.DisplayOrder(), b.IsActive(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create bin", err)
	}
	return nil
}

func (r *BinRepository) FindByID(ctx context.Context, id uuid.UUID) (*dombin.Bin, error) {
	var (
		binID, storeID uuid.UUID
		label          string
		displayOrder   int
		isActive       bool
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, store_id, label, display_order, is_active FROM bins WHERE id = $1`, id,
	).Scan(&binID, &storeID, &label, &displayOrder, &isActive)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("bin not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find bin by id", err)
	}
	return dombin.ReconstructBin(binID, storeID, label, displayOrder, isActive), nil
}

// BinHistoryRepository appends to the pack movement trail. Rows are immutable
// once written; the only delete path is a full pack cascade.
type BinHistoryRepository struct {
	db db.DBTX
}

func NewBinHistoryRepository(dbtx db.DBTX) *BinHistoryRepository {
	return &BinHistoryRepository{db: dbtx}
}

const appendMovementSQL = `
INSERT INTO pack_bin_history (id, pack_id, bin_id, moved_by, reason, moved_at)
VALUES ($1, $2, $3, $4, $5, now())`

func (r *BinHistoryRepository) Append(ctx context.Context, rec *shared.BinMovement) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx, appendMovementSQL,
		id, rec.PackID, rec.BinID, rec.MovedBy, pgconv.StringPtrToPgtype(rec.Reason),
	)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to append bin history", err)
	}
	return id, nil
}

func (r *BinHistoryRepository) DeleteByPack(ctx context.Context, packID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM pack_bin_history WHERE pack_id = $1`, packID); err != nil {
		return infra.WrapRepoErr("failed to delete bin history by pack", err)
	}
	return nil
}
