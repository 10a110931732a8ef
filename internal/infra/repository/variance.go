package repository

import (
	"context"

	"packtrack/internal/domain/shift"
	"packtrack/internal/infra"
	"packtrack/internal/infra/db"
	"packtrack/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type VarianceRepository struct {
	db db.DBTX
}

func NewVarianceRepository(dbtx db.DBTX) *VarianceRepository {
	return &VarianceRepository{db: dbtx}
}

const createVarianceSQL = `
INSERT INTO variances (id, shift_id, pack_id, expected, actual, difference, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (r *VarianceRepository) Create(ctx context.Context, v *shift.Variance) error {
	_, err := r.db.Exec(ctx, createVarianceSQL,
		v.ID(), v.ShiftID(), v.PackID(), v.Expected(), v.Actual(), v.Difference(),
		pgconv.StringPtrToPgtype(v.Reason()), v.CreatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create variance", err)
	}
	return nil
}

func (r *VarianceRepository) FindByID(ctx context.Context, id uuid.UUID) (*shift.Variance, error) {
	var (
		shiftID, packID              uuid.UUID
		expected, actual, difference int
		reason                       pgtype.Text
		approvedBy                   pgtype.UUID
		approvedAt                   pgtype.Timestamptz
		createdAt                    pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx,
		`SELECT shift_id, pack_id, expected, actual, difference, reason, approved_by, approved_at, created_at
		 FROM variances WHERE id = $1`, id,
	).Scan(&shiftID, &packID, &expected, &actual, &difference, &reason, &approvedBy, &approvedAt, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("variance not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find variance by id", err)
	}

	return shift.ReconstructVariance(
		id, shiftID, packID, expected, actual, difference,
		pgconv.StringPtrFromPgtype(reason),
		pgconv.UUIDPtrFromPgtype(approvedBy), pgconv.TimePtrFromPgtype(approvedAt),
		pgconv.TimeFromPgtype(createdAt),
	), nil
}

func (r *VarianceRepository) Update(ctx context.Context, v *shift.Variance) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE variances SET reason = $2, approved_by = $3, approved_at = $4 WHERE id = $1`,
		v.ID(), pgconv.StringPtrToPgtype(v.Reason()),
		pgconv.UUIDPtrToPgtype(v.ApprovedBy()), pgconv.TimePtrToPgtype(v.ApprovedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update variance", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("variance not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *VarianceRepository) DeleteByPack(ctx context.Context, packID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM variances WHERE pack_id = $1`, packID); err != nil {
		return infra.WrapRepoErr("failed to delete variances by pack", err)
	}
	return nil
}

func (r *VarianceRepository) DeleteByShift(ctx context.Context, shiftID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM variances WHERE shift_id = $1`, shiftID); err != nil {
		return infra.WrapRepoErr("failed to delete variances by shift", err)
	}
	return nil
}
