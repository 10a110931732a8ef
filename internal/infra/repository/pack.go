// Package repository implements the write-side persistence ports with
// hand-written SQL over pgx. Every method accepts the transaction-bound DBTX
// it was constructed with; classification of postgres errors happens here so
// the usecase layer only sees RepositoryError kinds.
package repository

import (
	"context"

	"packtrack/internal/domain/pack"
	"packtrack/internal/domain/serial"
	"packtrack/internal/infra"
	"packtrack/internal/infra/db"
	"packtrack/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type PackRepository struct {
	db db.DBTX
}

func NewPackRepository(dbtx db.DBTX) *PackRepository {
	return &PackRepository{db: dbtx}
}

const packColumns = `id, store_id, game_id, pack_number, serial_start, serial_end, status,
	current_bin_id, received_at, activated_at, activated_by, activated_shift_id,
	depleted_at, depleted_by, depleted_shift_id, returned_at`

const createPackSQL = `
INSERT INTO packs (id, store_id, game_id, pack_number, serial_start, serial_end, status, received_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (r *PackRepository) Create(ctx context.Context, p *pack.Pack) error {
	_, err := r.db.Exec(ctx, createPackSQL,
		p.ID(), p.StoreID(), p.GameID(), p.PackNumber(),
		p.SerialStart().String(), p.SerialEnd().String(), string(p.Status()), p.ReceivedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create pack", err)
	}
	return nil
}

const updatePackSQL = `
UPDATE packs
SET status = $2, current_bin_id = $3,
	activated_at = $4, activated_by = $5, activated_shift_id = $6,
	depleted_at = $7, depleted_by = $8, depleted_shift_id = $9,
	returned_at = $10
WHERE id = $1`

func (r *PackRepository) Update(ctx context.Context, p *pack.Pack) error {
	tag, err := r.db.Exec(ctx, updatePackSQL,
		p.ID(), string(p.Status()), pgconv.UUIDPtrToPgtype(p.CurrentBin()),
		pgconv.TimePtrToPgtype(p.ActivatedAt()), pgconv.UUIDPtrToPgtype(p.ActivatedBy()), pgconv.UUIDPtrToPgtype(p.ActivatedShift()),
		pgconv.TimePtrToPgtype(p.DepletedAt()), pgconv.UUIDPtrToPgtype(p.DepletedBy()), pgconv.UUIDPtrToPgtype(p.DepletedShift()),
		pgconv.TimePtrToPgtype(p.ReturnedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update pack", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("pack not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *PackRepository) FindByID(ctx context.Context, id uuid.UUID) (*pack.Pack, error) {
	row := r.db.QueryRow(ctx, `SELECT `+packColumns+` FROM packs WHERE id = $1`, id)
	p, err := scanPack(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("pack not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find pack by id", err)
	}
	return p, nil
}

func (r *PackRepository) ExistsByStoreAndNumber(ctx context.Context, storeID uuid.UUID, packNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM packs WHERE store_id = $1 AND pack_number = $2)`,
		storeID, packNumber,
	).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check pack existence", err)
	}
	return exists, nil
}

func (r *PackRepository) FindActiveByBin(ctx context.Context, binID uuid.UUID) (*pack.Pack, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+packColumns+` FROM packs WHERE current_bin_id = $1 AND status = $2`,
		binID, string(pack.StatusActive),
	)
	p, err := scanPack(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no active pack in bin", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find active pack by bin", err)
	}
	return p, nil
}

func (r *PackRepository) ListDepletedInShift(ctx context.Context, shiftID uuid.UUID) ([]*pack.Pack, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+packColumns+` FROM packs
		 WHERE depleted_shift_id = $1 AND status = $2
		 ORDER BY pack_number`,
		shiftID, string(pack.StatusDepleted),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list depleted packs", err)
	}
	defer rows.Close()

	var packs []*pack.Pack
	for rows.Next() {
		p, scanErr := scanPack(rows)
		if scanErr != nil {
			return nil, infra.WrapRepoErr("failed to scan depleted pack", scanErr)
		}
		packs = append(packs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate depleted packs", err)
	}
	return packs, nil
}

func (r *PackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM packs WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete pack", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("pack not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func scanPack(row pgx.Row) (*pack.Pack, error) {
	var (
		id, storeID, gameID            uuid.UUID
		packNumber, start, end, status string
		currentBin                     pgtype.UUID
		receivedAt                     pgtype.Timestamptz
		activatedAt                    pgtype.Timestamptz
		activatedBy, activatedShift    pgtype.UUID
		depletedAt                     pgtype.Timestamptz
		depletedBy, depletedShift      pgtype.UUID
		returnedAt                     pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &storeID, &gameID, &packNumber, &start, &end, &status,
		&currentBin, &receivedAt, &activatedAt, &activatedBy, &activatedShift,
		&depletedAt, &depletedBy, &depletedShift, &returnedAt,
	)
	if err != nil {
		return nil, err
	}

	serialStart, err := serial.NewSerial(start)
	if err != nil {
		return nil, err
	}
	serialEnd, err := serial.NewSerial(end)
	if err != nil {
		return nil, err
	}
	st, err := pack.NewStatus(status)
	if err != nil {
		return nil, err
	}

	return pack.ReconstructPack(
		id, storeID, gameID, packNumber, serialStart, serialEnd, st,
		pgconv.UUIDPtrFromPgtype(currentBin),
		pgconv.TimeFromPgtype(receivedAt),
		pgconv.TimePtrFromPgtype(activatedAt), pgconv.UUIDPtrFromPgtype(activatedBy), pgconv.UUIDPtrFromPgtype(activatedShift),
		pgconv.TimePtrFromPgtype(depletedAt), pgconv.UUIDPtrFromPgtype(depletedBy), pgconv.UUIDPtrFromPgtype(depletedShift),
		pgconv.TimePtrFromPgtype(returnedAt),
	), nil
}
