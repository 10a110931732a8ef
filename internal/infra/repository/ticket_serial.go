package repository

import (
	"context"
	"strconv"

	"packtrack/internal/infra"
	"packtrack/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TicketSerialRepository tracks individual tickets of an activated pack.
// The position column is the 3-digit tail of the serial number, stored as an
// integer so range predicates stay sargable.
type TicketSerialRepository struct {
	db db.DBTX
}

func NewTicketSerialRepository(dbtx db.DBTX) *TicketSerialRepository {
	return &TicketSerialRepository{db: dbtx}
}

// BulkCreate inserts one row per ticket via COPY. A 150-ticket pack is 150
// rows; batched INSERTs would round-trip per statement.
func (r *TicketSerialRepository) BulkCreate(ctx context.Context, packID uuid.UUID, serialNumbers []string) error {
	rows := make([][]any, 0, len(serialNumbers))
	for _, number := range serialNumbers {
		position, err := positionOf(number)
		if err != nil {
			return infra.WrapRepoErr("malformed ticket serial number", err)
		}
		rows = append(rows, []any{uuid.New(), packID, number, position})
	}

	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"ticket_serials"},
		[]string{"id", "pack_id", "serial_number", "position"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to bulk create ticket serials", err)
	}
	return nil
}

const markSoldRangeSQL = `
UPDATE ticket_serials
SET sold_at = now(), shift_id = $4, cashier_id = $5
WHERE pack_id = $1 AND position BETWEEN $2 AND $3 AND sold_at IS NULL`

func (r *TicketSerialRepository) MarkSoldRange(ctx context.Context, packID uuid.UUID, from, to string, shiftID, cashierID uuid.UUID) (int, error) {
	fromPos, err := strconv.Atoi(from)
	if err != nil {
		return 0, infra.WrapRepoErr("malformed range start", err)
	}
	toPos, err := strconv.Atoi(to)
	if err != nil {
		return 0, infra.WrapRepoErr("malformed range end", err)
	}

	tag, err := r.db.Exec(ctx, markSoldRangeSQL, packID, fromPos, toPos, shiftID, cashierID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark ticket serials sold", err)
	}
	return int(tag.RowsAffected()), nil
}

const countRangeSQL = `
SELECT count(*), count(sold_at)
FROM ticket_serials
WHERE pack_id = $1 AND position BETWEEN $2 AND $3`

func (r *TicketSerialRepository) CountRange(ctx context.Context, packID uuid.UUID, from, to string) (int, int, error) {
	fromPos, err := strconv.Atoi(from)
	if err != nil {
		return 0, 0, infra.WrapRepoErr("malformed range start", err)
	}
	toPos, err := strconv.Atoi(to)
	if err != nil {
		return 0, 0, infra.WrapRepoErr("malformed range end", err)
	}

	var total, sold int
	if err := r.db.QueryRow(ctx, countRangeSQL, packID, fromPos, toPos).Scan(&total, &sold); err != nil {
		return 0, 0, infra.WrapRepoErr("failed to count ticket serials", err)
	}
	return total, sold, nil
}

func (r *TicketSerialRepository) ClearShiftReferences(ctx context.Context, shiftID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `UPDATE ticket_serials SET shift_id = NULL WHERE shift_id = $1`, shiftID); err != nil {
		return infra.WrapRepoErr("failed to clear ticket serial shift references", err)
	}
	return nil
}

func (r *TicketSerialRepository) DeleteByPack(ctx context.Context, packID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM ticket_serials WHERE pack_id = $1`, packID); err != nil {
		return infra.WrapRepoErr("failed to delete ticket serials by pack", err)
	}
	return nil
}

func positionOf(serialNumber string) (int, error) {
	if len(serialNumber) < 3 {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(serialNumber[len(serialNumber)-3:])
}
