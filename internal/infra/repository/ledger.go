package repository

import (
	"context"

	"packtrack/internal/domain/serial"
	"packtrack/internal/domain/shift"
	"packtrack/internal/infra"
	"packtrack/internal/infra/db"
	"packtrack/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ShiftLedgerRepository persists the per-shift opening and closing rows.
// Unique (shift_id, pack_id) constraints on both tables back the
// record-once semantics; violations come back as KindDuplicateKey.
type ShiftLedgerRepository struct {
	db db.DBTX
}

func NewShiftLedgerRepository(dbtx db.DBTX) *ShiftLedgerRepository {
	return &ShiftLedgerRepository{db: dbtx}
}

const createOpeningSQL = `
INSERT INTO shift_openings (id, shift_id, pack_id, opening_serial, created_at)
VALUES ($1, $2, $3, $4, $5)`

func (r *ShiftLedgerRepository) CreateOpening(ctx context.Context, o *shift.Opening) error {
	_, err := r.db.Exec(ctx, createOpeningSQL,
		o.ID(), o.ShiftID(), o.PackID(), o.OpeningSerial().String(), o.CreatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create shift opening", err)
	}
	return nil
}

func (r *ShiftLedgerRepository) FindOpening(ctx context.Context, shiftID, packID uuid.UUID) (*shift.Opening, error) {
	var (
		id            uuid.UUID
		openingSerial string
		createdAt     pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, opening_serial, created_at FROM shift_openings WHERE shift_id = $1 AND pack_id = $2`,
		shiftID, packID,
	).Scan(&id, &openingSerial, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("shift opening not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find shift opening", err)
	}

	s, err := serial.NewSerial(openingSerial)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt opening serial", err)
	}
	return shift.ReconstructOpening(id, shiftID, packID, s, pgconv.TimeFromPgtype(createdAt)), nil
}

const closingColumns = `id, shift_id, pack_id, closing_serial, entry_method,
	manual_authorized_by, manual_authorized_at, tickets_sold, is_system, created_at`

func (r *ShiftLedgerRepository) FindLatestClosing(ctx context.Context, packID uuid.UUID) (*shift.Closing, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+closingColumns+` FROM shift_closings
		 WHERE pack_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		packID,
	)
	c, err := scanClosing(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no closing for pack", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find latest closing", err)
	}
	return c, nil
}

const createClosingSQL = `
INSERT INTO shift_closings (id, shift_id, pack_id, closing_serial, entry_method,
	manual_authorized_by, manual_authorized_at, tickets_sold, is_system, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (r *ShiftLedgerRepository) CreateClosing(ctx context.Context, c *shift.Closing) error {
	var authBy pgtype.UUID
	var authAt pgtype.Timestamptz
	if auth := c.ManualAuth(); auth != nil {
		authBy = pgconv.UUIDToPgtype(auth.AuthorizedBy)
		authAt = pgconv.TimeToPgtype(auth.AuthorizedAt)
	}

	_, err := r.db.Exec(ctx, createClosingSQL,
		c.ID(), c.ShiftID(), c.PackID(), c.ClosingSerial().String(), string(c.EntryMethod()),
		authBy, authAt, c.TicketsSold(), c.IsSystem(), c.CreatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create shift closing", err)
	}
	return nil
}

func (r *ShiftLedgerRepository) ClosingExists(ctx context.Context, shiftID, packID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shift_closings WHERE shift_id = $1 AND pack_id = $2)`,
		shiftID, packID,
	).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check closing existence", err)
	}
	return exists, nil
}

func (r *ShiftLedgerRepository) DeleteByPack(ctx context.Context, packID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM shift_openings WHERE pack_id = $1`, packID); err != nil {
		return infra.WrapRepoErr("failed to delete openings by pack", err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM shift_closings WHERE pack_id = $1`, packID); err != nil {
		return infra.WrapRepoErr("failed to delete closings by pack", err)
	}
	return nil
}

func (r *ShiftLedgerRepository) DeleteByShift(ctx context.Context, shiftID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM shift_openings WHERE shift_id = $1`, shiftID); err != nil {
		return infra.WrapRepoErr("failed to delete openings by shift", err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM shift_closings WHERE shift_id = $1`, shiftID); err != nil {
		return infra.WrapRepoErr("failed to delete closings by shift", err)
	}
	return nil
}

type closingRow interface {
	Scan(dest ...any) error
}

func scanClosing(row closingRow) (*shift.Closing, error) {
	var (
		id, shiftID, packID uuid.UUID
		closingSerial       string
		entryMethod         string
		authBy              pgtype.UUID
		authAt              pgtype.Timestamptz
		ticketsSold         int
		isSystem            bool
		createdAt           pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &shiftID, &packID, &closingSerial, &entryMethod,
		&authBy, &authAt, &ticketsSold, &isSystem, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	s, err := serial.NewSerial(closingSerial)
	if err != nil {
		return nil, err
	}
	method, err := shift.NewEntryMethod(entryMethod)
	if err != nil {
		return nil, err
	}

	var auth *shift.ManualAuthorization
	if by := pgconv.UUIDPtrFromPgtype(authBy); by != nil {
		auth = &shift.ManualAuthorization{AuthorizedBy: *by}
		if at := pgconv.TimePtrFromPgtype(authAt); at != nil {
			auth.AuthorizedAt = *at
		}
	}

	return shift.ReconstructClosing(
		id, shiftID, packID, s, method, auth, ticketsSold, isSystem,
		pgconv.TimeFromPgtype(createdAt),
	), nil
}
