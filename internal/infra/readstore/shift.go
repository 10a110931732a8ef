package readstore

import (
	"context"

	"packtrack/internal/infra"
	"packtrack/internal/infra/db"
	"packtrack/internal/pkg/pgconv"
	"packtrack/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ShiftReadStore struct {
	db db.DBTX
}

func NewShiftReadStore(dbtx db.DBTX) *ShiftReadStore {
	return &ShiftReadStore{db: dbtx}
}

const reportLinesSQL = `
SELECT c.pack_id, p.pack_number, g.code, g.name, b.label,
	o.opening_serial, c.closing_serial, c.entry_method, c.is_system,
	c.tickets_sold, c.tickets_sold * g.price_cents AS sales_cents,
	v.id AS variance_id
FROM shift_closings c
JOIN packs p ON p.id = c.pack_id
JOIN games g ON g.id = p.game_id
LEFT JOIN bins b ON b.id = p.current_bin_id
LEFT JOIN shift_openings o ON o.shift_id = c.shift_id AND o.pack_id = c.pack_id
LEFT JOIN variances v ON v.shift_id = c.shift_id AND v.pack_id = c.pack_id
WHERE c.shift_id = $1
ORDER BY p.pack_number`

// GetReport assembles the shift's reconciliation lines plus totals. Open
// shifts report too; their lines are whatever closings exist so far.
func (r *ShiftReadStore) GetReport(ctx context.Context, shiftID uuid.UUID) (*queries.ShiftReport, error) {
	report := &queries.ShiftReport{ShiftID: shiftID, Lines: []queries.ShiftReportLine{}}

	var openedAt, closedAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx,
		`SELECT store_id, opened_at, closed_at FROM shifts WHERE id = $1`, shiftID,
	).Scan(&report.StoreID, &openedAt, &closedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("shift not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get shift for report", err)
	}
	report.OpenedAt = pgconv.TimeFromPgtype(openedAt)
	report.ClosedAt = pgconv.TimePtrFromPgtype(closedAt)

	rows, err := r.db.Query(ctx, reportLinesSQL, shiftID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get shift report lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line          queries.ShiftReportLine
			binLabel      pgtype.Text
			openingSerial pgtype.Text
			varianceID    pgtype.UUID
		)
		if err := rows.Scan(
			&line.PackID, &line.PackNumber, &line.GameCode, &line.GameName, &binLabel,
			&openingSerial, &line.ClosingSerial, &line.EntryMethod, &line.IsSystem,
			&line.TicketsSold, &line.SalesCents, &varianceID,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan shift report line", err)
		}
		line.BinLabel = pgconv.StringPtrFromPgtype(binLabel)
		line.OpeningSerial = pgconv.StringPtrFromPgtype(openingSerial)
		line.VarianceID = pgconv.UUIDPtrFromPgtype(varianceID)

		report.Lines = append(report.Lines, line)
		report.TotalTickets += line.TicketsSold
		report.TotalCents += line.SalesCents
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate shift report lines", err)
	}

	err = r.db.QueryRow(ctx,
		`SELECT count(*) FROM variances WHERE shift_id = $1 AND approved_by IS NULL`, shiftID,
	).Scan(&report.OpenVariances)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count open variances", err)
	}

	return report, nil
}

const varianceViewColumns = `v.id, v.shift_id, v.pack_id, p.pack_number,
	v.expected, v.actual, v.difference, v.reason, v.approved_by, v.approved_at, v.created_at`

func (r *ShiftReadStore) FindVarianceByID(ctx context.Context, id uuid.UUID) (*queries.VarianceView, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+varianceViewColumns+` FROM variances v JOIN packs p ON p.id = v.pack_id WHERE v.id = $1`, id,
	)
	v, err := scanVarianceView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("variance not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get variance view", err)
	}
	return v, nil
}

const variancesByShiftSQL = `
SELECT ` + varianceViewColumns + `
FROM variances v
JOIN packs p ON p.id = v.pack_id
WHERE v.shift_id = $1 AND ($2::bool = false OR v.approved_by IS NULL)
ORDER BY v.created_at DESC, v.id DESC`

func (r *ShiftReadStore) FindVariancesByShift(ctx context.Context, shiftID uuid.UUID, onlyOpen bool) ([]*queries.VarianceView, error) {
	rows, err := r.db.Query(ctx, variancesByShiftSQL, shiftID, onlyOpen)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list variances by shift", err)
	}
	defer rows.Close()

	var views []*queries.VarianceView
	for rows.Next() {
		v, scanErr := scanVarianceView(rows)
		if scanErr != nil {
			return nil, infra.WrapRepoErr("failed to scan variance view", scanErr)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate variances", err)
	}
	return views, nil
}

func scanVarianceView(row pgx.Row) (*queries.VarianceView, error) {
	var (
		v          queries.VarianceView
		reason     pgtype.Text
		approvedBy pgtype.UUID
		approvedAt pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
	)
	err := row.Scan(
		&v.ID, &v.ShiftID, &v.PackID, &v.PackNumber,
		&v.Expected, &v.Actual, &v.Difference, &reason, &approvedBy, &approvedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	v.Reason = pgconv.StringPtrFromPgtype(reason)
	v.ApprovedBy = pgconv.UUIDPtrFromPgtype(approvedBy)
	v.ApprovedAt = pgconv.TimePtrFromPgtype(approvedAt)
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	return &v, nil
}
