// Package readstore serves the query side with denormalized views assembled
// in SQL. It never loads domain entities; rows map straight onto view
// structs.
package readstore

import (
	"context"
	"time"

	"packtrack/internal/infra"
	"packtrack/internal/infra/db"
	"packtrack/internal/pkg/pgconv"
	"packtrack/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type PackReadStore struct {
	db db.DBTX
}

func NewPackReadStore(dbtx db.DBTX) *PackReadStore {
	return &PackReadStore{db: dbtx}
}

const packViewSQL = `
SELECT p.id, p.store_id, p.game_id, g.code, g.name,
	p.pack_number, p.serial_start, p.serial_end, p.status,
	p.current_bin_id, b.label,
	(p.serial_end::int - p.serial_start::int + 1) AS tickets_total,
	(SELECT count(*) FROM ticket_serials ts WHERE ts.pack_id = p.id AND ts.sold_at IS NOT NULL) AS tickets_sold,
	p.received_at, p.activated_at, p.depleted_at, p.returned_at
FROM packs p
JOIN games g ON g.id = p.game_id
LEFT JOIN bins b ON b.id = p.current_bin_id
WHERE p.id = $1`

func (r *PackReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.PackView, error) {
	var (
		v            queries.PackView
		currentBinID pgtype.UUID
		binLabel     pgtype.Text
		ticketsTotal int
		ticketsSold  int64
		receivedAt   pgtype.Timestamptz
		activatedAt  pgtype.Timestamptz
		depletedAt   pgtype.Timestamptz
		returnedAt   pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, packViewSQL, id).Scan(
		&v.ID, &v.StoreID, &v.GameID, &v.GameCode, &v.GameName,
		&v.PackNumber, &v.SerialStart, &v.SerialEnd, &v.Status,
		&currentBinID, &binLabel,
		&ticketsTotal, &ticketsSold,
		&receivedAt, &activatedAt, &depletedAt, &returnedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("pack not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get pack view by id", err)
	}

	v.CurrentBinID = pgconv.UUIDPtrFromPgtype(currentBinID)
	v.CurrentBin = pgconv.StringPtrFromPgtype(binLabel)
	v.TicketsTotal = ticketsTotal
	v.TicketsSold = int(ticketsSold)
	v.ReceivedAt = pgconv.TimeFromPgtype(receivedAt)
	v.ActivatedAt = pgconv.TimePtrFromPgtype(activatedAt)
	v.DepletedAt = pgconv.TimePtrFromPgtype(depletedAt)
	v.ReturnedAt = pgconv.TimePtrFromPgtype(returnedAt)
	return &v, nil
}

const packListFirstPageSQL = `
SELECT p.id, g.code, p.pack_number, p.status, b.label, p.received_at
FROM packs p
JOIN games g ON g.id = p.game_id
LEFT JOIN bins b ON b.id = p.current_bin_id
WHERE p.store_id = $1
	AND ($3::text IS NULL OR p.status = $3)
	AND ($4::text IS NULL OR g.code = $4)
ORDER BY p.received_at DESC, p.id DESC
LIMIT $2`

func (r *PackReadStore) FindByStoreFirstPage(ctx context.Context, storeID uuid.UUID, limit int32, status, gameCode *string) ([]*queries.PackListItem, error) {
	rows, err := r.db.Query(ctx, packListFirstPageSQL,
		storeID, limit, pgconv.StringPtrToPgtype(status), pgconv.StringPtrToPgtype(gameCode),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get packs first page", err)
	}
	return scanPackListItems(rows)
}

const packListKeysetSQL = `
SELECT p.id, g.code, p.pack_number, p.status, b.label, p.received_at
FROM packs p
JOIN games g ON g.id = p.game_id
LEFT JOIN bins b ON b.id = p.current_bin_id
WHERE p.store_id = $1
	AND (p.received_at, p.id) < ($2, $3)
	AND ($5::text IS NULL OR p.status = $5)
	AND ($6::text IS NULL OR g.code = $6)
ORDER BY p.received_at DESC, p.id DESC
LIMIT $4`

func (r *PackReadStore) FindByStoreKeyset(ctx context.Context, storeID uuid.UUID, lastReceivedAt time.Time, lastID uuid.UUID, limit int32, status, gameCode *string) ([]*queries.PackListItem, error) {
	rows, err := r.db.Query(ctx, packListKeysetSQL,
		storeID, pgconv.TimeToPgtype(lastReceivedAt), lastID, limit,
		pgconv.StringPtrToPgtype(status), pgconv.StringPtrToPgtype(gameCode),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get packs keyset page", err)
	}
	return scanPackListItems(rows)
}

func scanPackListItems(rows pgx.Rows) ([]*queries.PackListItem, error) {
	defer rows.Close()

	var items []*queries.PackListItem
	for rows.Next() {
		var (
			item       queries.PackListItem
			binLabel   pgtype.Text
			receivedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&item.ID, &item.GameCode, &item.PackNumber, &item.Status, &binLabel, &receivedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan pack list item", err)
		}
		item.CurrentBin = pgconv.StringPtrFromPgtype(binLabel)
		item.ReceivedAt = pgconv.TimeFromPgtype(receivedAt)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate pack list items", err)
	}
	return items, nil
}

const binBoardSQL = `
SELECT b.id, b.label, b.display_order, b.is_active, p.id, p.pack_number, g.name
FROM bins b
LEFT JOIN packs p ON p.current_bin_id = b.id AND p.status = 'ACTIVE'
LEFT JOIN games g ON g.id = p.game_id
WHERE b.store_id = $1
ORDER BY b.display_order`

func (r *PackReadStore) GetBinBoard(ctx context.Context, storeID uuid.UUID) ([]*queries.BinBoardSlot, error) {
	rows, err := r.db.Query(ctx, binBoardSQL, storeID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get bin board", err)
	}
	defer rows.Close()

	var slots []*queries.BinBoardSlot
	for rows.Next() {
		var (
			slot       queries.BinBoardSlot
			packID     pgtype.UUID
			packNumber pgtype.Text
			gameName   pgtype.Text
		)
		if err := rows.Scan(&slot.BinID, &slot.Label, &slot.DisplayOrder, &slot.IsActive, &packID, &packNumber, &gameName); err != nil {
			return nil, infra.WrapRepoErr("failed to scan bin board slot", err)
		}
		slot.PackID = pgconv.UUIDPtrFromPgtype(packID)
		slot.PackNumber = pgconv.StringPtrFromPgtype(packNumber)
		slot.GameName = pgconv.StringPtrFromPgtype(gameName)
		slots = append(slots, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate bin board", err)
	}
	return slots, nil
}

const movementsSQL = `
SELECT h.id, h.pack_id, h.bin_id, b.label, h.moved_by, h.reason, h.moved_at
FROM pack_bin_history h
JOIN bins b ON b.id = h.bin_id
WHERE h.pack_id = $1
ORDER BY h.moved_at DESC, h.id DESC
LIMIT $2`

func (r *PackReadStore) FindMovements(ctx context.Context, packID uuid.UUID, limit int32) ([]*queries.MovementView, error) {
	rows, err := r.db.Query(ctx, movementsSQL, packID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get pack movements", err)
	}
	defer rows.Close()

	var movements []*queries.MovementView
	for rows.Next() {
		var (
			m       queries.MovementView
			reason  pgtype.Text
			movedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&m.ID, &m.PackID, &m.BinID, &m.Label, &m.MovedBy, &reason, &movedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan movement", err)
		}
		m.Reason = pgconv.StringPtrFromPgtype(reason)
		m.MovedAt = pgconv.TimeFromPgtype(movedAt)
		movements = append(movements, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate movements", err)
	}
	return movements, nil
}
