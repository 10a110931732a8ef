package queries

import (
	"context"
	"time"

	"packtrack/internal/infra"
	"packtrack/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrPackNotFound  = errs.New("pack not found")
	ErrInvalidCursor = errs.New("invalid pagination cursor")
)

type PackView struct {
	ID           uuid.UUID  `json:"id"`
	StoreID      uuid.UUID  `json:"store_id"`
	GameID       uuid.UUID  `json:"game_id"`
	GameCode     string     `json:"game_code"`
	GameName     string     `json:"game_name"`
	PackNumber   string     `json:"pack_number"`
	SerialStart  string     `json:"serial_start"`
	SerialEnd    string     `json:"serial_end"`
	Status       string     `json:"status"`
	CurrentBinID *uuid.UUID `json:"current_bin_id,omitempty"`
	CurrentBin   *string    `json:"current_bin,omitempty"`
	TicketsTotal int        `json:"tickets_total"`
	TicketsSold  int        `json:"tickets_sold"`
	ReceivedAt   time.Time  `json:"received_at"`
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
	DepletedAt   *time.Time `json:"depleted_at,omitempty"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
}

type PackListItem struct {
	ID         uuid.UUID `json:"id"`
	GameCode   string    `json:"game_code"`
	PackNumber string    `json:"pack_number"`
	Status     string    `json:"status"`
	CurrentBin *string   `json:"current_bin,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// BinBoardSlot is one row of the store's bin board: the bin plus whatever
// active pack currently sits in it, if any.
type BinBoardSlot struct {
	BinID        uuid.UUID  `json:"bin_id"`
	Label        string     `json:"label"`
	DisplayOrder int        `json:"display_order"`
	IsActive     bool       `json:"is_active"`
	PackID       *uuid.UUID `json:"pack_id,omitempty"`
	PackNumber   *string    `json:"pack_number,omitempty"`
	GameName     *string    `json:"game_name,omitempty"`
}

type MovementView struct {
	ID      uuid.UUID `json:"id"`
	PackID  uuid.UUID `json:"pack_id"`
	BinID   uuid.UUID `json:"bin_id"`
	Label   string    `json:"bin_label"`
	MovedBy uuid.UUID `json:"moved_by"`
	Reason  *string   `json:"reason,omitempty"`
	MovedAt time.Time `json:"moved_at"`
}

type PackFilters struct {
	Status   *string
	GameCode *string
}

type PackReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PackView, error)
	FindByStoreFirstPage(ctx context.Context, storeID uuid.UUID, limit int32, status, gameCode *string) ([]*PackListItem, error)
	FindByStoreKeyset(ctx context.Context, storeID uuid.UUID, lastReceivedAt time.Time, lastID uuid.UUID, limit int32, status, gameCode *string) ([]*PackListItem, error)
	GetBinBoard(ctx context.Context, storeID uuid.UUID) ([]*BinBoardSlot, error)
	FindMovements(ctx context.Context, packID uuid.UUID, limit int32) ([]*MovementView, error)
}

type PackQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*PackView, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, filters PackFilters, cursor *Cursor, limit int) ([]*PackListItem, *Cursor, error)
	// GetBinBoard returns every bin of the store in display order with its
	// current occupant.
	GetBinBoard(ctx context.Context, storeID uuid.UUID) ([]*BinBoardSlot, error)
	GetMovementHistory(ctx context.Context, packID uuid.UUID, limit int) ([]*MovementView, error)
}

type packQueriesImpl struct {
	repo PackReadStore
}

func NewPackQueries(repo PackReadStore) PackQueries {
	return &packQueriesImpl{repo: repo}
}

func (q *packQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*PackView, error) {
	pv, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPackNotFound
		}
		return nil, err
	}
	return pv, nil
}

func (q *packQueriesImpl) ListByStore(ctx context.Context, storeID uuid.UUID, filters PackFilters, cursor *Cursor, limit int) ([]*PackListItem, *Cursor, error) {
	limit = ValidateLimit(limit)
	var rows []*PackListItem
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = q.repo.FindByStoreFirstPage(ctx, storeID, int32(limit+1), filters.Status, filters.GameCode)
	} else {
		lastReceivedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.repo.FindByStoreKeyset(ctx, storeID, lastReceivedAt, lastID, int32(limit+1), filters.Status, filters.GameCode)
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.ReceivedAt, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (q *packQueriesImpl) GetBinBoard(ctx context.Context, storeID uuid.UUID) ([]*BinBoardSlot, error) {
	return q.repo.GetBinBoard(ctx, storeID)
}

func (q *packQueriesImpl) GetMovementHistory(ctx context.Context, packID uuid.UUID, limit int) ([]*MovementView, error) {
	return q.repo.FindMovements(ctx, packID, int32(ValidateLimit(limit)))
}
