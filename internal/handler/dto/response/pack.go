package response

import (
	"time"

	"packtrack/internal/usecase/commands"
	"packtrack/internal/usecase/queries"

	"github.com/google/uuid"
)

type PackResponse struct {
	ID           uuid.UUID  `json:"id"`
	StoreID      uuid.UUID  `json:"storeId"`
	GameID       uuid.UUID  `json:"gameId"`
	GameCode     string     `json:"gameCode"`
	GameName     string     `json:"gameName"`
	PackNumber   string     `json:"packNumber"`
	SerialStart  string     `json:"serialStart"`
	SerialEnd    string     `json:"serialEnd"`
	Status       string     `json:"status"`
	CurrentBinID *uuid.UUID `json:"currentBinId,omitempty"`
	CurrentBin   *string    `json:"currentBin,omitempty"`
	TicketsTotal int        `json:"ticketsTotal"`
	TicketsSold  int        `json:"ticketsSold"`
	ReceivedAt   time.Time  `json:"receivedAt"`
	ActivatedAt  *time.Time `json:"activatedAt,omitempty"`
	DepletedAt   *time.Time `json:"depletedAt,omitempty"`
	ReturnedAt   *time.Time `json:"returnedAt,omitempty"`
}

func FromPackView(pv *queries.PackView) *PackResponse {
	return &PackResponse{
		ID:           pv.ID,
		StoreID:      pv.StoreID,
		GameID:       pv.GameID,
		GameCode:     pv.GameCode,
		GameName:     pv.GameName,
		PackNumber:   pv.PackNumber,
		SerialStart:  pv.SerialStart,
		SerialEnd:    pv.SerialEnd,
		Status:       pv.Status,
		CurrentBinID: pv.CurrentBinID,
		CurrentBin:   pv.CurrentBin,
		TicketsTotal: pv.TicketsTotal,
		TicketsSold:  pv.TicketsSold,
		ReceivedAt:   pv.ReceivedAt,
		ActivatedAt:  pv.ActivatedAt,
		DepletedAt:   pv.DepletedAt,
		ReturnedAt:   pv.ReturnedAt,
	}
}

type PackListItemResponse struct {
	ID         uuid.UUID `json:"id"`
	GameCode   string    `json:"gameCode"`
	PackNumber string    `json:"packNumber"`
	Status     string    `json:"status"`
	CurrentBin *string   `json:"currentBin,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type PackPageResponse struct {
	Items      []PackListItemResponse `json:"items"`
	NextCursor *string                `json:"nextCursor,omitempty"`
}

func FromPackListItems(items []*queries.PackListItem, next *queries.Cursor) *PackPageResponse {
	resp := &PackPageResponse{Items: make([]PackListItemResponse, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, PackListItemResponse{
			ID:         it.ID,
			GameCode:   it.GameCode,
			PackNumber: it.PackNumber,
			Status:     it.Status,
			CurrentBin: it.CurrentBin,
			ReceivedAt: it.ReceivedAt,
		})
	}
	if next != nil {
		resp.NextCursor = &next.After
	}
	return resp
}

type BinBoardSlotResponse struct {
	BinID        uuid.UUID  `json:"binId"`
	Label        string     `json:"label"`
	DisplayOrder int        `json:"displayOrder"`
	IsActive     bool       `json:"isActive"`
	PackID       *uuid.UUID `json:"packId,omitempty"`
	PackNumber   *string    `json:"packNumber,omitempty"`
	GameName     *string    `json:"gameName,omitempty"`
}

func FromBinBoard(slots []*queries.BinBoardSlot) []BinBoardSlotResponse {
	resp := make([]BinBoardSlotResponse, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, BinBoardSlotResponse{
			BinID:        s.BinID,
			Label:        s.Label,
			DisplayOrder: s.DisplayOrder,
			IsActive:     s.IsActive,
			PackID:       s.PackID,
			PackNumber:   s.PackNumber,
			GameName:     s.GameName,
		})
	}
	return resp
}

type MovementResponse struct {
	ID      uuid.UUID `json:"id"`
	PackID  uuid.UUID `json:"packId"`
	BinID   uuid.UUID `json:"binId"`
	Label   string    `json:"binLabel"`
	MovedBy uuid.UUID `json:"movedBy"`
	Reason  *string   `json:"reason,omitempty"`
	MovedAt time.Time `json:"movedAt"`
}

func FromMovements(views []*queries.MovementView) []MovementResponse {
	resp := make([]MovementResponse, 0, len(views))
	for _, m := range views {
		resp = append(resp, MovementResponse{
			ID:      m.ID,
			PackID:  m.PackID,
			BinID:   m.BinID,
			Label:   m.Label,
			MovedBy: m.MovedBy,
			Reason:  m.Reason,
			MovedAt: m.MovedAt,
		})
	}
	return resp
}

type MoveResponse struct {
	PackID    uuid.UUID `json:"packId"`
	BinID     uuid.UUID `json:"binId"`
	HistoryID uuid.UUID `json:"historyId"`
}

func FromMoveResult(r *commands.MoveResult) *MoveResponse {
	return &MoveResponse{PackID: r.PackID, BinID: r.BinID, HistoryID: r.HistoryID}
}

type SetupBinsResponse struct {
	BinIDs []uuid.UUID `json:"binIds"`
}
