package response

import (
	"time"

	"packtrack/internal/usecase/commands"
	"packtrack/internal/usecase/queries"

	"github.com/google/uuid"
)

type ShiftReportLineResponse struct {
	PackID        uuid.UUID  `json:"packId"`
	PackNumber    string     `json:"packNumber"`
	GameCode      string     `json:"gameCode"`
	GameName      string     `json:"gameName"`
	BinLabel      *string    `json:"binLabel,omitempty"`
	OpeningSerial *string    `json:"openingSerial,omitempty"`
	ClosingSerial string     `json:"closingSerial"`
	EntryMethod   string     `json:"entryMethod"`
	IsSystem      bool       `json:"isSystem"`
	TicketsSold   int        `json:"ticketsSold"`
	SalesCents    int64      `json:"salesCents"`
	VarianceID    *uuid.UUID `json:"varianceId,omitempty"`
}

type ShiftReportResponse struct {
	ShiftID       uuid.UUID                 `json:"shiftId"`
	StoreID       uuid.UUID                 `json:"storeId"`
	OpenedAt      time.Time                 `json:"openedAt"`
	ClosedAt      *time.Time                `json:"closedAt,omitempty"`
	Lines         []ShiftReportLineResponse `json:"lines"`
	TotalTickets  int                       `json:"totalTickets"`
	TotalCents    int64                     `json:"totalCents"`
	OpenVariances int                       `json:"openVariances"`
}

func FromShiftReport(r *queries.ShiftReport) *ShiftReportResponse {
	resp := &ShiftReportResponse{
		ShiftID:       r.ShiftID,
		StoreID:       r.StoreID,
		OpenedAt:      r.OpenedAt,
		ClosedAt:      r.ClosedAt,
		Lines:         make([]ShiftReportLineResponse, 0, len(r.Lines)),
		TotalTickets:  r.TotalTickets,
		TotalCents:    r.TotalCents,
		OpenVariances: r.OpenVariances,
	}
	for _, l := range r.Lines {
		resp.Lines = append(resp.Lines, ShiftReportLineResponse{
			PackID:        l.PackID,
			PackNumber:    l.PackNumber,
			GameCode:      l.GameCode,
			GameName:      l.GameName,
			BinLabel:      l.BinLabel,
			OpeningSerial: l.OpeningSerial,
			ClosingSerial: l.ClosingSerial,
			EntryMethod:   l.EntryMethod,
			IsSystem:      l.IsSystem,
			TicketsSold:   l.TicketsSold,
			SalesCents:    l.SalesCents,
			VarianceID:    l.VarianceID,
		})
	}
	return resp
}

type VarianceResponse struct {
	ID         uuid.UUID  `json:"id"`
	ShiftID    uuid.UUID  `json:"shiftId"`
	PackID     uuid.UUID  `json:"packId"`
	PackNumber string     `json:"packNumber"`
	Expected   int        `json:"expected"`
	Actual     int        `json:"actual"`
	Difference int        `json:"difference"`
	Reason     *string    `json:"reason,omitempty"`
	ApprovedBy *uuid.UUID `json:"approvedBy,omitempty"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func FromVarianceView(v *queries.VarianceView) *VarianceResponse {
	return &VarianceResponse{
		ID:         v.ID,
		ShiftID:    v.ShiftID,
		PackID:     v.PackID,
		PackNumber: v.PackNumber,
		Expected:   v.Expected,
		Actual:     v.Actual,
		Difference: v.Difference,
		Reason:     v.Reason,
		ApprovedBy: v.ApprovedBy,
		ApprovedAt: v.ApprovedAt,
		CreatedAt:  v.CreatedAt,
	}
}

func FromVarianceViews(views []*queries.VarianceView) []*VarianceResponse {
	resp := make([]*VarianceResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, FromVarianceView(v))
	}
	return resp
}

type CloseShiftResponse struct {
	PacksClosed   int         `json:"packsClosed"`
	PacksDepleted int         `json:"packsDepleted"`
	ClosingIDs    []uuid.UUID `json:"closingIds"`
	VarianceIDs   []uuid.UUID `json:"varianceIds"`
}

func FromCloseShiftResult(r *commands.CloseShiftResult) *CloseShiftResponse {
	return &CloseShiftResponse{
		PacksClosed:   r.Summary.PacksClosed,
		PacksDepleted: r.Summary.PacksDepleted,
		ClosingIDs:    r.ClosingIDs,
		VarianceIDs:   r.VarianceIDs,
	}
}
