package request

import (
	"time"

	"packtrack/internal/usecase/commands"

	"github.com/google/uuid"
)

type RecordOpeningRequest struct {
	PackID        uuid.UUID `json:"pack_id" binding:"required"`
	OpeningSerial string    `json:"opening_serial" binding:"required"`
}

type ClosingEntryRequest struct {
	BinID              uuid.UUID  `json:"bin_id" binding:"required"`
	PackID             uuid.UUID  `json:"pack_id" binding:"required"`
	EndingSerial       string     `json:"ending_serial" binding:"required"`
	EntryMethod        string     `json:"entry_method" binding:"required,oneof=SCAN MANUAL"`
	ManualAuthorizedBy *uuid.UUID `json:"manual_authorized_by,omitempty"`
	ManualAuthorizedAt *time.Time `json:"manual_authorized_at,omitempty"`
	ActualCount        *int       `json:"actual_count,omitempty"`
}

type CloseShiftRequest struct {
	Entries []ClosingEntryRequest `json:"entries" binding:"dive"`
}

func (r CloseShiftRequest) ToParams(shiftID, closedBy uuid.UUID) commands.CloseShiftParams {
	entries := make([]commands.ClosingEntryParams, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, commands.ClosingEntryParams{
			BinID:              e.BinID,
			PackID:             e.PackID,
			EndingSerial:       e.EndingSerial,
			EntryMethod:        e.EntryMethod,
			ManualAuthorizedBy: e.ManualAuthorizedBy,
			ManualAuthorizedAt: e.ManualAuthorizedAt,
			ActualCount:        e.ActualCount,
		})
	}
	return commands.CloseShiftParams{
		ShiftID:  shiftID,
		ClosedBy: closedBy,
		Entries:  entries,
	}
}
