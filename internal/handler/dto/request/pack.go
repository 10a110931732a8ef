package request

import (
	"packtrack/internal/domain/bin"
	"packtrack/internal/usecase/commands"

	"github.com/google/uuid"
)

type MovePackRequest struct {
	TargetBinID uuid.UUID `json:"target_bin_id" binding:"required"`
	Reason      *string   `json:"reason,omitempty"`
}

func (r MovePackRequest) ToParams(packID, movedBy uuid.UUID) commands.MovePackParams {
	return commands.MovePackParams{
		PackID:      packID,
		TargetBinID: r.TargetBinID,
		MovedBy:     movedBy,
		Reason:      r.Reason,
	}
}

type ActivatePackRequest struct {
	BinID   uuid.UUID `json:"bin_id" binding:"required"`
	ShiftID uuid.UUID `json:"shift_id" binding:"required"`
}

func (r ActivatePackRequest) ToParams(packID, activatedBy uuid.UUID) commands.ActivatePackParams {
	return commands.ActivatePackParams{
		PackID:      packID,
		BinID:       r.BinID,
		ShiftID:     r.ShiftID,
		ActivatedBy: activatedBy,
	}
}

type MarkDepletedRequest struct {
	ShiftID uuid.UUID `json:"shift_id" binding:"required"`
}

type ReturnPackRequest struct {
	ShiftID      *uuid.UUID `json:"shift_id,omitempty"`
	EndingSerial *string    `json:"ending_serial,omitempty"`
}

func (r ReturnPackRequest) ToParams(packID, returnedBy uuid.UUID) commands.ReturnPackParams {
	return commands.ReturnPackParams{
		PackID:       packID,
		ReturnedBy:   returnedBy,
		ShiftID:      r.ShiftID,
		EndingSerial: r.EndingSerial,
	}
}

type BinTemplateRequest struct {
	Label        string `json:"label" binding:"required"`
	DisplayOrder int    `json:"display_order" binding:"min=0"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

type SetupBinsRequest struct {
	StoreID uuid.UUID            `json:"store_id" binding:"required"`
	Bins    []BinTemplateRequest `json:"bins" binding:"required,min=1,dive"`
}

func (r SetupBinsRequest) ToTemplates() []bin.Template {
	templates := make([]bin.Template, 0, len(r.Bins))
	for _, b := range r.Bins {
		templates = append(templates, bin.Template{
			Label:        b.Label,
			DisplayOrder: b.DisplayOrder,
			IsActive:     b.IsActive,
		})
	}
	return templates
}
