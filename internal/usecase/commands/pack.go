package commands

import (
	"context"
	"fmt"

	dombin "packtrack/internal/domain/bin"
	"packtrack/internal/domain/pack"
	"packtrack/internal/domain/serial"
	"packtrack/internal/domain/shift"
	"packtrack/internal/infra"
	"packtrack/internal/pkg/clock"
	"packtrack/internal/pkg/errs"
	"packtrack/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrPackNotFound      = errs.New("pack not found")
	ErrBinNotFound       = errs.New("bin not found")
	ErrGameNotFound      = errs.New("game not found")
	ErrStoreMismatch     = errs.New("pack and bin belong to different stores")
	ErrBinOccupied       = errs.New("bin already holds an active pack")
	ErrInvalidTransition = errs.New("invalid pack status transition")
	ErrPackNotActive     = errs.New("pack is not active")
	ErrInvalidBinLayout  = errs.New("invalid bin layout")
)

type MovePackParams struct {
	PackID      uuid.UUID
	TargetBinID uuid.UUID
	MovedBy     uuid.UUID
	Reason      *string
}

type MoveResult struct {
	PackID    uuid.UUID
	BinID     uuid.UUID
	HistoryID uuid.UUID
}

type ActivatePackParams struct {
	PackID      uuid.UUID
	BinID       uuid.UUID
	ShiftID     uuid.UUID
	ActivatedBy uuid.UUID
}

type ReturnPackParams struct {
	PackID     uuid.UUID
	ReturnedBy uuid.UUID
	// ShiftID and EndingSerial describe the partial-sale closing recorded
	// when an active pack is pulled mid-lifecycle. Both are required for
	// active packs and ignored for received ones.
	ShiftID      *uuid.UUID
	EndingSerial *string
}

type PackCommands interface {
	// MovePack reassigns a pack's bin and appends the movement trail entry;
	// pack update, history row and audit entry share one transaction.
	MovePack(ctx context.Context, params MovePackParams) (*MoveResult, error)
	// ActivatePack opens a received pack for sale in a bin and materializes
	// its ticket serials.
	ActivatePack(ctx context.Context, params ActivatePackParams) error
	// MarkDepleted records a pack selling out mid-shift. The shift closing
	// flow later synthesizes the implicit closing for it.
	MarkDepleted(ctx context.Context, packID, shiftID, by uuid.UUID) error
	// ReturnPack pulls a pack from circulation, recording a partial-sale
	// closing when the pack was active.
	ReturnPack(ctx context.Context, params ReturnPackParams) error
	// DeletePack removes a pack and its dependent rows (movement history,
	// ticket serials, ledger entries, variances) in one transaction.
	DeletePack(ctx context.Context, packID, deletedBy uuid.UUID) error
	// SetupBins validates a bin layout and creates the store's bins.
	SetupBins(ctx context.Context, storeID uuid.UUID, templates []dombin.Template) ([]uuid.UUID, error)
}

type packCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewPackCommands(uow shared.UnitOfWork, clk clock.Clock) PackCommands {
	return &packCommandsImpl{uow: uow, clock: clk}
}

func (c *packCommandsImpl) MovePack(ctx context.Context, params MovePackParams) (*MoveResult, error) {
	var result *MoveResult

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := findPack(ctx, tx, params.PackID)
		if err != nil {
			return err
		}

		b, err := tx.Bins().FindByID(ctx, params.TargetBinID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBinNotFound
			}
			return err
		}
		if p.StoreID() != b.StoreID() {
			return ErrStoreMismatch
		}

		if p.Status() == pack.StatusActive {
			if err := ensureBinFree(ctx, tx, b.ID(), p.ID()); err != nil {
				return err
			}
		}

		oldBin := p.CurrentBin()
		p.MoveToBin(b.ID())
		if err := tx.Packs().Update(ctx, p); err != nil {
			return err
		}

		historyID, err := tx.BinHistory().Append(ctx, &shared.BinMovement{
			PackID:  p.ID(),
			BinID:   b.ID(),
			MovedBy: params.MovedBy,
			Reason:  params.Reason,
		})
		if err != nil {
			return err
		}

		if err := tx.Audit().Record(ctx, shared.AuditEntry{
			Table:     "packs",
			RecordID:  p.ID(),
			Action:    shared.AuditActionUpdate,
			OldValues: map[string]any{"current_bin_id": uuidPtrValue(oldBin)},
			NewValues: map[string]any{"current_bin_id": b.ID().String()},
			UserID:    params.MovedBy,
		}); err != nil {
			return err
		}

		result = &MoveResult{PackID: p.ID(), BinID: b.ID(), HistoryID: historyID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *packCommandsImpl) ActivatePack(ctx context.Context, params ActivatePackParams) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := findPack(ctx, tx, params.PackID)
		if err != nil {
			return err
		}

		b, err := tx.Bins().FindByID(ctx, params.BinID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBinNotFound
			}
			return err
		}
		if p.StoreID() != b.StoreID() {
			return ErrStoreMismatch
		}

		if _, err := findShift(ctx, tx, params.ShiftID); err != nil {
			return err
		}

		if err := ensureBinFree(ctx, tx, b.ID(), p.ID()); err != nil {
			return err
		}

		if err := p.Activate(b.ID(), params.ActivatedBy, params.ShiftID, c.clock.Now()); err != nil {
			return errs.Mark(err, ErrInvalidTransition)
		}
		if err := tx.Packs().Update(ctx, p); err != nil {
			return err
		}

		reason := "activation"
		if _, err := tx.BinHistory().Append(ctx, &shared.BinMovement{
			PackID:  p.ID(),
			BinID:   b.ID(),
			MovedBy: params.ActivatedBy,
			Reason:  &reason,
		}); err != nil {
			return err
		}

		g, err := tx.Games().FindByID(ctx, p.GameID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrGameNotFound
			}
			return err
		}
		if err := tx.TicketSerials().BulkCreate(ctx, p.ID(), ticketSerialNumbers(g.Code(), p)); err != nil {
			return err
		}

		return tx.Audit().Record(ctx, shared.AuditEntry{
			Table:     "packs",
			RecordID:  p.ID(),
			Action:    shared.AuditActionUpdate,
			OldValues: map[string]any{"status": string(pack.StatusReceived), "current_bin_id": nil},
			NewValues: map[string]any{"status": string(pack.StatusActive), "current_bin_id": b.ID().String()},
			UserID:    params.ActivatedBy,
		})
	})
}

func (c *packCommandsImpl) MarkDepleted(ctx context.Context, packID, shiftID, by uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := findPack(ctx, tx, packID)
		if err != nil {
			return err
		}
		if _, err := findShift(ctx, tx, shiftID); err != nil {
			return err
		}

		oldStatus := p.Status()
		if err := p.Deplete(by, shiftID, c.clock.Now()); err != nil {
			return errs.Mark(err, ErrInvalidTransition)
		}
		if err := tx.Packs().Update(ctx, p); err != nil {
			return err
		}

		return tx.Audit().Record(ctx, shared.AuditEntry{
			Table:     "packs",
			RecordID:  p.ID(),
			Action:    shared.AuditActionUpdate,
			OldValues: map[string]any{"status": string(oldStatus)},
			NewValues: map[string]any{"status": string(pack.StatusDepleted)},
			UserID:    by,
		})
	})
}

func (c *packCommandsImpl) ReturnPack(ctx context.Context, params ReturnPackParams) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := findPack(ctx, tx, params.PackID)
		if err != nil {
			return err
		}

		oldStatus := p.Status()
		oldBin := p.CurrentBin()

		if p.Status() == pack.StatusActive {
			if err := c.recordReturnClosing(ctx, tx, p, params); err != nil {
				return err
			}
		}

		if err := p.Return(c.clock.Now()); err != nil {
			return errs.Mark(err, ErrInvalidTransition)
		}
		if err := tx.Packs().Update(ctx, p); err != nil {
			return err
		}

		return tx.Audit().Record(ctx, shared.AuditEntry{
			Table:     "packs",
			RecordID:  p.ID(),
			Action:    shared.AuditActionUpdate,
			OldValues: map[string]any{"status": string(oldStatus), "current_bin_id": uuidPtrValue(oldBin)},
			NewValues: map[string]any{"status": string(pack.StatusReturned), "current_bin_id": nil},
			UserID:    params.ReturnedBy,
		})
	})
}

// recordReturnClosing books the partial-sale closing for an active pack on
// its way out: tickets up to the ending serial are settled against the shift
// before the pack leaves circulation.
func (c *packCommandsImpl) recordReturnClosing(ctx context.Context, tx shared.Tx, p *pack.Pack, params ReturnPackParams) error {
	if params.ShiftID == nil || params.EndingSerial == nil {
		return ErrInvalidClosingSerial
	}
	sh, err := findShift(ctx, tx, *params.ShiftID)
	if err != nil {
		return err
	}
	if p.StoreID() != sh.StoreID {
		return ErrStoreMismatch
	}

	ending, err := serial.NewSerial(*params.EndingSerial)
	if err != nil {
		return errs.Mark(err, ErrInvalidClosingSerial)
	}

	opening, err := resolveOpeningSerial(ctx, tx, p, sh.ID)
	if err != nil {
		return err
	}
	if ending.Before(opening) || ending.After(p.SerialEnd()) {
		return ErrInvalidClosingSerial
	}

	sold := serial.TicketCount(opening, ending)
	closing, err := shift.NewClosing(sh.ID, p.ID(), ending, shift.EntryScan, nil, sold, c.clock.Now())
	if err != nil {
		return err
	}
	if err := tx.Ledger().CreateClosing(ctx, closing); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return ErrDuplicateClosing
		}
		return err
	}

	_, err = tx.TicketSerials().MarkSoldRange(ctx, p.ID(), opening.String(), ending.String(), sh.ID, params.ReturnedBy)
	return err
}

func (c *packCommandsImpl) DeletePack(ctx context.Context, packID, deletedBy uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := findPack(ctx, tx, packID)
		if err != nil {
			return err
		}

		// Dependent rows go first; the storage layer has no declarative
		// cascade for these.
		if err := tx.BinHistory().DeleteByPack(ctx, p.ID()); err != nil {
			return err
		}
		if err := tx.TicketSerials().DeleteByPack(ctx, p.ID()); err != nil {
			return err
		}
		if err := tx.Ledger().DeleteByPack(ctx, p.ID()); err != nil {
			return err
		}
		if err := tx.Variances().DeleteByPack(ctx, p.ID()); err != nil {
			return err
		}
		if err := tx.Packs().Delete(ctx, p.ID()); err != nil {
			return err
		}

		return tx.Audit().Record(ctx, shared.AuditEntry{
			Table:     "packs",
			RecordID:  p.ID(),
			Action:    shared.AuditActionDelete,
			OldValues: map[string]any{"pack_number": p.PackNumber(), "status": string(p.Status())},
			UserID:    deletedBy,
		})
	})
}

func (c *packCommandsImpl) SetupBins(ctx context.Context, storeID uuid.UUID, templates []dombin.Template) ([]uuid.UUID, error) {
	bins, err := dombin.BuildFromTemplates(storeID, templates)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidBinLayout)
	}

	ids := make([]uuid.UUID, 0, len(bins))
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		for _, b := range bins {
			if err := tx.Bins().Create(ctx, b); err != nil {
				return err
			}
			ids = append(ids, b.ID())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func findPack(ctx context.Context, tx shared.Tx, id uuid.UUID) (*pack.Pack, error) {
	p, err := tx.Packs().FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPackNotFound
		}
		return nil, err
	}
	return p, nil
}

func findShift(ctx context.Context, tx shared.Tx, id uuid.UUID) (*shared.ShiftSnapshot, error) {
	sh, err := tx.Shifts().FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return sh, nil
}

func ensureBinFree(ctx context.Context, tx shared.Tx, binID, exceptPackID uuid.UUID) error {
	occupant, err := tx.Packs().FindActiveByBin(ctx, binID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil
		}
		return err
	}
	if occupant.ID() != exceptPackID {
		return ErrBinOccupied
	}
	return nil
}

// ticketSerialNumbers materializes the globally unique 14-digit identifiers
// for every ticket of a pack: game code + pack number + position.
func ticketSerialNumbers(gameCode string, p *pack.Pack) []string {
	start := p.SerialStart().Int()
	end := p.SerialEnd().Int()
	numbers := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		numbers = append(numbers, fmt.Sprintf("%s%s%03d", gameCode, p.PackNumber(), n))
	}
	return numbers
}

func uuidPtrValue(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
