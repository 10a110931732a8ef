package commands

import (
	"context"
	"time"

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
	ErrShiftNotFound           = errs.New("shift not found")
	ErrShiftAlreadyClosed      = errs.New("shift is already closed")
	ErrInvalidClosingSerial    = errs.New("closing serial out of range or malformed")
	ErrInvalidOpeningSerial    = errs.New("opening serial out of range or malformed")
	ErrManualEntryUnauthorized = errs.New("manual serial entry requires authorization")
	ErrDuplicateOpening        = errs.New("opening already recorded for this shift and pack")
	ErrDuplicateClosing        = errs.New("closing already recorded for this shift and pack")
	ErrVarianceNotFound        = errs.New("variance not found")
	ErrVarianceAlreadyApproved = errs.New("variance is already approved")
)

type ClosingEntryParams struct {
	BinID              uuid.UUID
	PackID             uuid.UUID
	EndingSerial       string
	EntryMethod        string
	ManualAuthorizedBy *uuid.UUID
	ManualAuthorizedAt *time.Time
	// ActualCount is an independently counted total for variance detection.
	// When absent, the sold ticket-serial count stands in, if tracked.
	ActualCount *int
}

type CloseShiftParams struct {
	ShiftID  uuid.UUID
	ClosedBy uuid.UUID
	Entries  []ClosingEntryParams
}

type CloseShiftSummary struct {
	PacksClosed   int `json:"packs_closed"`
	PacksDepleted int `json:"packs_depleted"`
}

type CloseShiftResult struct {
	Summary     CloseShiftSummary
	ClosingIDs  []uuid.UUID
	VarianceIDs []uuid.UUID
}

type ShiftCommands interface {
	// RecordOpening snapshots where a pack starts a shift. One row per
	// (shift, pack); a second write fails.
	RecordOpening(ctx context.Context, shiftID, packID uuid.UUID, openingSerial string) error
	// CloseShift reconciles every submitted bin, synthesizes closings for
	// packs that sold out mid-shift, depletes packs closed at their final
	// serial and books variances — all in one transaction, serialized per
	// shift. Any validation failure aborts the whole call.
	CloseShift(ctx context.Context, params CloseShiftParams) (*CloseShiftResult, error)
	ApproveVariance(ctx context.Context, varianceID, approvedBy uuid.UUID) error
	// DeleteShift removes a shift and its ledger rows; ticket serials keep
	// their sold state but lose the shift reference.
	DeleteShift(ctx context.Context, shiftID, deletedBy uuid.UUID) error
}

type shiftCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewShiftCommands(uow shared.UnitOfWork, clk clock.Clock) ShiftCommands {
	return &shiftCommandsImpl{uow: uow, clock: clk}
}

func (c *shiftCommandsImpl) RecordOpening(ctx context.Context, shiftID, packID uuid.UUID, openingSerial string) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		sh, err := findShift(ctx, tx, shiftID)
		if err != nil {
			return err
		}
		if sh.IsClosed() {
			return ErrShiftAlreadyClosed
		}

		p, err := findPack(ctx, tx, packID)
		if err != nil {
			return err
		}

		s, err := serial.NewSerial(openingSerial)
		if err != nil {
			return errs.Mark(err, ErrInvalidOpeningSerial)
		}
		if s.Before(p.SerialStart()) || s.After(p.SerialEnd()) {
			return ErrInvalidOpeningSerial
		}

		opening := shift.NewOpening(shiftID, packID, s, c.clock.Now())
		if err := tx.Ledger().CreateOpening(ctx, opening); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrDuplicateOpening
			}
			return err
		}
		return nil
	})
}

func (c *shiftCommandsImpl) CloseShift(ctx context.Context, params CloseShiftParams) (*CloseShiftResult, error) {
	var result *CloseShiftResult

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// Two closers for the same shift would read-then-write overlapping
		// pack sets and double-count; the lock serializes them.
		if err := tx.LockShift(ctx, params.ShiftID); err != nil {
			return err
		}

		sh, err := findShift(ctx, tx, params.ShiftID)
		if err != nil {
			return err
		}
		if sh.IsClosed() {
			return ErrShiftAlreadyClosed
		}

		result = &CloseShiftResult{}

		if err := c.closeImplicit(ctx, tx, sh, params, result); err != nil {
			return err
		}
		for _, entry := range params.Entries {
			if err := c.closeExplicit(ctx, tx, sh, params.ClosedBy, entry, result); err != nil {
				return err
			}
		}

		return tx.Shifts().MarkClosed(ctx, sh.ID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// closeImplicit synthesizes system closings for packs that were depleted
// during this shift but are absent from the submitted entries — they sold
// out mid-shift and nobody rescans an empty pack at close.
func (c *shiftCommandsImpl) closeImplicit(
	ctx context.Context,
	tx shared.Tx,
	sh *shared.ShiftSnapshot,
	params CloseShiftParams,
	result *CloseShiftResult,
) error {
	submitted := make(map[uuid.UUID]struct{}, len(params.Entries))
	for _, e := range params.Entries {
		submitted[e.PackID] = struct{}{}
	}

	depleted, err := tx.Packs().ListDepletedInShift(ctx, sh.ID)
	if err != nil {
		return err
	}

	for _, p := range depleted {
		if _, ok := submitted[p.ID()]; ok {
			continue
		}
		exists, err := tx.Ledger().ClosingExists(ctx, sh.ID, p.ID())
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		opening, err := c.observeOpening(ctx, tx, p, sh.ID)
		if err != nil {
			return err
		}
		sold := serial.TicketCount(opening, p.SerialEnd())

		closing := shift.NewSystemClosing(sh.ID, p.ID(), p.SerialEnd(), sold, c.clock.Now())
		if err := tx.Ledger().CreateClosing(ctx, closing); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrDuplicateClosing
			}
			return err
		}
		if _, err := tx.TicketSerials().MarkSoldRange(
			ctx, p.ID(), opening.String(), p.SerialEnd().String(), sh.ID, params.ClosedBy,
		); err != nil {
			return err
		}

		result.ClosingIDs = append(result.ClosingIDs, closing.ID())
		result.Summary.PacksClosed++
	}
	return nil
}

func (c *shiftCommandsImpl) closeExplicit(
	ctx context.Context,
	tx shared.Tx,
	sh *shared.ShiftSnapshot,
	closedBy uuid.UUID,
	entry ClosingEntryParams,
	result *CloseShiftResult,
) error {
	p, err := findPack(ctx, tx, entry.PackID)
	if err != nil {
		return err
	}
	if p.StoreID() != sh.StoreID {
		return ErrStoreMismatch
	}
	active := p.Status() == pack.StatusActive
	if !active {
		// A pack already closed in this shift surfaces as a duplicate, not
		// as a state error, so retried submissions read sensibly.
		exists, existsErr := tx.Ledger().ClosingExists(ctx, sh.ID, p.ID())
		if existsErr != nil {
			return existsErr
		}
		if exists {
			return ErrDuplicateClosing
		}
		// A pack that sold out mid-shift may still be rescanned at close;
		// its entry reconciles at the final serial instead of aborting.
		if !p.IsDepletedInShift(sh.ID) {
			return ErrPackNotActive
		}
	}

	method, err := shift.NewEntryMethod(entry.EntryMethod)
	if err != nil {
		return err
	}
	var manualAuth *shift.ManualAuthorization
	if method == shift.EntryManual {
		if entry.ManualAuthorizedBy == nil || entry.ManualAuthorizedAt == nil {
			return ErrManualEntryUnauthorized
		}
		manualAuth = &shift.ManualAuthorization{
			AuthorizedBy: *entry.ManualAuthorizedBy,
			AuthorizedAt: *entry.ManualAuthorizedAt,
		}
	}

	ending, err := serial.NewSerial(entry.EndingSerial)
	if err != nil {
		return errs.Mark(err, ErrInvalidClosingSerial)
	}

	opening, err := c.observeOpening(ctx, tx, p, sh.ID)
	if err != nil {
		return err
	}
	if ending.Before(opening) || ending.After(p.SerialEnd()) {
		return ErrInvalidClosingSerial
	}
	if !active && ending != p.SerialEnd() {
		return ErrInvalidClosingSerial
	}

	ticketsSold := serial.TicketCount(opening, ending)

	closing, err := shift.NewClosing(sh.ID, p.ID(), ending, method, manualAuth, ticketsSold, c.clock.Now())
	if err != nil {
		return errs.Mark(err, ErrManualEntryUnauthorized)
	}
	if err := tx.Ledger().CreateClosing(ctx, closing); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return ErrDuplicateClosing
		}
		return err
	}
	result.ClosingIDs = append(result.ClosingIDs, closing.ID())
	result.Summary.PacksClosed++

	if _, err := tx.TicketSerials().MarkSoldRange(
		ctx, p.ID(), opening.String(), ending.String(), sh.ID, closedBy,
	); err != nil {
		return err
	}

	if active && ending == p.SerialEnd() {
		if err := p.Deplete(closedBy, sh.ID, c.clock.Now()); err != nil {
			return errs.Mark(err, ErrInvalidTransition)
		}
		if err := tx.Packs().Update(ctx, p); err != nil {
			return err
		}
		if err := tx.Audit().Record(ctx, shared.AuditEntry{
			Table:     "packs",
			RecordID:  p.ID(),
			Action:    shared.AuditActionUpdate,
			OldValues: map[string]any{"status": string(pack.StatusActive), "current_bin_id": uuidPtrValue(p.CurrentBin())},
			NewValues: map[string]any{"status": string(pack.StatusDepleted), "current_bin_id": uuidPtrValue(p.CurrentBin())},
			UserID:    closedBy,
		}); err != nil {
			return err
		}
		result.Summary.PacksDepleted++
	}

	actual := ticketsSold
	if entry.ActualCount != nil {
		actual = *entry.ActualCount
	} else {
		// The opening position of a continuation shift was sold by the
		// previous shift, so the count of sold serials in the full range is
		// the actual, not the number of rows marked just now.
		total, sold, countErr := tx.TicketSerials().CountRange(ctx, p.ID(), opening.String(), ending.String())
		if countErr != nil {
			return countErr
		}
		if total > 0 {
			actual = sold
		}
	}

	if v := shift.DetectVariance(sh.ID, p.ID(), ticketsSold, actual, nil, c.clock.Now()); v != nil {
		if err := tx.Variances().Create(ctx, v); err != nil {
			return err
		}
		result.VarianceIDs = append(result.VarianceIDs, v.ID())
	}

	return nil
}

// observeOpening resolves where the pack started this shift and pins the
// opening row if this is the first observation. Precedence: explicit opening
// for this shift, then the pack's most recent closing, then serial_start —
// yesterday's ending serial becomes today's starting serial without any
// carryover write.
func (c *shiftCommandsImpl) observeOpening(ctx context.Context, tx shared.Tx, p *pack.Pack, shiftID uuid.UUID) (serial.Serial, error) {
	resolved, err := resolveOpeningSerial(ctx, tx, p, shiftID)
	if err != nil {
		return serial.Serial{}, err
	}

	existing, err := tx.Ledger().FindOpening(ctx, shiftID, p.ID())
	if err == nil && existing != nil {
		return resolved, nil
	}
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return serial.Serial{}, err
	}

	opening := shift.NewOpening(shiftID, p.ID(), resolved, c.clock.Now())
	if err := tx.Ledger().CreateOpening(ctx, opening); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return resolved, nil
		}
		return serial.Serial{}, err
	}
	return resolved, nil
}

func resolveOpeningSerial(ctx context.Context, tx shared.Tx, p *pack.Pack, shiftID uuid.UUID) (serial.Serial, error) {
	opening, err := tx.Ledger().FindOpening(ctx, shiftID, p.ID())
	if err == nil {
		return opening.OpeningSerial(), nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return serial.Serial{}, err
	}

	latest, err := tx.Ledger().FindLatestClosing(ctx, p.ID())
	if err == nil {
		return latest.ClosingSerial(), nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return serial.Serial{}, err
	}

	return p.SerialStart(), nil
}

func (c *shiftCommandsImpl) ApproveVariance(ctx context.Context, varianceID, approvedBy uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		v, err := tx.Variances().FindByID(ctx, varianceID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrVarianceNotFound
			}
			return err
		}

		if err := v.Approve(approvedBy, c.clock.Now()); err != nil {
			return errs.Mark(err, ErrVarianceAlreadyApproved)
		}
		if err := tx.Variances().Update(ctx, v); err != nil {
			return err
		}

		return tx.Audit().Record(ctx, shared.AuditEntry{
			Table:     "variances",
			RecordID:  v.ID(),
			Action:    shared.AuditActionUpdate,
			OldValues: map[string]any{"approved_by": nil},
			NewValues: map[string]any{"approved_by": approvedBy.String()},
			UserID:    approvedBy,
		})
	})
}

func (c *shiftCommandsImpl) DeleteShift(ctx context.Context, shiftID, deletedBy uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		sh, err := findShift(ctx, tx, shiftID)
		if err != nil {
			return err
		}

		// Sold serials keep sold_at; only the shift link is severed.
		if err := tx.TicketSerials().ClearShiftReferences(ctx, sh.ID); err != nil {
			return err
		}
		if err := tx.Ledger().DeleteByShift(ctx, sh.ID); err != nil {
			return err
		}
		if err := tx.Variances().DeleteByShift(ctx, sh.ID); err != nil {
			return err
		}
		if err := tx.Shifts().Delete(ctx, sh.ID); err != nil {
			return err
		}

		return tx.Audit().Record(ctx, shared.AuditEntry{
			Table:    "shifts",
			RecordID: sh.ID,
			Action:   shared.AuditActionDelete,
			UserID:   deletedBy,
		})
	})
}
