package pack

import (
	"errors"
	"time"

	"packtrack/internal/domain/serial"

	"github.com/google/uuid"
)

var (
	ErrInvalidPackNumber  = errors.New("pack number must be a 7-digit numeric string")
	ErrInvalidSerialRange = errors.New("serial start must not exceed serial end")
	ErrInvalidTransition  = errors.New("invalid pack status transition")
	ErrNotInBin           = errors.New("pack is not placed in a bin")
)

type Status string

const (
	StatusReceived Status = "RECEIVED"
	StatusActive   Status = "ACTIVE"
	StatusDepleted Status = "DEPLETED"
	StatusReturned Status = "RETURNED"
)

func NewStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusReceived, StatusActive, StatusDepleted, StatusReturned:
		return Status(value), nil
	default:
		return "", ErrInvalidTransition
	}
}

// Pack is one physical bundle of sequentially serialized tickets. Status
// moves RECEIVED -> ACTIVE -> DEPLETED, with RETURNED reachable from
// RECEIVED or ACTIVE. Lifecycle timestamps are set exactly once, when the
// pack passes through the corresponding state.
type Pack struct {
	id          uuid.UUID
	storeID     uuid.UUID
	gameID      uuid.UUID
	packNumber  string
	serialStart serial.Serial
	serialEnd   serial.Serial
	status      Status
	currentBin  *uuid.UUID

	receivedAt     time.Time
	activatedAt    *time.Time
	activatedBy    *uuid.UUID
	activatedShift *uuid.UUID
	depletedAt     *time.Time
	depletedBy     *uuid.UUID
	depletedShift  *uuid.UUID
	returnedAt     *time.Time
}

func NewPack(storeID, gameID uuid.UUID, packNumber string, start, end serial.Serial, receivedAt time.Time) (*Pack, error) {
	if len(packNumber) != 7 || !isDigits(packNumber) {
		return nil, ErrInvalidPackNumber
	}
	if start.After(end) {
		return nil, ErrInvalidSerialRange
	}
	return &Pack{
		id:          uuid.New(),
		storeID:     storeID,
		gameID:      gameID,
		packNumber:  packNumber,
		serialStart: start,
		serialEnd:   end,
		status:      StatusReceived,
		receivedAt:  receivedAt,
	}, nil
}

func ReconstructPack(
	id, storeID, gameID uuid.UUID,
	packNumber string,
	start, end serial.Serial,
	status Status,
	currentBin *uuid.UUID,
	receivedAt time.Time,
	activatedAt *time.Time, activatedBy, activatedShift *uuid.UUID,
	depletedAt *time.Time, depletedBy, depletedShift *uuid.UUID,
	returnedAt *time.Time,
) *Pack {
	return &Pack{
		id:             id,
		storeID:        storeID,
		gameID:         gameID,
		packNumber:     packNumber,
		serialStart:    start,
		serialEnd:      end,
		status:         status,
		currentBin:     currentBin,
		receivedAt:     receivedAt,
		activatedAt:    activatedAt,
		activatedBy:    activatedBy,
		activatedShift: activatedShift,
		depletedAt:     depletedAt,
		depletedBy:     depletedBy,
		depletedShift:  depletedShift,
		returnedAt:     returnedAt,
	}
}

// Activate places a received pack into a bin and opens it for sale.
func (p *Pack) Activate(binID, by, shiftID uuid.UUID, at time.Time) error {
	if p.status != StatusReceived {
		return ErrInvalidTransition
	}
	at = p.notBefore(at)
	p.status = StatusActive
	p.currentBin = &binID
	p.activatedAt = &at
	p.activatedBy = &by
	p.activatedShift = &shiftID
	return nil
}

// Deplete marks an active pack fully sold. Only the shift closing flow
// calls this, when the closing serial reaches the pack's final serial.
func (p *Pack) Deplete(by, shiftID uuid.UUID, at time.Time) error {
	if p.status != StatusActive {
		return ErrInvalidTransition
	}
	at = p.notBefore(at)
	p.status = StatusDepleted
	p.depletedAt = &at
	p.depletedBy = &by
	p.depletedShift = &shiftID
	return nil
}

// Return pulls a pack out of circulation before it is sold through.
func (p *Pack) Return(at time.Time) error {
	if p.status != StatusReceived && p.status != StatusActive {
		return ErrInvalidTransition
	}
	at = p.notBefore(at)
	p.status = StatusReturned
	p.returnedAt = &at
	p.currentBin = nil
	return nil
}

// MoveToBin records the pack's new physical slot. The movement audit row is
// the caller's responsibility; the two writes share one transaction.
func (p *Pack) MoveToBin(binID uuid.UUID) {
	p.currentBin = &binID
}

// notBefore lifts a timestamp that precedes the latest lifecycle stamp, so
// receivedAt <= activatedAt <= depletedAt/returnedAt always holds.
func (p *Pack) notBefore(at time.Time) time.Time {
	floor := p.receivedAt
	if p.activatedAt != nil && p.activatedAt.After(floor) {
		floor = *p.activatedAt
	}
	if at.Before(floor) {
		return floor
	}
	return at
}

func (p *Pack) IsDepletedInShift(shiftID uuid.UUID) bool {
	return p.status == StatusDepleted && p.depletedShift != nil && *p.depletedShift == shiftID
}

func (p *Pack) ID() uuid.UUID              { return p.id }
func (p *Pack) StoreID() uuid.UUID         { return p.storeID }
func (p *Pack) GameID() uuid.UUID          { return p.gameID }
func (p *Pack) PackNumber() string         { return p.packNumber }
func (p *Pack) SerialStart() serial.Serial { return p.serialStart }
func (p *Pack) SerialEnd() serial.Serial   { return p.serialEnd }
func (p *Pack) Status() Status             { return p.status }
func (p *Pack) CurrentBin() *uuid.UUID     { return p.currentBin }
func (p *Pack) ReceivedAt() time.Time      { return p.receivedAt }
func (p *Pack) ActivatedAt() *time.Time    { return p.activatedAt }
func (p *Pack) ActivatedBy() *uuid.UUID    { return p.activatedBy }
func (p *Pack) ActivatedShift() *uuid.UUID { return p.activatedShift }
func (p *Pack) DepletedAt() *time.Time     { return p.depletedAt }
func (p *Pack) DepletedBy() *uuid.UUID     { return p.depletedBy }
func (p *Pack) DepletedShift() *uuid.UUID  { return p.depletedShift }
func (p *Pack) ReturnedAt() *time.Time     { return p.returnedAt }

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
