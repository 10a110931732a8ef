package shift

import (
	"errors"
	"time"

	"packtrack/internal/domain/serial"

	"github.com/google/uuid"
)

var (
	ErrInvalidEntryMethod      = errors.New("invalid entry method")
	ErrManualEntryUnauthorized = errors.New("manual serial entry requires authorization")
)

type EntryMethod string

const (
	EntryScan   EntryMethod = "SCAN"
	EntryManual EntryMethod = "MANUAL"
)

func NewEntryMethod(value string) (EntryMethod, error) {
	switch EntryMethod(value) {
	case EntryScan, EntryManual:
		return EntryMethod(value), nil
	default:
		return "", ErrInvalidEntryMethod
	}
}

// ManualAuthorization records who signed off on a hand-typed closing serial.
type ManualAuthorization struct {
	AuthorizedBy uuid.UUID
	AuthorizedAt time.Time
}

// Opening is the per-shift snapshot of where a pack started. Unique per
// (shift, pack); written once, the first time the pack is observed.
type Opening struct {
	id            uuid.UUID
	shiftID       uuid.UUID
	packID        uuid.UUID
	openingSerial serial.Serial
	createdAt     time.Time
}

func NewOpening(shiftID, packID uuid.UUID, openingSerial serial.Serial, at time.Time) *Opening {
	return &Opening{
		id:            uuid.New(),
		shiftID:       shiftID,
		packID:        packID,
		openingSerial: openingSerial,
		createdAt:     at,
	}
}

func ReconstructOpening(id, shiftID, packID uuid.UUID, openingSerial serial.Serial, createdAt time.Time) *Opening {
	return &Opening{id: id, shiftID: shiftID, packID: packID, openingSerial: openingSerial, createdAt: createdAt}
}

func (o *Opening) ID() uuid.UUID                { return o.id }
func (o *Opening) ShiftID() uuid.UUID           { return o.shiftID }
func (o *Opening) PackID() uuid.UUID            { return o.packID }
func (o *Opening) OpeningSerial() serial.Serial { return o.openingSerial }
func (o *Opening) CreatedAt() time.Time         { return o.createdAt }

// Closing is the reconciled end-of-shift snapshot for one pack. Unique per
// (shift, pack); a second closing for the pair must fail, never overwrite.
type Closing struct {
	id            uuid.UUID
	shiftID       uuid.UUID
	packID        uuid.UUID
	closingSerial serial.Serial
	entryMethod   EntryMethod
	manualAuth    *ManualAuthorization
	ticketsSold   int
	isSystem      bool
	createdAt     time.Time
}

// NewClosing validates the entry method contract: MANUAL closings carry an
// authorization, SCAN closings never do.
func NewClosing(
	shiftID, packID uuid.UUID,
	closingSerial serial.Serial,
	method EntryMethod,
	manualAuth *ManualAuthorization,
	ticketsSold int,
	at time.Time,
) (*Closing, error) {
	if method == EntryManual && manualAuth == nil {
		return nil, ErrManualEntryUnauthorized
	}
	if method != EntryManual {
		manualAuth = nil
	}
	return &Closing{
		id:            uuid.New(),
		shiftID:       shiftID,
		packID:        packID,
		closingSerial: closingSerial,
		entryMethod:   method,
		manualAuth:    manualAuth,
		ticketsSold:   ticketsSold,
		createdAt:     at,
	}, nil
}

// NewSystemClosing synthesizes the implicit record for a pack that sold out
// mid-shift and was never rescanned at close.
func NewSystemClosing(shiftID, packID uuid.UUID, serialEnd serial.Serial, ticketsSold int, at time.Time) *Closing {
	return &Closing{
		id:            uuid.New(),
		shiftID:       shiftID,
		packID:        packID,
		closingSerial: serialEnd,
		entryMethod:   EntryScan,
		ticketsSold:   ticketsSold,
		isSystem:      true,
		createdAt:     at,
	}
}

func ReconstructClosing(
	id, shiftID, packID uuid.UUID,
	closingSerial serial.Serial,
	method EntryMethod,
	manualAuth *ManualAuthorization,
	ticketsSold int,
	isSystem bool,
	createdAt time.Time,
) *Closing {
	return &Closing{
		id:            id,
		shiftID:       shiftID,
		packID:        packID,
		closingSerial: closingSerial,
		entryMethod:   method,
		manualAuth:    manualAuth,
		ticketsSold:   ticketsSold,
		isSystem:      isSystem,
		createdAt:     createdAt,
	}
}

func (c *Closing) ID() uuid.UUID                    { return c.id }
func (c *Closing) ShiftID() uuid.UUID               { return c.shiftID }
func (c *Closing) PackID() uuid.UUID                { return c.packID }
func (c *Closing) ClosingSerial() serial.Serial     { return c.closingSerial }
func (c *Closing) EntryMethod() EntryMethod         { return c.entryMethod }
func (c *Closing) ManualAuth() *ManualAuthorization { return c.manualAuth }
func (c *Closing) TicketsSold() int                 { return c.ticketsSold }
func (c *Closing) IsSystem() bool                   { return c.isSystem }
func (c *Closing) CreatedAt() time.Time             { return c.createdAt }
