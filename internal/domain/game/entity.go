package game

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidGameCode = errors.New("game code must be a 4-digit numeric string")
	ErrInvalidPrice    = errors.New("ticket price must be positive")
	ErrInvalidPackSize = errors.New("pack size must be between 1 and 1000")
	ErrInvalidStatus   = errors.New("invalid game status")
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

func NewStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusActive, StatusInactive:
		return Status(value), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Game is a lottery game definition. Once packs reference a game its code and
// price are treated as immutable. A game may override the store's standard
// pack size; packSize is nil when it uses the default.
type Game struct {
	id         uuid.UUID
	code       string
	name       string
	priceCents int64
	packSize   *int
	status     Status
	createdAt  time.Time
}

func NewGame(code, name string, priceCents int64, packSize *int, now time.Time) (*Game, error) {
	if len(code) != 4 || !isDigits(code) {
		return nil, ErrInvalidGameCode
	}
	if priceCents <= 0 {
		return nil, ErrInvalidPrice
	}
	if packSize != nil && (*packSize < 1 || *packSize > 1000) {
		return nil, ErrInvalidPackSize
	}
	return &Game{
		id:         uuid.New(),
		code:       code,
		name:       name,
		priceCents: priceCents,
		packSize:   packSize,
		status:     StatusActive,
		createdAt:  now,
	}, nil
}

func ReconstructGame(id uuid.UUID, code, name string, priceCents int64, packSize *int, status Status, createdAt time.Time) *Game {
	return &Game{
		id:         id,
		code:       code,
		name:       name,
		priceCents: priceCents,
		packSize:   packSize,
		status:     status,
		createdAt:  createdAt,
	}
}

// PackSizeOrDefault returns the game's ticket span, falling back to the
// store-level standard.
func (g *Game) PackSizeOrDefault(def int) int {
	if g.packSize != nil {
		return *g.packSize
	}
	return def
}

func (g *Game) ID() uuid.UUID        { return g.id }
func (g *Game) Code() string         { return g.code }
func (g *Game) Name() string         { return g.name }
func (g *Game) PriceCents() int64    { return g.priceCents }
func (g *Game) PackSize() *int       { return g.packSize }
func (g *Game) Status() Status       { return g.status }
func (g *Game) CreatedAt() time.Time { return g.createdAt }

func (g *Game) IsActive() bool {
	return g.status == StatusActive
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
