//go:build unit || e2e

package builder

import (
	"time"

	dompack "packtrack/internal/domain/pack"
	"packtrack/internal/domain/serial"

	"github.com/google/uuid"
)

type PackBuilder struct {
	StoreID     uuid.UUID
	GameID      uuid.UUID
	PackNumber  string
	SerialStart string
	SerialEnd   string
	ReceivedAt  time.Time
}

func NewPackBuilder() *PackBuilder {
	return &PackBuilder{
		StoreID:     uuid.New(),
		GameID:      uuid.New(),
		PackNumber:  "1234567",
		SerialStart: "000",
		SerialEnd:   "149",
		ReceivedAt:  time.Now(),
	}
}

func (b *PackBuilder) WithPackNumber(n string) *PackBuilder {
	b.PackNumber = n
	return b
}

func (b *PackBuilder) WithSerialRange(start, end string) *PackBuilder {
	b.SerialStart = start
	b.SerialEnd = end
	return b
}

func (b *PackBuilder) WithStore(storeID uuid.UUID) *PackBuilder {
	b.StoreID = storeID
	return b
}

func (b *PackBuilder) BuildDomain() (*dompack.Pack, error) {
	start, err := serial.NewSerial(b.SerialStart)
	if err != nil {
		return nil, err
	}
	end, err := serial.NewSerial(b.SerialEnd)
	if err != nil {
		return nil, err
	}
	return dompack.NewPack(b.StoreID, b.GameID, b.PackNumber, start, end, b.ReceivedAt)
}

// BuildActive returns a pack already activated into a bin, for tests that
// start mid-lifecycle.
func (b *PackBuilder) BuildActive(binID, by, shiftID uuid.UUID) (*dompack.Pack, error) {
	p, err := b.BuildDomain()
	if err != nil {
		return nil, err
	}
	if err := p.Activate(binID, by, shiftID, b.ReceivedAt.Add(time.Minute)); err != nil {
		return nil, err
	}
	return p, nil
}
