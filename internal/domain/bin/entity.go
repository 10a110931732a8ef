package bin

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyLabel          = errors.New("bin label cannot be empty")
	ErrNegativeOrder       = errors.New("bin display order cannot be negative")
	ErrInvalidTemplate     = errors.New("invalid bin template")
	ErrDuplicateOrderInSet = errors.New("duplicate display order in bin template set")
)

// Bin is a store-local physical slot that holds at most one active pack.
// Single-occupancy is enforced by the pack commands, not by a bin field.
type Bin struct {
	id           uuid.UUID
	storeID      uuid.UUID
	label        string
	displayOrder int
	isActive     bool
}

func NewBin(storeID uuid.UUID, label string, displayOrder int, isActive bool) (*Bin, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrEmptyLabel
	}
	if displayOrder < 0 {
		return nil, ErrNegativeOrder
	}
	return &Bin{
		id:           uuid.New(),
		storeID:      storeID,
		label:        label,
		displayOrder: displayOrder,
		isActive:     isActive,
	}, nil
}

func ReconstructBin(id, storeID uuid.UUID, label string, displayOrder int, isActive bool) *Bin {
	return &Bin{
		id:           id,
		storeID:      storeID,
		label:        label,
		displayOrder: displayOrder,
		isActive:     isActive,
	}
}

func (b *Bin) ID() uuid.UUID      { return b.id }
func (b *Bin) StoreID() uuid.UUID { return b.storeID }
func (b *Bin) Label() string      { return b.label }
func (b *Bin) DisplayOrder() int  { return b.displayOrder }
func (b *Bin) IsActive() bool     { return b.isActive }

// Template is a fixed-shape bin layout record consumed at store setup.
// Optional members are explicit pointers, validated once at this boundary.
type Template struct {
	Label        string `json:"label"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// BuildFromTemplates validates a layout and materializes bins for a store.
// Display orders must be unique within the set.
func BuildFromTemplates(storeID uuid.UUID, templates []Template) ([]*Bin, error) {
	seen := make(map[int]struct{}, len(templates))
	bins := make([]*Bin, 0, len(templates))
	for _, tpl := range templates {
		if _, dup := seen[tpl.DisplayOrder]; dup {
			return nil, errors.Join(ErrInvalidTemplate, ErrDuplicateOrderInSet)
		}
		seen[tpl.DisplayOrder] = struct{}{}

		active := true
		if tpl.IsActive != nil {
			active = *tpl.IsActive
		}
		b, err := NewBin(storeID, tpl.Label, tpl.DisplayOrder, active)
		if err != nil {
			return nil, errors.Join(ErrInvalidTemplate, err)
		}
		bins = append(bins, b)
	}
	return bins, nil
}
