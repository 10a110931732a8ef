package shared

import (
	"time"

	"github.com/google/uuid"
)

type ShiftSnapshot struct {
	ID       uuid.UUID
	StoreID  uuid.UUID
	OpenedAt time.Time
	ClosedAt *time.Time
}

func (s ShiftSnapshot) IsClosed() bool {
	return s.ClosedAt != nil
}

// BinMovement is one append-only row of the pack movement trail. MovedAt is
// assigned by the server at insert time.
type BinMovement struct {
	PackID  uuid.UUID
	BinID   uuid.UUID
	MovedBy uuid.UUID
	Reason  *string
}

type AuditEntry struct {
	Table     string
	RecordID  uuid.UUID
	Action    string
	OldValues map[string]any
	NewValues map[string]any
	UserID    uuid.UUID
}

const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)
