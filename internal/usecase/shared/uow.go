package shared

import (
	"context"

	"packtrack/internal/domain/bin"
	"packtrack/internal/domain/game"
	"packtrack/internal/domain/pack"
	"packtrack/internal/domain/shift"
	"packtrack/internal/infra/db"

	"github.com/google/uuid"
)

// UnitOfWork is the single entry point for mutating the store. Commands
// receive the transaction as an explicit value, never through a global
// client, so atomicity boundaries show up in signatures.
type UnitOfWork interface {
	// Within: full read-committed transaction with retry on serialization
	// failures and deadlocks.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: single-query operations using implicit transactions.
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
}

type Tx interface {
	Packs() PackRepository
	Games() GameRepository
	Bins() BinRepository
	BinHistory() BinHistoryRepository
	Shifts() ShiftRepository
	Ledger() ShiftLedgerRepository
	Variances() VarianceRepository
	TicketSerials() TicketSerialRepository
	Audit() AuditLog
	// LockShift serializes shift closing per shift for the duration of the
	// transaction (advisory lock). A second closer for the same shift blocks
	// until the first commits or rolls back.
	LockShift(ctx context.Context, shiftID uuid.UUID) error
	DB() db.DBTX
}

type PackRepository interface {
	Create(ctx context.Context, p *pack.Pack) error
	// Update persists status, bin and lifecycle fields of an existing pack.
	Update(ctx context.Context, p *pack.Pack) error
	FindByID(ctx context.Context, id uuid.UUID) (*pack.Pack, error)
	ExistsByStoreAndNumber(ctx context.Context, storeID uuid.UUID, packNumber string) (bool, error)
	FindActiveByBin(ctx context.Context, binID uuid.UUID) (*pack.Pack, error)
	// ListDepletedInShift returns packs whose depletion is attributed to the
	// given shift, for implicit closing synthesis.
	ListDepletedInShift(ctx context.Context, shiftID uuid.UUID) ([]*pack.Pack, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GameRepository interface {
	FindByCode(ctx context.Context, code string) (*game.Game, error)
	FindByID(ctx context.Context, id uuid.UUID) (*game.Game, error)
}

type BinRepository interface {
	Create(ctx context.Context, b *bin.Bin) error
	FindByID(ctx context.Context, id uuid.UUID) (*bin.Bin, error)
}

type BinHistoryRepository interface {
	Append(ctx context.Context, rec *BinMovement) (uuid.UUID, error)
	DeleteByPack(ctx context.Context, packID uuid.UUID) error
}

type ShiftRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ShiftSnapshot, error)
	MarkClosed(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ShiftLedgerRepository interface {
	CreateOpening(ctx context.Context, o *shift.Opening) error
	FindOpening(ctx context.Context, shiftID, packID uuid.UUID) (*shift.Opening, error)
	// FindLatestClosing returns the most recent closing recorded for the
	// pack across all shifts, or KindNotFound when the pack has never been
	// closed.
	FindLatestClosing(ctx context.Context, packID uuid.UUID) (*shift.Closing, error)
	CreateClosing(ctx context.Context, c *shift.Closing) error
	ClosingExists(ctx context.Context, shiftID, packID uuid.UUID) (bool, error)
	DeleteByPack(ctx context.Context, packID uuid.UUID) error
	DeleteByShift(ctx context.Context, shiftID uuid.UUID) error
}

type VarianceRepository interface {
	Create(ctx context.Context, v *shift.Variance) error
	FindByID(ctx context.Context, id uuid.UUID) (*shift.Variance, error)
	Update(ctx context.Context, v *shift.Variance) error
	DeleteByPack(ctx context.Context, packID uuid.UUID) error
	DeleteByShift(ctx context.Context, shiftID uuid.UUID) error
}

type TicketSerialRepository interface {
	BulkCreate(ctx context.Context, packID uuid.UUID, serialNumbers []string) error
	// MarkSoldRange stamps sold_at/shift/cashier on every unsold serial of
	// the pack within [from, to] and reports how many rows it touched.
	MarkSoldRange(ctx context.Context, packID uuid.UUID, from, to string, shiftID, cashierID uuid.UUID) (int, error)
	// CountRange reports how many serials of the pack fall in [from, to]
	// and how many of those carry a sold stamp, regardless of which shift
	// sold them.
	CountRange(ctx context.Context, packID uuid.UUID, from, to string) (total, sold int, err error)
	// ClearShiftReferences nulls shift links when a shift is deleted; the
	// serials themselves survive.
	ClearShiftReferences(ctx context.Context, shiftID uuid.UUID) error
	DeleteByPack(ctx context.Context, packID uuid.UUID) error
}

// AuditLog is the sink for change records. The engine emits entries; storage
// format is the sink's concern.
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry) error
}
