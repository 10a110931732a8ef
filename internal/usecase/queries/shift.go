package queries

import (
	"context"
	"time"

	"packtrack/internal/infra"
	"packtrack/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrShiftNotFound    = errs.New("shift not found")
	ErrVarianceNotFound = errs.New("variance not found")
)

// ShiftReportLine is one reconciled pack in the shift report: where it
// started, where it ended and how many tickets that spans.
type ShiftReportLine struct {
	PackID        uuid.UUID  `json:"pack_id"`
	PackNumber    string     `json:"pack_number"`
	GameCode      string     `json:"game_code"`
	GameName      string     `json:"game_name"`
	BinLabel      *string    `json:"bin_label,omitempty"`
	OpeningSerial *string    `json:"opening_serial,omitempty"`
	ClosingSerial string     `json:"closing_serial"`
	EntryMethod   string     `json:"entry_method"`
	IsSystem      bool       `json:"is_system"`
	TicketsSold   int        `json:"tickets_sold"`
	SalesCents    int64      `json:"sales_cents"`
	VarianceID    *uuid.UUID `json:"variance_id,omitempty"`
}

type ShiftReport struct {
	ShiftID       uuid.UUID         `json:"shift_id"`
	StoreID       uuid.UUID         `json:"store_id"`
	OpenedAt      time.Time         `json:"opened_at"`
	ClosedAt      *time.Time        `json:"closed_at,omitempty"`
	Lines         []ShiftReportLine `json:"lines"`
	TotalTickets  int               `json:"total_tickets"`
	TotalCents    int64             `json:"total_cents"`
	OpenVariances int               `json:"open_variances"`
}

type VarianceView struct {
	ID         uuid.UUID  `json:"id"`
	ShiftID    uuid.UUID  `json:"shift_id"`
	PackID     uuid.UUID  `json:"pack_id"`
	PackNumber string     `json:"pack_number"`
	Expected   int        `json:"expected"`
	Actual     int        `json:"actual"`
	Difference int        `json:"difference"`
	Reason     *string    `json:"reason,omitempty"`
	ApprovedBy *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ShiftReadStore interface {
	GetReport(ctx context.Context, shiftID uuid.UUID) (*ShiftReport, error)
	FindVarianceByID(ctx context.Context, id uuid.UUID) (*VarianceView, error)
	FindVariancesByShift(ctx context.Context, shiftID uuid.UUID, onlyOpen bool) ([]*VarianceView, error)
}

type ShiftQueries interface {
	// GetReport assembles the per-pack reconciliation of a shift with sales
	// totals. Works on open shifts too; lines then reflect closings so far.
	GetReport(ctx context.Context, shiftID uuid.UUID) (*ShiftReport, error)
	GetVariance(ctx context.Context, id uuid.UUID) (*VarianceView, error)
	ListVariances(ctx context.Context, shiftID uuid.UUID, onlyOpen bool) ([]*VarianceView, error)
}

type shiftQueriesImpl struct {
	repo ShiftReadStore
}

func NewShiftQueries(repo ShiftReadStore) ShiftQueries {
	return &shiftQueriesImpl{repo: repo}
}

func (q *shiftQueriesImpl) GetReport(ctx context.Context, shiftID uuid.UUID) (*ShiftReport, error) {
	report, err := q.repo.GetReport(ctx, shiftID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return report, nil
}

func (q *shiftQueriesImpl) GetVariance(ctx context.Context, id uuid.UUID) (*VarianceView, error) {
	v, err := q.repo.FindVarianceByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrVarianceNotFound
		}
		return nil, err
	}
	return v, nil
}

func (q *shiftQueriesImpl) ListVariances(ctx context.Context, shiftID uuid.UUID, onlyOpen bool) ([]*VarianceView, error) {
	return q.repo.FindVariancesByShift(ctx, shiftID, onlyOpen)
}
