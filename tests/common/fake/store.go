//go:build unit

// Package fake provides an in-memory unit of work for command tests. It
// mirrors the repository contracts closely enough to exercise command logic,
// including duplicate-key classification on unique pairs.
package fake

import (
	"context"
	"sort"
	"time"

	"packtrack/internal/domain/bin"
	"packtrack/internal/domain/game"
	"packtrack/internal/domain/pack"
	"packtrack/internal/domain/shift"
	"packtrack/internal/infra"
	"packtrack/internal/infra/db"
	"packtrack/internal/pkg/errs"
	"packtrack/internal/usecase/shared"

	"github.com/google/uuid"
)

type Store struct {
	Packs       map[uuid.UUID]*pack.Pack
	Games       map[uuid.UUID]*game.Game
	GamesByCode map[string]*game.Game
	Bins        map[uuid.UUID]*bin.Bin
	Shifts      map[uuid.UUID]*shared.ShiftSnapshot
	Openings    []*shift.Opening
	Closings    []*shift.Closing
	Variances   map[uuid.UUID]*shift.Variance
	Movements   []*shared.BinMovement
	Serials     map[uuid.UUID][]*TicketSerial
	AuditTrail  []shared.AuditEntry

	LockedShifts []uuid.UUID

	// FailPackCreateOnce injects a duplicate-key error on the next pack
	// insert, simulating a concurrent batch winning the unique race.
	FailPackCreateOnce bool
}

type TicketSerial struct {
	SerialNumber string
	Sold         bool
	ShiftID      *uuid.UUID
	CashierID    *uuid.UUID
}

func NewStore() *Store {
	return &Store{
		Packs:       map[uuid.UUID]*pack.Pack{},
		Games:       map[uuid.UUID]*game.Game{},
		GamesByCode: map[string]*game.Game{},
		Bins:        map[uuid.UUID]*bin.Bin{},
		Shifts:      map[uuid.UUID]*shared.ShiftSnapshot{},
		Variances:   map[uuid.UUID]*shift.Variance{},
		Serials:     map[uuid.UUID][]*TicketSerial{},
	}
}

func (s *Store) AddGame(g *game.Game) {
	s.Games[g.ID()] = g
	s.GamesByCode[g.Code()] = g
}

func (s *Store) AddPack(p *pack.Pack)              { s.Packs[p.ID()] = p }
func (s *Store) AddBin(b *bin.Bin)                 { s.Bins[b.ID()] = b }
func (s *Store) AddShift(sh *shared.ShiftSnapshot) { s.Shifts[sh.ID] = sh }
func (s *Store) AddVariance(v *shift.Variance)     { s.Variances[v.ID()] = v }

// UoW runs the callback directly against the store. Rollback is not
// simulated; tests assert on returned errors, not on partial state.
type UoW struct {
	Store *Store
}

func NewUoW(store *Store) *UoW {
	return &UoW{Store: store}
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &fakeTx{store: u.Store})
}

func (u *UoW) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

type fakeTx struct {
	store *Store
}

func (t *fakeTx) Packs() shared.PackRepository { return &packRepo{t.store} }

func (t *fakeTx) Games() shared.GameRepository { return &gameRepo{t.store} }

func (t *fakeTx) Bins() shared.BinRepository { return &binRepo{t.store} }

func (t *fakeTx) BinHistory() shared.BinHistoryRepository { return &binHistoryRepo{t.store} }

func (t *fakeTx) Shifts() shared.ShiftRepository { return &shiftRepo{t.store} }

func (t *fakeTx) Ledger() shared.ShiftLedgerRepository { return &ledgerRepo{t.store} }

func (t *fakeTx) Variances() shared.VarianceRepository { return &varianceRepo{t.store} }

func (t *fakeTx) TicketSerials() shared.TicketSerialRepository { return &ticketSerialRepo{t.store} }

func (t *fakeTx) Audit() shared.AuditLog { return &auditRepo{t.store} }

func (t *fakeTx) DB() db.DBTX { return nil }

func (t *fakeTx) LockShift(ctx context.Context, shiftID uuid.UUID) error {
	t.store.LockedShifts = append(t.store.LockedShifts, shiftID)
	return nil
}

func notFound(what string) error {
	return infra.WrapRepoErr(what+" not found", errs.New("no rows"), infra.KindNotFound)
}

func duplicate(what string) error {
	return infra.WrapRepoErr(what+" already exists", errs.New("unique violation"), infra.KindDuplicateKey)
}

type packRepo struct{ s *Store }

func (r *packRepo) Create(ctx context.Context, p *pack.Pack) error {
	if r.s.FailPackCreateOnce {
		r.s.FailPackCreateOnce = false
		return duplicate("pack")
	}
	for _, existing := range r.s.Packs {
		if existing.StoreID() == p.StoreID() && existing.PackNumber() == p.PackNumber() {
			return duplicate("pack")
		}
	}
	r.s.Packs[p.ID()] = p
	return nil
}

func (r *packRepo) Update(ctx context.Context, p *pack.Pack) error {
	if _, ok := r.s.Packs[p.ID()]; !ok {
		return notFound("pack")
	}
	r.s.Packs[p.ID()] = p
	return nil
}

func (r *packRepo) FindByID(ctx context.Context, id uuid.UUID) (*pack.Pack, error) {
	p, ok := r.s.Packs[id]
	if !ok {
		return nil, notFound("pack")
	}
	return p, nil
}

func (r *packRepo) ExistsByStoreAndNumber(ctx context.Context, storeID uuid.UUID, packNumber string) (bool, error) {
	for _, p := range r.s.Packs {
		if p.StoreID() == storeID && p.PackNumber() == packNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *packRepo) FindActiveByBin(ctx context.Context, binID uuid.UUID) (*pack.Pack, error) {
	for _, p := range r.s.Packs {
		if p.Status() == pack.StatusActive && p.CurrentBin() != nil && *p.CurrentBin() == binID {
			return p, nil
		}
	}
	return nil, notFound("pack")
}

func (r *packRepo) ListDepletedInShift(ctx context.Context, shiftID uuid.UUID) ([]*pack.Pack, error) {
	var out []*pack.Pack
	for _, p := range r.s.Packs {
		if p.IsDepletedInShift(shiftID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PackNumber() < out[j].PackNumber() })
	return out, nil
}

func (r *packRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.s.Packs[id]; !ok {
		return notFound("pack")
	}
	delete(r.s.Packs, id)
	return nil
}

type gameRepo struct{ s *Store }

func (r *gameRepo) FindByCode(ctx context.Context, code string) (*game.Game, error) {
	g, ok := r.s.GamesByCode[code]
	if !ok {
		return nil, notFound("game")
	}
	return g, nil
}

func (r *gameRepo) FindByID(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	g, ok := r.s.Games[id]
	if !ok {
		return nil, notFound("game")
	}
	return g, nil
}

type binRepo struct{ s *Store }

func (r *binRepo) Create(ctx context.Context, b *bin.Bin) error {
	r.s.Bins[b.ID()] = b
	return nil
}

func (r *binRepo) FindByID(ctx context.Context, id uuid.UUID) (*bin.Bin, error) {
	b, ok := r.s.Bins[id]
	if !ok {
		return nil, notFound("bin")
	}
	return b, nil
}

type binHistoryRepo struct{ s *Store }

func (r *binHistoryRepo) Append(ctx context.Context, rec *shared.BinMovement) (uuid.UUID, error) {
	r.s.Movements = append(r.s.Movements, rec)
	return uuid.New(), nil
}

func (r *binHistoryRepo) DeleteByPack(ctx context.Context, packID uuid.UUID) error {
	kept := r.s.Movements[:0]
	for _, m := range r.s.Movements {
		if m.PackID != packID {
			kept = append(kept, m)
		}
	}
	r.s.Movements = kept
	return nil
}

type shiftRepo struct{ s *Store }

func (r *shiftRepo) FindByID(ctx context.Context, id uuid.UUID) (*shared.ShiftSnapshot, error) {
	sh, ok := r.s.Shifts[id]
	if !ok {
		return nil, notFound("shift")
	}
	return sh, nil
}

func (r *shiftRepo) MarkClosed(ctx context.Context, id uuid.UUID) error {
	sh, ok := r.s.Shifts[id]
	if !ok {
		return notFound("shift")
	}
	closedAt := time.Now()
	sh.ClosedAt = &closedAt
	return nil
}

func (r *shiftRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.s.Shifts[id]; !ok {
		return notFound("shift")
	}
	delete(r.s.Shifts, id)
	return nil
}

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) CreateOpening(ctx context.Context, o *shift.Opening) error {
	for _, existing := range r.s.Openings {
		if existing.ShiftID() == o.ShiftID() && existing.PackID() == o.PackID() {
			return duplicate("opening")
		}
	}
	r.s.Openings = append(r.s.Openings, o)
	return nil
}

func (r *ledgerRepo) FindOpening(ctx context.Context, shiftID, packID uuid.UUID) (*shift.Opening, error) {
	for _, o := range r.s.Openings {
		if o.ShiftID() == shiftID && o.PackID() == packID {
			return o, nil
		}
	}
	return nil, notFound("opening")
}

func (r *ledgerRepo) FindLatestClosing(ctx context.Context, packID uuid.UUID) (*shift.Closing, error) {
	var latest *shift.Closing
	for _, c := range r.s.Closings {
		if c.PackID() != packID {
			continue
		}
		if latest == nil || c.CreatedAt().After(latest.CreatedAt()) {
			latest = c
		}
	}
	if latest == nil {
		return nil, notFound("closing")
	}
	return latest, nil
}

func (r *ledgerRepo) CreateClosing(ctx context.Context, c *shift.Closing) error {
	for _, existing := range r.s.Closings {
		if existing.ShiftID() == c.ShiftID() && existing.PackID() == c.PackID() {
			return duplicate("closing")
		}
	}
	r.s.Closings = append(r.s.Closings, c)
	return nil
}

func (r *ledgerRepo) ClosingExists(ctx context.Context, shiftID, packID uuid.UUID) (bool, error) {
	for _, c := range r.s.Closings {
		if c.ShiftID() == shiftID && c.PackID() == packID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ledgerRepo) DeleteByPack(ctx context.Context, packID uuid.UUID) error {
	r.s.Openings = filterOpenings(r.s.Openings, func(o *shift.Opening) bool { return o.PackID() != packID })
	r.s.Closings = filterClosings(r.s.Closings, func(c *shift.Closing) bool { return c.PackID() != packID })
	return nil
}

func (r *ledgerRepo) DeleteByShift(ctx context.Context, shiftID uuid.UUID) error {
	r.s.Openings = filterOpenings(r.s.Openings, func(o *shift.Opening) bool { return o.ShiftID() != shiftID })
	r.s.Closings = filterClosings(r.s.Closings, func(c *shift.Closing) bool { return c.ShiftID() != shiftID })
	return nil
}

func filterOpenings(in []*shift.Opening, keep func(*shift.Opening) bool) []*shift.Opening {
	out := in[:0]
	for _, o := range in {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func filterClosings(in []*shift.Closing, keep func(*shift.Closing) bool) []*shift.Closing {
	out := in[:0]
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

type varianceRepo struct{ s *Store }

func (r *varianceRepo) Create(ctx context.Context, v *shift.Variance) error {
	r.s.Variances[v.ID()] = v
	return nil
}

func (r *varianceRepo) FindByID(ctx context.Context, id uuid.UUID) (*shift.Variance, error) {
	v, ok := r.s.Variances[id]
	if !ok {
		return nil, notFound("variance")
	}
	return v, nil
}

func (r *varianceRepo) Update(ctx context.Context, v *shift.Variance) error {
	if _, ok := r.s.Variances[v.ID()]; !ok {
		return notFound("variance")
	}
	r.s.Variances[v.ID()] = v
	return nil
}

func (r *varianceRepo) DeleteByPack(ctx context.Context, packID uuid.UUID) error {
	for id, v := range r.s.Variances {
		if v.PackID() == packID {
			delete(r.s.Variances, id)
		}
	}
	return nil
}

func (r *varianceRepo) DeleteByShift(ctx context.Context, shiftID uuid.UUID) error {
	for id, v := range r.s.Variances {
		if v.ShiftID() == shiftID {
			delete(r.s.Variances, id)
		}
	}
	return nil
}

type ticketSerialRepo struct{ s *Store }

func (r *ticketSerialRepo) BulkCreate(ctx context.Context, packID uuid.UUID, serialNumbers []string) error {
	rows := make([]*TicketSerial, 0, len(serialNumbers))
	for _, n := range serialNumbers {
		rows = append(rows, &TicketSerial{SerialNumber: n})
	}
	r.s.Serials[packID] = append(r.s.Serials[packID], rows...)
	return nil
}

// MarkSoldRange compares the 3-digit position suffix of each serial number
// against [from, to], mirroring the SQL range predicate.
func (r *ticketSerialRepo) MarkSoldRange(ctx context.Context, packID uuid.UUID, from, to string, shiftID, cashierID uuid.UUID) (int, error) {
	marked := 0
	for _, ts := range r.s.Serials[packID] {
		pos := ts.SerialNumber[len(ts.SerialNumber)-3:]
		if ts.Sold || pos < from || pos > to {
			continue
		}
		ts.Sold = true
		ts.ShiftID = &shiftID
		ts.CashierID = &cashierID
		marked++
	}
	return marked, nil
}

func (r *ticketSerialRepo) CountRange(ctx context.Context, packID uuid.UUID, from, to string) (int, int, error) {
	total, sold := 0, 0
	for _, ts := range r.s.Serials[packID] {
		pos := ts.SerialNumber[len(ts.SerialNumber)-3:]
		if pos < from || pos > to {
			continue
		}
		total++
		if ts.Sold {
			sold++
		}
	}
	return total, sold, nil
}

func (r *ticketSerialRepo) ClearShiftReferences(ctx context.Context, shiftID uuid.UUID) error {
	for _, rows := range r.s.Serials {
		for _, ts := range rows {
			if ts.ShiftID != nil && *ts.ShiftID == shiftID {
				ts.ShiftID = nil
			}
		}
	}
	return nil
}

func (r *ticketSerialRepo) DeleteByPack(ctx context.Context, packID uuid.UUID) error {
	delete(r.s.Serials, packID)
	return nil
}

type auditRepo struct{ s *Store }

func (r *auditRepo) Record(ctx context.Context, entry shared.AuditEntry) error {
	r.s.AuditTrail = append(r.s.AuditTrail, entry)
	return nil
}
