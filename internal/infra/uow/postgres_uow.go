package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"packtrack/internal/infra/db"
	"packtrack/internal/infra/repository"
	"packtrack/internal/pkg/errs"
	"packtrack/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, u.pool)
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	packRepo         shared.PackRepository
	gameRepo         shared.GameRepository
	binRepo          shared.BinRepository
	binHistoryRepo   shared.BinHistoryRepository
	shiftRepo        shared.ShiftRepository
	ledgerRepo       shared.ShiftLedgerRepository
	varianceRepo     shared.VarianceRepository
	ticketSerialRepo shared.TicketSerialRepository
	auditLog         shared.AuditLog
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Packs() shared.PackRepository {
	if t.packRepo == nil {
		t.packRepo = repository.NewPackRepository(t.dbtx)
	}
	return t.packRepo
}

func (t *pgTx) Games() shared.GameRepository {
	if t.gameRepo == nil {
		t.gameRepo = repository.NewGameRepository(t.dbtx)
	}
	return t.gameRepo
}

func (t *pgTx) Bins() shared.BinRepository {
	if t.binRepo == nil {
		t.binRepo = repository.NewBinRepository(t.dbtx)
	}
	return t.binRepo
}

func (t *pgTx) BinHistory() shared.BinHistoryRepository {
	if t.binHistoryRepo == nil {
		t.binHistoryRepo = repository.NewBinHistoryRepository(t.dbtx)
	}
	return t.binHistoryRepo
}

func (t *pgTx) Shifts() shared.ShiftRepository {
	if t.shiftRepo == nil {
		t.shiftRepo = repository.NewShiftRepository(t.dbtx)
	}
	return t.shiftRepo
}

func (t *pgTx) Ledger() shared.ShiftLedgerRepository {
	if t.ledgerRepo == nil {
		t.ledgerRepo = repository.NewShiftLedgerRepository(t.dbtx)
	}
	return t.ledgerRepo
}

func (t *pgTx) Variances() shared.VarianceRepository {
	if t.varianceRepo == nil {
		t.varianceRepo = repository.NewVarianceRepository(t.dbtx)
	}
	return t.varianceRepo
}

func (t *pgTx) TicketSerials() shared.TicketSerialRepository {
	if t.ticketSerialRepo == nil {
		t.ticketSerialRepo = repository.NewTicketSerialRepository(t.dbtx)
	}
	return t.ticketSerialRepo
}

func (t *pgTx) Audit() shared.AuditLog {
	if t.auditLog == nil {
		t.auditLog = repository.NewAuditLogRepository(t.dbtx)
	}
	return t.auditLog
}

// LockShift takes a transaction-scoped advisory lock keyed on the shift id,
// so concurrent closers of the same shift serialize while different shifts
// proceed in parallel. Released automatically at commit or rollback.
func (t *pgTx) LockShift(ctx context.Context, shiftID uuid.UUID) error {
	if _, err := t.dbtx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey(shiftID)); err != nil {
		return errs.Wrap(err, "failed to acquire shift lock")
	}
	return nil
}

// advisoryLockKey folds a UUID into the int64 keyspace pg advisory locks use.
// Truncating to 8 bytes keeps collisions possible in principle; a collision
// only over-serializes, never under-locks.
func advisoryLockKey(id uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(id[:8]) & 0x7FFFFFFFFFFFFFFF)
}
