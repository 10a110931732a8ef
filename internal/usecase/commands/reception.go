package commands

import (
	"context"
	"fmt"
	"log/slog"

	"packtrack/internal/domain/pack"
	"packtrack/internal/domain/serial"
	"packtrack/internal/infra"
	"packtrack/internal/pkg/clock"
	"packtrack/internal/pkg/config"
	"packtrack/internal/pkg/errs"
	"packtrack/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBatchTooLarge           = errs.New("reception batch exceeds maximum size")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

const (
	reasonInvalidFormat = "Invalid serial number format"

	// A same-number pack committed by a concurrent batch between our
	// duplicate check and insert. The whole transaction is retried; the
	// next pass sees the rival row and reports an ordinary duplicate.
	maxConflictRetries = 3
)

type BatchError struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type CreatedPack struct {
	ID          uuid.UUID `json:"id"`
	PackNumber  string    `json:"pack_number"`
	GameCode    string    `json:"game_code"`
	SerialStart string    `json:"serial_start"`
	SerialEnd   string    `json:"serial_end"`
}

type BatchResult struct {
	Created    []CreatedPack `json:"created"`
	Duplicates []string      `json:"duplicates"`
	Errors     []BatchError  `json:"errors"`
}

type ReceptionCommands interface {
	// ReceiveBatch ingests serialized codes in order. Per-code rejections
	// (bad format, unknown game, duplicate) are collected and returned;
	// pack creation is all-or-nothing for the batch.
	ReceiveBatch(ctx context.Context, storeID uuid.UUID, codes []string, receivedBy uuid.UUID) (*BatchResult, error)
}

type receptionCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	cfg   config.ReceptionConfig
}

func NewReceptionCommands(uow shared.UnitOfWork, clk clock.Clock, cfg config.ReceptionConfig) ReceptionCommands {
	return &receptionCommandsImpl{uow: uow, clock: clk, cfg: cfg}
}

func (c *receptionCommandsImpl) ReceiveBatch(
	ctx context.Context,
	storeID uuid.UUID,
	codes []string,
	receivedBy uuid.UUID,
) (*BatchResult, error) {
	if len(codes) > c.cfg.MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	var result *BatchResult
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		result, err = c.runBatch(ctx, storeID, codes, receivedBy)
		if err == nil {
			return result, nil
		}
		if !infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		slog.Warn("pack number conflict with concurrent batch, retrying",
			"store_id", storeID.String(), "attempt", attempt+1)
	}
	return nil, errs.Mark(err, ErrDatabaseOperationFailed)
}

func (c *receptionCommandsImpl) runBatch(
	ctx context.Context,
	storeID uuid.UUID,
	codes []string,
	receivedBy uuid.UUID,
) (*BatchResult, error) {
	result := &BatchResult{
		Created:    []CreatedPack{},
		Duplicates: []string{},
		Errors:     []BatchError{},
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		seen := make(map[string]struct{}, len(codes))

		for _, raw := range codes {
			code, parseErr := serial.ParseCode(raw)
			if parseErr != nil {
				result.Errors = append(result.Errors, BatchError{Code: raw, Reason: reasonInvalidFormat})
				continue
			}

			g, gameErr := tx.Games().FindByCode(ctx, code.GameCode())
			if gameErr != nil {
				if infra.IsKind(gameErr, infra.KindNotFound) {
					result.Errors = append(result.Errors, BatchError{
						Code:   raw,
						Reason: fmt.Sprintf("Game code %s not found in database.", code.GameCode()),
					})
					continue
				}
				return gameErr
			}

			// In-batch duplicates first: these rows are not committed yet,
			// so the persisted check below cannot see them.
			if _, dup := seen[code.PackNumber()]; dup {
				result.Duplicates = append(result.Duplicates, raw)
				continue
			}

			exists, existsErr := tx.Packs().ExistsByStoreAndNumber(ctx, storeID, code.PackNumber())
			if existsErr != nil {
				return existsErr
			}
			if exists {
				result.Duplicates = append(result.Duplicates, raw)
				continue
			}

			size := g.PackSizeOrDefault(c.cfg.DefaultPackSize)
			end, rangeErr := code.Segment().Advance(size - 1)
			if rangeErr != nil {
				result.Errors = append(result.Errors, BatchError{
					Code:   raw,
					Reason: fmt.Sprintf("Serial segment %s exceeds pack bounds for a %d-ticket pack.", code.Segment().String(), size),
				})
				continue
			}

			p, packErr := pack.NewPack(storeID, g.ID(), code.PackNumber(), code.Segment(), end, c.clock.Now())
			if packErr != nil {
				result.Errors = append(result.Errors, BatchError{Code: raw, Reason: reasonInvalidFormat})
				continue
			}

			// A 23505 here is the concurrent-batch race; it aborts the whole
			// transaction and the caller retries. Nothing partial persists.
			if createErr := tx.Packs().Create(ctx, p); createErr != nil {
				return createErr
			}
			seen[code.PackNumber()] = struct{}{}

			if auditErr := tx.Audit().Record(ctx, shared.AuditEntry{
				Table:    "packs",
				RecordID: p.ID(),
				Action:   shared.AuditActionCreate,
				NewValues: map[string]any{
					"pack_number":  p.PackNumber(),
					"status":       string(p.Status()),
					"serial_start": p.SerialStart().String(),
					"serial_end":   p.SerialEnd().String(),
				},
				UserID: receivedBy,
			}); auditErr != nil {
				return auditErr
			}

			result.Created = append(result.Created, CreatedPack{
				ID:          p.ID(),
				PackNumber:  p.PackNumber(),
				GameCode:    g.Code(),
				SerialStart: p.SerialStart().String(),
				SerialEnd:   p.SerialEnd().String(),
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
