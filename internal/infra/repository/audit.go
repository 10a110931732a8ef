package repository

import (
	"context"
	"encoding/json"

	"packtrack/internal/infra"
	"packtrack/internal/infra/db"
	"packtrack/internal/usecase/shared"

	"github.com/google/uuid"
)

// AuditLogRepository is the persistence sink for change records. Old and new
// values land in jsonb columns; nil maps stay NULL.
type AuditLogRepository struct {
	db db.DBTX
}

func NewAuditLogRepository(dbtx db.DBTX) *AuditLogRepository {
	return &AuditLogRepository{db: dbtx}
}

const recordAuditSQL = `
INSERT INTO audit_logs (id, table_name, record_id, action, old_values, new_values, user_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())`

func (r *AuditLogRepository) Record(ctx context.Context, entry shared.AuditEntry) error {
	oldValues, err := marshalValues(entry.OldValues)
	if err != nil {
		return infra.WrapRepoErr("failed to marshal audit old values", err)
	}
	newValues, err := marshalValues(entry.NewValues)
	if err != nil {
		return infra.WrapRepoErr("failed to marshal audit new values", err)
	}

	_, err = r.db.Exec(ctx, recordAuditSQL,
		uuid.New(), entry.Table, entry.RecordID, entry.Action, oldValues, newValues, entry.UserID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to record audit entry", err)
	}
	return nil
}

func marshalValues(values map[string]any) ([]byte, error) {
	if values == nil {
		return nil, nil
	}
	return json.Marshal(values)
}
