package sqlite

import (
	"context"
	"fmt"

	"github.com/example/asset-inventory/internal/persistence"
)

// AuditLogRepository implements persistence.AuditLogRepository using SQLite
type AuditLogRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAuditLogRepository creates a new SQLite audit log repository
func NewAuditLogRepository(pool *ConnectionPool) *AuditLogRepository {
	return &AuditLogRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// AppendAudit records a mutating action in the audit trail
func (r *AuditLogRepository) AppendAudit(ctx context.Context, entry persistence.AuditEntry) error {
	if entry.Action == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO audit_log (actor, action, entity_type, entity_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		entry.Actor,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Detail,
		formatTimestamp(entry.CreatedAt),
	)

	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// ListAudit returns the most recent audit entries, newest first. A limit of
// zero or less applies no limit.
func (r *AuditLogRepository) ListAudit(ctx context.Context, limit int) ([]persistence.AuditEntry, error) {
	query := `
		SELECT id, actor, action, entity_type, entity_id, detail, created_at
		FROM audit_log
		ORDER BY id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.AuditEntry
	for rows.Next() {
		var entry persistence.AuditEntry
		var createdAtStr string

		err := rows.Scan(
			&entry.ID,
			&entry.Actor,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Detail,
			&createdAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		if entry.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return entries, nil
}
