package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/asset-inventory/internal/persistence"
)

// EquipmentRepository implements persistence.EquipmentRepository using SQLite
type EquipmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEquipmentRepository creates a new SQLite equipment repository
func NewEquipmentRepository(pool *ConnectionPool) *EquipmentRepository {
	return &EquipmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const equipmentColumns = `id, asset_tag, name, category, status, assigned_to, purchase_date, warranty_expires, notes, last_checked_at, created_at, updated_at`

// CreateEquipment inserts a new equipment record into the database
func (r *EquipmentRepository) CreateEquipment(ctx context.Context, eq persistence.Equipment) error {
	if eq.ID == "" || eq.AssetTag == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO equipment (` + equipmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		eq.ID,
		eq.AssetTag,
		eq.Name,
		eq.Category,
		eq.Status,
		eq.AssignedTo,
		formatNullableTimestamp(eq.PurchaseDate),
		formatNullableTimestamp(eq.WarrantyExpires),
		eq.Notes,
		formatNullableTimestamp(eq.LastCheckedAt),
		formatTimestamp(eq.CreatedAt),
		formatTimestamp(eq.UpdatedAt),
	)

	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateEquipment updates an existing equipment record
func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, eq persistence.Equipment) error {
	if eq.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE equipment
		SET asset_tag = ?, name = ?, category = ?, status = ?, assigned_to = ?,
			purchase_date = ?, warranty_expires = ?, notes = ?, last_checked_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		eq.AssetTag,
		eq.Name,
		eq.Category,
		eq.Status,
		eq.AssignedTo,
		formatNullableTimestamp(eq.PurchaseDate),
		formatNullableTimestamp(eq.WarrantyExpires),
		eq.Notes,
		formatNullableTimestamp(eq.LastCheckedAt),
		formatTimestamp(eq.UpdatedAt),
		eq.ID,
	)

	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetEquipment retrieves an equipment record by ID
func (r *EquipmentRepository) GetEquipment(ctx context.Context, id string) (persistence.Equipment, error) {
	if id == "" {
		return persistence.Equipment{}, persistence.ErrNotFound
	}

	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = ?`

	row := r.helper.QueryRow(ctx, query, id)
	eq, err := scanEquipment(row.Scan)
	if err != nil {
		return persistence.Equipment{}, r.mapper.MapError(err)
	}
	return eq, nil
}

// ListEquipment returns equipment records matching the filter, ordered by
// asset tag
func (r *EquipmentRepository) ListEquipment(ctx context.Context, filter persistence.EquipmentFilter) ([]persistence.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment`

	var conditions []string
	var args []any
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.AssignedTo != "" {
		conditions = append(conditions, "assigned_to = ?")
		args = append(args, filter.AssignedTo)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY asset_tag ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var items []persistence.Equipment
	for rows.Next() {
		eq, err := scanEquipment(rows.Scan)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		items = append(items, eq)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return items, nil
}

// DeleteEquipment removes an equipment record and its history entries
func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(tx, `DELETE FROM equipment_history WHERE equipment_id = ?`, id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, `DELETE FROM equipment WHERE id = ?`, id)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}

		return nil
	})
}

// AppendHistory records a change made to a piece of equipment
func (r *EquipmentRepository) AppendHistory(ctx context.Context, entry persistence.HistoryEntry) error {
	if entry.EquipmentID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO equipment_history (equipment_id, actor, change_type, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		entry.EquipmentID,
		entry.Actor,
		entry.ChangeType,
		entry.Detail,
		formatTimestamp(entry.CreatedAt),
	)

	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// ListHistory returns history entries for one piece of equipment, newest first
func (r *EquipmentRepository) ListHistory(ctx context.Context, equipmentID string) ([]persistence.HistoryEntry, error) {
	if equipmentID == "" {
		return nil, persistence.ErrNotFound
	}

	query := `
		SELECT id, equipment_id, actor, change_type, detail, created_at
		FROM equipment_history
		WHERE equipment_id = ?
		ORDER BY id DESC
	`

	rows, err := r.helper.Query(ctx, query, equipmentID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.HistoryEntry
	for rows.Next() {
		var entry persistence.HistoryEntry
		var createdAtStr string

		err := rows.Scan(
			&entry.ID,
			&entry.EquipmentID,
			&entry.Actor,
			&entry.ChangeType,
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

// ApplyInventoryCheck updates the status and last-checked timestamp of every
// listed asset and appends one history entry per asset. All writes happen in
// one transaction; any missing asset aborts the whole batch.
func (r *EquipmentRepository) ApplyInventoryCheck(ctx context.Context, items []persistence.InventoryCheckItem, actor string, checkedAt time.Time) error {
	if len(items) == 0 {
		return nil
	}

	checkedAtStr := formatTimestamp(checkedAt)

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, item := range items {
			if item.EquipmentID == "" {
				return persistence.ErrNotFound
			}

			result, err := r.helper.ExecTx(tx, `
				UPDATE equipment
				SET status = ?, last_checked_at = ?, updated_at = ?
				WHERE id = ?
			`, item.Status, checkedAtStr, checkedAtStr, item.EquipmentID)
			if err != nil {
				return r.mapper.MapError(err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return fmt.Errorf("%w: equipment %s", persistence.ErrNotFound, item.EquipmentID)
			}

			detail := "status set to " + item.Status
			if item.Notes != nil && *item.Notes != "" {
				detail += ": " + *item.Notes
			}

			_, err = r.helper.ExecTx(tx, `
				INSERT INTO equipment_history (equipment_id, actor, change_type, detail, created_at)
				VALUES (?, ?, 'inventory_check', ?, ?)
			`, item.EquipmentID, actor, detail, checkedAtStr)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}

		return nil
	})
}

func scanEquipment(scan func(dest ...any) error) (persistence.Equipment, error) {
	var eq persistence.Equipment
	var assignedTo, notes sql.NullString
	var purchaseDate, warrantyExpires, lastCheckedAt sql.NullString
	var createdAtStr, updatedAtStr string

	err := scan(
		&eq.ID,
		&eq.AssetTag,
		&eq.Name,
		&eq.Category,
		&eq.Status,
		&assignedTo,
		&purchaseDate,
		&warrantyExpires,
		&notes,
		&lastCheckedAt,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Equipment{}, err
	}

	if assignedTo.Valid {
		eq.AssignedTo = &assignedTo.String
	}
	if notes.Valid {
		eq.Notes = &notes.String
	}

	if eq.PurchaseDate, err = parseNullableTimestamp(purchaseDate); err != nil {
		return persistence.Equipment{}, fmt.Errorf("failed to parse purchase_date: %w", err)
	}
	if eq.WarrantyExpires, err = parseNullableTimestamp(warrantyExpires); err != nil {
		return persistence.Equipment{}, fmt.Errorf("failed to parse warranty_expires: %w", err)
	}
	if eq.LastCheckedAt, err = parseNullableTimestamp(lastCheckedAt); err != nil {
		return persistence.Equipment{}, fmt.Errorf("failed to parse last_checked_at: %w", err)
	}
	if eq.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return persistence.Equipment{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if eq.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return persistence.Equipment{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return eq, nil
}
