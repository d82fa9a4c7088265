package sqlite

import (
	"context"

	"github.com/example/asset-inventory/internal/persistence"
)

// AppConfigRepository implements persistence.AppConfigRepository using SQLite
type AppConfigRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAppConfigRepository creates a new SQLite application config repository
func NewAppConfigRepository(pool *ConnectionPool) *AppConfigRepository {
	return &AppConfigRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// GetConfig retrieves a single configuration entry by key
func (r *AppConfigRepository) GetConfig(ctx context.Context, key string) (persistence.ConfigEntry, error) {
	if key == "" {
		return persistence.ConfigEntry{}, persistence.ErrNotFound
	}

	var entry persistence.ConfigEntry
	err := r.helper.QueryRow(ctx, `SELECT key, value FROM app_config WHERE key = ?`, key).
		Scan(&entry.Key, &entry.Value)
	if err != nil {
		return persistence.ConfigEntry{}, r.mapper.MapError(err)
	}

	return entry, nil
}

// SetConfig inserts or replaces a configuration entry
func (r *AppConfigRepository) SetConfig(ctx context.Context, entry persistence.ConfigEntry) error {
	if entry.Key == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO app_config (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`

	if _, err := r.helper.Exec(ctx, query, entry.Key, entry.Value); err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// ListConfig returns all configuration entries ordered by key
func (r *AppConfigRepository) ListConfig(ctx context.Context) ([]persistence.ConfigEntry, error) {
	rows, err := r.helper.Query(ctx, `SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.ConfigEntry
	for rows.Next() {
		var entry persistence.ConfigEntry
		if err := rows.Scan(&entry.Key, &entry.Value); err != nil {
			return nil, r.mapper.MapError(err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return entries, nil
}
