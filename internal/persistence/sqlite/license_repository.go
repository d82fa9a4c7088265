package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/asset-inventory/internal/persistence"
)

// LicenseRepository implements persistence.LicenseRepository using SQLite
type LicenseRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewLicenseRepository creates a new SQLite license repository
func NewLicenseRepository(pool *ConnectionPool) *LicenseRepository {
	return &LicenseRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const licenseColumns = `id, product, vendor, license_key, seats, expires_on, notes, created_at, updated_at`

// CreateLicense inserts a new license record into the database
func (r *LicenseRepository) CreateLicense(ctx context.Context, lic persistence.License) error {
	if lic.ID == "" || lic.Product == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO licenses (` + licenseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		lic.ID,
		lic.Product,
		lic.Vendor,
		lic.LicenseKey,
		lic.Seats,
		formatNullableTimestamp(lic.ExpiresOn),
		lic.Notes,
		formatTimestamp(lic.CreatedAt),
		formatTimestamp(lic.UpdatedAt),
	)

	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateLicense updates an existing license record
func (r *LicenseRepository) UpdateLicense(ctx context.Context, lic persistence.License) error {
	if lic.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE licenses
		SET product = ?, vendor = ?, license_key = ?, seats = ?, expires_on = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		lic.Product,
		lic.Vendor,
		lic.LicenseKey,
		lic.Seats,
		formatNullableTimestamp(lic.ExpiresOn),
		lic.Notes,
		formatTimestamp(lic.UpdatedAt),
		lic.ID,
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

// GetLicense retrieves a license record by ID
func (r *LicenseRepository) GetLicense(ctx context.Context, id string) (persistence.License, error) {
	if id == "" {
		return persistence.License{}, persistence.ErrNotFound
	}

	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE id = ?`

	row := r.helper.QueryRow(ctx, query, id)
	lic, err := scanLicense(row.Scan)
	if err != nil {
		return persistence.License{}, r.mapper.MapError(err)
	}
	return lic, nil
}

// ListLicenses returns all license records ordered by product then ID
func (r *LicenseRepository) ListLicenses(ctx context.Context) ([]persistence.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses ORDER BY product ASC, id ASC`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var licenses []persistence.License
	for rows.Next() {
		lic, err := scanLicense(rows.Scan)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		licenses = append(licenses, lic)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return licenses, nil
}

// DeleteLicense removes a license record by ID
func (r *LicenseRepository) DeleteLicense(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM licenses WHERE id = ?`, id)
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

func scanLicense(scan func(dest ...any) error) (persistence.License, error) {
	var lic persistence.License
	var expiresOn, notes sql.NullString
	var createdAtStr, updatedAtStr string

	err := scan(
		&lic.ID,
		&lic.Product,
		&lic.Vendor,
		&lic.LicenseKey,
		&lic.Seats,
		&expiresOn,
		&notes,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.License{}, err
	}

	if notes.Valid {
		lic.Notes = &notes.String
	}
	if lic.ExpiresOn, err = parseNullableTimestamp(expiresOn); err != nil {
		return persistence.License{}, fmt.Errorf("failed to parse expires_on: %w", err)
	}
	if lic.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return persistence.License{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if lic.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return persistence.License{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return lic, nil
}
