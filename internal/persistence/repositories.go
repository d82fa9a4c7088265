package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// EquipmentFilter narrows equipment queries.
type EquipmentFilter struct {
	Status     string
	Category   string
	AssignedTo string
}

// InventoryCheckItem is one per-asset update inside a bulk inventory check.
type InventoryCheckItem struct {
	EquipmentID string
	Status      string
	Notes       *string
}

// EquipmentRepository stores equipment records and their change history.
type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, eq Equipment) error
	UpdateEquipment(ctx context.Context, eq Equipment) error
	GetEquipment(ctx context.Context, id string) (Equipment, error)
	ListEquipment(ctx context.Context, filter EquipmentFilter) ([]Equipment, error)
	DeleteEquipment(ctx context.Context, id string) error

	AppendHistory(ctx context.Context, entry HistoryEntry) error
	ListHistory(ctx context.Context, equipmentID string) ([]HistoryEntry, error)

	// ApplyInventoryCheck updates every listed asset and appends one history
	// entry per asset inside a single transaction. A failure for any item
	// aborts all writes for the batch.
	ApplyInventoryCheck(ctx context.Context, items []InventoryCheckItem, actor string, checkedAt time.Time) error
}

// LicenseRepository exposes CRUD operations for software licenses.
type LicenseRepository interface {
	CreateLicense(ctx context.Context, lic License) error
	UpdateLicense(ctx context.Context, lic License) error
	GetLicense(ctx context.Context, id string) (License, error)
	ListLicenses(ctx context.Context) ([]License, error)
	DeleteLicense(ctx context.Context, id string) error
}

// AuditLogRepository stores the append-only audit trail.
type AuditLogRepository interface {
	AppendAudit(ctx context.Context, entry AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]AuditEntry, error)
}

// AppConfigRepository stores application-wide key/value settings.
type AppConfigRepository interface {
	GetConfig(ctx context.Context, key string) (ConfigEntry, error)
	SetConfig(ctx context.Context, entry ConfigEntry) error
	ListConfig(ctx context.Context) ([]ConfigEntry, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
