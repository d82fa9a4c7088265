package persistence

import "time"

// User represents an account that can sign in to the inventory service.
type User struct {
	ID           string
	Username     string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         string
	TOTPSecret   string
	TOTPEnabled  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Equipment represents a tracked hardware asset.
type Equipment struct {
	ID              string
	AssetTag        string
	Name            string
	Category        string
	Status          string
	AssignedTo      *string
	PurchaseDate    *time.Time
	WarrantyExpires *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastCheckedAt   *time.Time
}

// License represents a software license pool.
type License struct {
	ID         string
	Product    string
	Vendor     string
	LicenseKey string
	Seats      int
	ExpiresOn  *time.Time
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HistoryEntry records a change applied to a piece of equipment.
type HistoryEntry struct {
	ID          int64
	EquipmentID string
	Actor       string
	ChangeType  string
	Detail      string
	CreatedAt   time.Time
}

// AuditEntry records a mutating action performed through the API.
type AuditEntry struct {
	ID         int64
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Detail     string
	CreatedAt  time.Time
}

// ConfigEntry is a single key/value row in app_config.
type ConfigEntry struct {
	Key   string
	Value string
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
