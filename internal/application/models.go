package application

import "time"

// Role determines which operations a principal may invoke.
type Role string

const (
	// RoleAdmin may manage users, settings, and all inventory data.
	RoleAdmin Role = "admin"
	// RoleEditor may create and modify inventory data.
	RoleEditor Role = "editor"
	// RoleViewer may only read inventory data.
	RoleViewer Role = "viewer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// canEdit reports whether the role may mutate inventory data.
func (r Role) canEdit() bool {
	return r == RoleAdmin || r == RoleEditor
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal holds the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Username    string
	Email       string
	DisplayName string
	Password    string
	Role        Role
}

// User represents an account exposed by the application services.
type User struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
	Role        Role
	TOTPEnabled bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
	TOTPSecret   string
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user. A blank password
// keeps the existing one.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// EquipmentInput captures caller provided equipment fields.
type EquipmentInput struct {
	AssetTag        string
	Name            string
	Category        string
	Status          string
	AssignedTo      *string
	PurchaseDate    *time.Time
	WarrantyExpires *time.Time
	Notes           *string
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
	LastCheckedAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EquipmentStatuses lists the states an asset may be in.
var EquipmentStatuses = []string{"in_stock", "assigned", "in_repair", "retired", "missing"}

// CreateEquipmentParams wraps the data required to register equipment.
type CreateEquipmentParams struct {
	Principal Principal
	Input     EquipmentInput
}

// UpdateEquipmentParams wraps the data required to update equipment.
type UpdateEquipmentParams struct {
	Principal   Principal
	EquipmentID string
	Input       EquipmentInput
}

// EquipmentFilter narrows equipment listings.
type EquipmentFilter struct {
	Status     string
	Category   string
	AssignedTo string
}

// ListEquipmentParams wraps the data required to list equipment.
type ListEquipmentParams struct {
	Principal Principal
	Filter    EquipmentFilter
}

// HistoryEntry records one change applied to a piece of equipment.
type HistoryEntry struct {
	ID          int64
	EquipmentID string
	Actor       string
	ChangeType  string
	Detail      string
	CreatedAt   time.Time
}

// InventoryCheckItem is one asset's outcome inside a bulk inventory check.
type InventoryCheckItem struct {
	EquipmentID string
	Status      string
	Notes       *string
}

// InventoryCheckParams wraps the data required for a bulk inventory check.
type InventoryCheckParams struct {
	Principal Principal
	Items     []InventoryCheckItem
}

// LicenseInput captures caller provided license fields.
type LicenseInput struct {
	Product    string
	Vendor     string
	LicenseKey string
	Seats      int
	ExpiresOn  *time.Time
	Notes      *string
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

// CreateLicenseParams wraps the data required to register a license.
type CreateLicenseParams struct {
	Principal Principal
	Input     LicenseInput
}

// UpdateLicenseParams wraps the data required to update a license.
type UpdateLicenseParams struct {
	Principal Principal
	LicenseID string
	Input     LicenseInput
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

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// LoginParams captures the data required to authenticate a user.
type LoginParams struct {
	Username string
	Password string
	TOTPCode string
}

// LoginResult captures the outcome of a successful authentication attempt.
type LoginResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// TwoFactorEnrollment carries the provisioning data for an authenticator app.
type TwoFactorEnrollment struct {
	Secret string
	URL    string
}

// Setting is one application-wide configuration entry.
type Setting struct {
	Key   string
	Value string
}
