package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/asset-inventory/internal/persistence"
)

var (
	userCounter      uint64
	equipmentCounter uint64
	licenseCounter   uint64
)

var referenceTime = time.Date(2026, time.February, 3, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// NewUser returns a deterministic persistence user with optional overrides.
func NewUser(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		ID:           id,
		Username:     id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         "viewer",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(u *persistence.User) {
		u.ID = id
	}
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(u *persistence.User) {
		u.Username = username
	}
}

// WithRole overrides the generated role.
func WithRole(role string) UserOption {
	return func(u *persistence.User) {
		u.Role = role
	}
}

// WithPasswordHash overrides the generated password hash.
func WithPasswordHash(hash string) UserOption {
	return func(u *persistence.User) {
		u.PasswordHash = hash
	}
}

// WithTOTP stores an authenticator secret and marks it confirmed when enabled.
func WithTOTP(secret string, enabled bool) UserOption {
	return func(u *persistence.User) {
		u.TOTPSecret = secret
		u.TOTPEnabled = enabled
	}
}

// EquipmentOption configures a generated equipment fixture.
type EquipmentOption func(*persistence.Equipment)

// NewEquipment returns a deterministic persistence equipment record with
// optional overrides.
func NewEquipment(opts ...EquipmentOption) persistence.Equipment {
	idx := atomic.AddUint64(&equipmentCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	eq := persistence.Equipment{
		ID:        fmt.Sprintf("equipment-%03d", idx),
		AssetTag:  fmt.Sprintf("IT-%04d", idx),
		Name:      fmt.Sprintf("Asset %03d", idx),
		Category:  "laptop",
		Status:    "in_stock",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&eq)
	}
	return eq
}

// WithEquipmentID overrides the generated equipment ID.
func WithEquipmentID(id string) EquipmentOption {
	return func(e *persistence.Equipment) {
		e.ID = id
	}
}

// WithAssetTag overrides the generated asset tag.
func WithAssetTag(tag string) EquipmentOption {
	return func(e *persistence.Equipment) {
		e.AssetTag = tag
	}
}

// WithStatus overrides the generated status.
func WithStatus(status string) EquipmentOption {
	return func(e *persistence.Equipment) {
		e.Status = status
	}
}

// WithAssignedTo assigns the asset to a user.
func WithAssignedTo(userID string) EquipmentOption {
	return func(e *persistence.Equipment) {
		e.AssignedTo = &userID
	}
}

// LicenseOption configures a generated license fixture.
type LicenseOption func(*persistence.License)

// NewLicense returns a deterministic persistence license record with optional
// overrides.
func NewLicense(opts ...LicenseOption) persistence.License {
	idx := atomic.AddUint64(&licenseCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	lic := persistence.License{
		ID:         fmt.Sprintf("license-%03d", idx),
		Product:    fmt.Sprintf("Product %03d", idx),
		Vendor:     "Example Vendor",
		LicenseKey: fmt.Sprintf("KEY-%04d", idx),
		Seats:      10,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&lic)
	}
	return lic
}

// WithLicenseID overrides the generated license ID.
func WithLicenseID(id string) LicenseOption {
	return func(l *persistence.License) {
		l.ID = id
	}
}

// WithSeats overrides the generated seat count.
func WithSeats(seats int) LicenseOption {
	return func(l *persistence.License) {
		l.Seats = seats
	}
}

// WithExpiresOn sets the license expiry date.
func WithExpiresOn(expires time.Time) LicenseOption {
	return func(l *persistence.License) {
		l.ExpiresOn = &expires
	}
}
