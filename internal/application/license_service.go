package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// LicenseRepository captures the persistence operations needed by the license
// service.
type LicenseRepository interface {
	CreateLicense(ctx context.Context, lic License) (License, error)
	GetLicense(ctx context.Context, id string) (License, error)
	UpdateLicense(ctx context.Context, lic License) (License, error)
	DeleteLicense(ctx context.Context, id string) error
	ListLicenses(ctx context.Context) ([]License, error)
}

// LicenseService orchestrates validation, authorization, and persistence for
// software licenses.
type LicenseService struct {
	licenses    LicenseRepository
	audit       AuditRecorder
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewLicenseService wires dependencies for the license service.
func NewLicenseService(licenses LicenseRepository, audit AuditRecorder, idGenerator func() string, now func() time.Time, logger *slog.Logger) *LicenseService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &LicenseService{
		licenses:    licenses,
		audit:       audit,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *LicenseService) recordAudit(ctx context.Context, actor, action, entityID, detail string) {
	if s.audit == nil {
		return
	}
	entry := AuditEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "license",
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  s.now(),
	}
	if err := s.audit.AppendAudit(ctx, entry); err != nil {
		serviceLogger(ctx, s.logger, "LicenseService", action).
			ErrorContext(ctx, "failed to append audit entry", "error", err)
	}
}

// CreateLicense validates input and registers a new license for editors.
func (s *LicenseService) CreateLicense(ctx context.Context, params CreateLicenseParams) (License, error) {
	if s == nil {
		return License{}, fmt.Errorf("LicenseService is nil")
	}
	if !params.Principal.Role.canEdit() {
		return License{}, ErrUnauthorized
	}
	if s.licenses == nil {
		return License{}, fmt.Errorf("license repository not configured")
	}

	normalized := normalizeLicenseInput(params.Input)
	vErr := validateLicenseInput(normalized)
	if vErr.HasErrors() {
		return License{}, vErr
	}

	now := s.now()
	lic := License{
		ID:         s.idGenerator(),
		Product:    normalized.Product,
		Vendor:     normalized.Vendor,
		LicenseKey: normalized.LicenseKey,
		Seats:      normalized.Seats,
		ExpiresOn:  normalized.ExpiresOn,
		Notes:      normalized.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	persisted, err := s.licenses.CreateLicense(ctx, lic)
	if err != nil {
		return License{}, err
	}

	s.recordAudit(ctx, params.Principal.UserID, "license.create", persisted.ID, "registered "+persisted.Product)
	return persisted, nil
}

// UpdateLicense validates input and updates an existing license for editors.
func (s *LicenseService) UpdateLicense(ctx context.Context, params UpdateLicenseParams) (License, error) {
	if s == nil {
		return License{}, fmt.Errorf("LicenseService is nil")
	}
	if !params.Principal.Role.canEdit() {
		return License{}, ErrUnauthorized
	}
	if s.licenses == nil {
		return License{}, fmt.Errorf("license repository not configured")
	}

	existing, err := s.licenses.GetLicense(ctx, params.LicenseID)
	if err != nil {
		return License{}, err
	}

	normalized := normalizeLicenseInput(params.Input)
	vErr := validateLicenseInput(normalized)
	if vErr.HasErrors() {
		return License{}, vErr
	}

	updated := existing
	updated.Product = normalized.Product
	updated.Vendor = normalized.Vendor
	updated.LicenseKey = normalized.LicenseKey
	updated.Seats = normalized.Seats
	updated.ExpiresOn = normalized.ExpiresOn
	updated.Notes = normalized.Notes
	updated.UpdatedAt = s.now()

	persisted, err := s.licenses.UpdateLicense(ctx, updated)
	if err != nil {
		return License{}, err
	}

	s.recordAudit(ctx, params.Principal.UserID, "license.update", persisted.ID, "updated "+persisted.Product)
	return persisted, nil
}

// DeleteLicense removes a license for editors.
func (s *LicenseService) DeleteLicense(ctx context.Context, principal Principal, licenseID string) error {
	if s == nil {
		return fmt.Errorf("LicenseService is nil")
	}
	if !principal.Role.canEdit() {
		return ErrUnauthorized
	}
	if s.licenses == nil {
		return fmt.Errorf("license repository not configured")
	}

	if err := s.licenses.DeleteLicense(ctx, licenseID); err != nil {
		return err
	}

	s.recordAudit(ctx, principal.UserID, "license.delete", licenseID, "")
	return nil
}

// GetLicense returns a single license. All authenticated roles may read.
func (s *LicenseService) GetLicense(ctx context.Context, principal Principal, licenseID string) (License, error) {
	if s == nil {
		return License{}, fmt.Errorf("LicenseService is nil")
	}
	if !principal.Role.Valid() {
		return License{}, ErrUnauthorized
	}
	if s.licenses == nil {
		return License{}, fmt.Errorf("license repository not configured")
	}

	return s.licenses.GetLicense(ctx, licenseID)
}

// ListLicenses returns all licenses. All authenticated roles may read.
func (s *LicenseService) ListLicenses(ctx context.Context, principal Principal) ([]License, error) {
	if s == nil {
		return nil, fmt.Errorf("LicenseService is nil")
	}
	if !principal.Role.Valid() {
		return nil, ErrUnauthorized
	}
	if s.licenses == nil {
		return nil, nil
	}

	return s.licenses.ListLicenses(ctx)
}

func normalizeLicenseInput(input LicenseInput) LicenseInput {
	out := input
	out.Product = strings.TrimSpace(input.Product)
	out.Vendor = strings.TrimSpace(input.Vendor)
	out.LicenseKey = strings.TrimSpace(input.LicenseKey)
	return out
}

func validateLicenseInput(input LicenseInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Product == "" {
		vErr.add("product", "product is required")
	}
	if input.Seats < 1 {
		vErr.add("seats", "seats must be at least 1")
	}

	return vErr
}
