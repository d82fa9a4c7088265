package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SettingsRepository captures the persistence operations for application-wide
// configuration.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (Setting, error)
	SetSetting(ctx context.Context, setting Setting) error
	ListSettings(ctx context.Context) ([]Setting, error)
}

// knownSettings enumerates the keys the settings API accepts.
var knownSettings = map[string]struct{}{
	"companyName":  {},
	"isSsoEnabled": {},
}

// SettingsService reads and updates application-wide configuration.
type SettingsService struct {
	settings SettingsRepository
	audit    AuditRecorder
	now      func() time.Time
	logger   *slog.Logger
}

// NewSettingsService wires dependencies for the settings service.
func NewSettingsService(settings SettingsRepository, audit AuditRecorder, now func() time.Time, logger *slog.Logger) *SettingsService {
	if now == nil {
		now = time.Now
	}
	return &SettingsService{
		settings: settings,
		audit:    audit,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

// ListSettings returns all settings. All authenticated roles may read.
func (s *SettingsService) ListSettings(ctx context.Context, principal Principal) ([]Setting, error) {
	if s == nil {
		return nil, fmt.Errorf("SettingsService is nil")
	}
	if !principal.Role.Valid() {
		return nil, ErrUnauthorized
	}
	if s.settings == nil {
		return nil, nil
	}

	return s.settings.ListSettings(ctx)
}

// UpdateSettings writes the provided entries for administrators. Unknown keys
// are rejected before any write happens.
func (s *SettingsService) UpdateSettings(ctx context.Context, principal Principal, settings []Setting) error {
	if s == nil {
		return fmt.Errorf("SettingsService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.settings == nil {
		return fmt.Errorf("settings repository not configured")
	}

	vErr := &ValidationError{}
	for _, setting := range settings {
		key := strings.TrimSpace(setting.Key)
		if _, ok := knownSettings[key]; !ok {
			vErr.add(key, "unknown setting")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}

	for _, setting := range settings {
		setting.Key = strings.TrimSpace(setting.Key)
		if err := s.settings.SetSetting(ctx, setting); err != nil {
			return err
		}
	}

	if s.audit != nil {
		entry := AuditEntry{
			Actor:      principal.UserID,
			Action:     "settings.update",
			EntityType: "settings",
			Detail:     fmt.Sprintf("updated %d settings", len(settings)),
			CreatedAt:  s.now(),
		}
		if err := s.audit.AppendAudit(ctx, entry); err != nil {
			serviceLogger(ctx, s.logger, "SettingsService", "UpdateSettings").
				ErrorContext(ctx, "failed to append audit entry", "error", err)
		}
	}

	return nil
}
