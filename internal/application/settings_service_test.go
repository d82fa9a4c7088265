package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSettingsService_UpdateSettings(t *testing.T) {
	t.Parallel()

	t.Run("writes known keys for administrators", func(t *testing.T) {
		t.Parallel()

		repo := newSettingsRepositoryStub()
		audit := &auditRecorderStub{}
		svc := NewSettingsService(repo, audit, time.Now, nil)

		err := svc.UpdateSettings(context.Background(), adminPrincipal(), []Setting{
			{Key: "companyName", Value: "New Name"},
			{Key: "isSsoEnabled", Value: "true"},
		})
		if err != nil {
			t.Fatalf("UpdateSettings failed: %v", err)
		}
		if repo.values["companyName"] != "New Name" || repo.values["isSsoEnabled"] != "true" {
			t.Fatalf("settings not written: %v", repo.values)
		}
		if len(audit.entries) != 1 || audit.entries[0].Action != "settings.update" {
			t.Fatalf("expected settings.update audit entry, got %+v", audit.entries)
		}
	})

	t.Run("rejects unknown keys before writing anything", func(t *testing.T) {
		t.Parallel()

		repo := newSettingsRepositoryStub()
		svc := NewSettingsService(repo, nil, time.Now, nil)

		err := svc.UpdateSettings(context.Background(), adminPrincipal(), []Setting{
			{Key: "companyName", Value: "New Name"},
			{Key: "secretBackdoor", Value: "on"},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(repo.values) != 0 {
			t.Fatalf("expected no writes, got %v", repo.values)
		}
	})

	t.Run("rejects non-administrators", func(t *testing.T) {
		t.Parallel()

		svc := NewSettingsService(newSettingsRepositoryStub(), nil, time.Now, nil)
		err := svc.UpdateSettings(context.Background(), editorPrincipal(), []Setting{{Key: "companyName", Value: "x"}})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuditService_ListAudit(t *testing.T) {
	t.Parallel()

	reader := &auditReaderStub{entries: []AuditEntry{{Action: "user.create"}}}
	svc := NewAuditService(reader)

	if _, err := svc.ListAudit(context.Background(), editorPrincipal(), 0); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-admin, got %v", err)
	}

	entries, err := svc.ListAudit(context.Background(), adminPrincipal(), 0)
	if err != nil {
		t.Fatalf("ListAudit failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if reader.lastLimit != defaultAuditLimit {
		t.Fatalf("expected default limit %d, got %d", defaultAuditLimit, reader.lastLimit)
	}
}

// settingsRepositoryStub provides an in-memory SettingsRepository for tests.
type settingsRepositoryStub struct {
	values map[string]string
}

func newSettingsRepositoryStub() *settingsRepositoryStub {
	return &settingsRepositoryStub{values: make(map[string]string)}
}

func (r *settingsRepositoryStub) GetSetting(ctx context.Context, key string) (Setting, error) {
	value, ok := r.values[key]
	if !ok {
		return Setting{}, ErrNotFound
	}
	return Setting{Key: key, Value: value}, nil
}

func (r *settingsRepositoryStub) SetSetting(ctx context.Context, setting Setting) error {
	r.values[setting.Key] = setting.Value
	return nil
}

func (r *settingsRepositoryStub) ListSettings(ctx context.Context) ([]Setting, error) {
	var out []Setting
	for key, value := range r.values {
		out = append(out, Setting{Key: key, Value: value})
	}
	return out, nil
}

// auditReaderStub records the limit passed to ListAudit.
type auditReaderStub struct {
	entries   []AuditEntry
	lastLimit int
}

func (r *auditReaderStub) ListAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	r.lastLimit = limit
	return r.entries, nil
}
