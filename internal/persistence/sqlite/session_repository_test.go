package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/asset-inventory/internal/persistence"
)

func testSession(id string, expiresAt time.Time) persistence.Session {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return persistence.Session{
		ID:        id,
		UserID:    "user1",
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	expires := time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)
	created, err := store.Sessions.CreateSession(ctx, testSession("sess1", expires))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if created.ID != "sess1" {
		t.Errorf("Expected ID 'sess1', got '%s'", created.ID)
	}

	retrieved, err := store.Sessions.GetSession(ctx, "sess1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !retrieved.ExpiresAt.Equal(expires) {
		t.Error("ExpiresAt did not round-trip")
	}
	if retrieved.RevokedAt != nil {
		t.Error("Expected new session to be unrevoked")
	}
}

func TestSessionRepository_RevokeSession(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	expires := time.Now().UTC().Add(time.Hour)
	if _, err := store.Sessions.CreateSession(ctx, testSession("sess1", expires)); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	revokedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	revoked, err := store.Sessions.RevokeSession(ctx, "sess1", revokedAt)
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(revokedAt) {
		t.Error("RevokedAt was not stamped")
	}

	// Revoking again keeps the original timestamp.
	again, err := store.Sessions.RevokeSession(ctx, "sess1", revokedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Second RevokeSession failed: %v", err)
	}
	if again.RevokedAt == nil || !again.RevokedAt.Equal(revokedAt) {
		t.Error("Second revoke changed the original timestamp")
	}
}

func TestSessionRepository_RevokeSession_NotFound(t *testing.T) {
	store := setupStoreTest(t)

	_, err := store.Sessions.RevokeSession(context.Background(), "ghost", time.Now().UTC())
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_DeleteExpiredSessions(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := store.Sessions.CreateSession(ctx, testSession("old", now.Add(-time.Hour))); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := store.Sessions.CreateSession(ctx, testSession("fresh", now.Add(time.Hour))); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := store.Sessions.DeleteExpiredSessions(ctx, now); err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}

	if _, err := store.Sessions.GetSession(ctx, "old"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected expired session removed, got %v", err)
	}
	if _, err := store.Sessions.GetSession(ctx, "fresh"); err != nil {
		t.Fatalf("Expected fresh session to remain: %v", err)
	}
}
