package testfixtures

import (
	"context"
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the reference time", func(t *testing.T) {
		t.Parallel()

		clock := NewClock(time.Time{})
		if !clock.Now().Equal(ReferenceTime()) {
			t.Fatalf("expected reference time, got %v", clock.Now())
		}
	})

	t.Run("advance moves the clock forward", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
		clock := NewClock(start)
		updated := clock.Advance(90 * time.Minute)

		expected := start.Add(90 * time.Minute)
		if !updated.Equal(expected) || !clock.Now().Equal(expected) {
			t.Fatalf("expected %v, got %v", expected, updated)
		}
	})
}

func TestIDGenerator(t *testing.T) {
	t.Parallel()

	generator := NewIDGenerator("asset")
	if got := generator.Next(); got != "asset-1" {
		t.Fatalf("expected asset-1, got %q", got)
	}
	if got := generator.Next(); got != "asset-2" {
		t.Fatalf("expected asset-2, got %q", got)
	}

	generator.Reset()
	if got := generator.Next(); got != "asset-1" {
		t.Fatalf("expected asset-1 after reset, got %q", got)
	}
}

func TestFixtures(t *testing.T) {
	t.Parallel()

	t.Run("options override generated values", func(t *testing.T) {
		t.Parallel()

		user := NewUser(WithUsername("sato"), WithRole("admin"), WithTOTP("SECRET", true))
		if user.Username != "sato" || user.Role != "admin" {
			t.Fatalf("unexpected user fixture: %+v", user)
		}
		if !user.TOTPEnabled || user.TOTPSecret != "SECRET" {
			t.Fatalf("expected enabled totp, got %+v", user)
		}

		eq := NewEquipment(WithStatus("assigned"), WithAssignedTo(user.ID))
		if eq.Status != "assigned" || eq.AssignedTo == nil || *eq.AssignedTo != user.ID {
			t.Fatalf("unexpected equipment fixture: %+v", eq)
		}

		expiry := time.Date(2027, time.January, 31, 0, 0, 0, 0, time.UTC)
		lic := NewLicense(WithSeats(5), WithExpiresOn(expiry))
		if lic.Seats != 5 || lic.ExpiresOn == nil || !lic.ExpiresOn.Equal(expiry) {
			t.Fatalf("unexpected license fixture: %+v", lic)
		}
	})

	t.Run("generated identifiers are unique", func(t *testing.T) {
		t.Parallel()

		first := NewUser()
		second := NewUser()
		if first.ID == second.ID || first.Username == second.Username {
			t.Fatalf("expected unique fixtures, got %q and %q", first.ID, second.ID)
		}
	})
}

func TestSQLiteHarness(t *testing.T) {
	t.Parallel()

	harness := NewSQLiteHarness(t)
	ctx := context.Background()

	user := NewUser()
	if err := harness.Store.Users.CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to store fixture user: %v", err)
	}

	eq := NewEquipment()
	if err := harness.Store.Equipment.CreateEquipment(ctx, eq); err != nil {
		t.Fatalf("failed to store fixture equipment: %v", err)
	}

	stored, err := harness.Store.Equipment.GetEquipment(ctx, eq.ID)
	if err != nil {
		t.Fatalf("failed to read fixture equipment: %v", err)
	}
	if stored.AssetTag != eq.AssetTag {
		t.Fatalf("expected asset tag %q, got %q", eq.AssetTag, stored.AssetTag)
	}

	// The migration seed is present alongside fixture data.
	admin, err := harness.Store.Users.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("failed to read seeded admin: %v", err)
	}
	if admin.Role != "admin" {
		t.Fatalf("expected admin role, got %q", admin.Role)
	}
}
