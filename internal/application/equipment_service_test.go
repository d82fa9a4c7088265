package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func validEquipmentInput() EquipmentInput {
	return EquipmentInput{
		AssetTag: "AT-0001",
		Name:     "ThinkPad X1",
		Category: "laptop",
	}
}

func newEquipmentServiceForTest(repo *equipmentRepositoryStub, audit *auditRecorderStub) *EquipmentService {
	var counter int
	var recorder AuditRecorder
	if audit != nil {
		recorder = audit
	}
	return NewEquipmentService(repo, recorder, func() string {
		counter++
		return fmt.Sprintf("eq-%d", counter)
	}, time.Now, nil)
}

func TestEquipmentService_CreateEquipment(t *testing.T) {
	t.Parallel()

	t.Run("registers assets with a default status and history entry", func(t *testing.T) {
		t.Parallel()

		repo := newEquipmentRepositoryStub()
		audit := &auditRecorderStub{}
		svc := newEquipmentServiceForTest(repo, audit)

		eq, err := svc.CreateEquipment(context.Background(), CreateEquipmentParams{Principal: editorPrincipal(), Input: validEquipmentInput()})
		if err != nil {
			t.Fatalf("CreateEquipment failed: %v", err)
		}
		if eq.Status != "in_stock" {
			t.Fatalf("expected default status in_stock, got %q", eq.Status)
		}
		if len(repo.history[eq.ID]) != 1 || repo.history[eq.ID][0].ChangeType != "create" {
			t.Fatalf("expected one create history entry, got %+v", repo.history[eq.ID])
		}
		if len(audit.entries) != 1 || audit.entries[0].Action != "equipment.create" {
			t.Fatalf("expected equipment.create audit entry, got %+v", audit.entries)
		}
	})

	t.Run("rejects viewers", func(t *testing.T) {
		t.Parallel()

		svc := newEquipmentServiceForTest(newEquipmentRepositoryStub(), nil)
		_, err := svc.CreateEquipment(context.Background(), CreateEquipmentParams{
			Principal: Principal{UserID: "v", Role: RoleViewer},
			Input:     validEquipmentInput(),
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects warranty expiring before purchase", func(t *testing.T) {
		t.Parallel()

		svc := newEquipmentServiceForTest(newEquipmentRepositoryStub(), nil)
		input := validEquipmentInput()
		purchase := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		warranty := purchase.Add(-24 * time.Hour)
		input.PurchaseDate = &purchase
		input.WarrantyExpires = &warranty

		_, err := svc.CreateEquipment(context.Background(), CreateEquipmentParams{Principal: editorPrincipal(), Input: input})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["warranty_expires"]; !ok {
			t.Fatalf("expected warranty_expires field error, got %v", vErr.FieldErrors)
		}
	})
}

func TestEquipmentService_UpdateEquipment(t *testing.T) {
	t.Parallel()

	repo := newEquipmentRepositoryStub()
	svc := newEquipmentServiceForTest(repo, nil)

	eq, err := svc.CreateEquipment(context.Background(), CreateEquipmentParams{Principal: editorPrincipal(), Input: validEquipmentInput()})
	if err != nil {
		t.Fatalf("CreateEquipment failed: %v", err)
	}

	input := validEquipmentInput()
	input.Status = "assigned"
	assignee := "user-9"
	input.AssignedTo = &assignee

	updated, err := svc.UpdateEquipment(context.Background(), UpdateEquipmentParams{Principal: editorPrincipal(), EquipmentID: eq.ID, Input: input})
	if err != nil {
		t.Fatalf("UpdateEquipment failed: %v", err)
	}
	if updated.Status != "assigned" || updated.AssignedTo == nil {
		t.Fatalf("update did not apply: %+v", updated)
	}

	history := repo.history[eq.ID]
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[1].ChangeType != "update" {
		t.Fatalf("expected update history entry, got %q", history[1].ChangeType)
	}
}

func TestEquipmentService_ListHistory_UnknownAsset(t *testing.T) {
	t.Parallel()

	svc := newEquipmentServiceForTest(newEquipmentRepositoryStub(), nil)
	_, err := svc.ListHistory(context.Background(), editorPrincipal(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEquipmentService_InventoryCheck(t *testing.T) {
	t.Parallel()

	t.Run("applies the batch through the repository", func(t *testing.T) {
		t.Parallel()

		repo := newEquipmentRepositoryStub()
		audit := &auditRecorderStub{}
		svc := newEquipmentServiceForTest(repo, audit)

		eq, err := svc.CreateEquipment(context.Background(), CreateEquipmentParams{Principal: editorPrincipal(), Input: validEquipmentInput()})
		if err != nil {
			t.Fatalf("CreateEquipment failed: %v", err)
		}

		params := InventoryCheckParams{
			Principal: editorPrincipal(),
			Items:     []InventoryCheckItem{{EquipmentID: eq.ID, Status: "missing"}},
		}
		if err := svc.InventoryCheck(context.Background(), params); err != nil {
			t.Fatalf("InventoryCheck failed: %v", err)
		}
		if repo.equipment[eq.ID].Status != "missing" {
			t.Fatalf("expected status missing, got %q", repo.equipment[eq.ID].Status)
		}
		if len(audit.entries) != 2 || audit.entries[1].Action != "equipment.inventory_check" {
			t.Fatalf("expected inventory_check audit entry, got %+v", audit.entries)
		}
	})

	t.Run("rejects empty batches and unknown statuses", func(t *testing.T) {
		t.Parallel()

		svc := newEquipmentServiceForTest(newEquipmentRepositoryStub(), nil)

		err := svc.InventoryCheck(context.Background(), InventoryCheckParams{Principal: editorPrincipal()})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error for empty batch, got %v", err)
		}

		err = svc.InventoryCheck(context.Background(), InventoryCheckParams{
			Principal: editorPrincipal(),
			Items:     []InventoryCheckItem{{EquipmentID: "eq-1", Status: "exploded"}},
		})
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error for bad status, got %v", err)
		}
	})
}

// equipmentRepositoryStub provides an in-memory EquipmentRepository for tests.
type equipmentRepositoryStub struct {
	equipment map[string]Equipment
	history   map[string][]HistoryEntry
	err       error
}

func newEquipmentRepositoryStub() *equipmentRepositoryStub {
	return &equipmentRepositoryStub{
		equipment: make(map[string]Equipment),
		history:   make(map[string][]HistoryEntry),
	}
}

func (r *equipmentRepositoryStub) CreateEquipment(ctx context.Context, eq Equipment) (Equipment, error) {
	if r.err != nil {
		return Equipment{}, r.err
	}
	r.equipment[eq.ID] = eq
	return eq, nil
}

func (r *equipmentRepositoryStub) GetEquipment(ctx context.Context, id string) (Equipment, error) {
	eq, ok := r.equipment[id]
	if !ok {
		return Equipment{}, ErrNotFound
	}
	return eq, nil
}

func (r *equipmentRepositoryStub) UpdateEquipment(ctx context.Context, eq Equipment) (Equipment, error) {
	if _, ok := r.equipment[eq.ID]; !ok {
		return Equipment{}, ErrNotFound
	}
	r.equipment[eq.ID] = eq
	return eq, nil
}

func (r *equipmentRepositoryStub) DeleteEquipment(ctx context.Context, id string) error {
	if _, ok := r.equipment[id]; !ok {
		return ErrNotFound
	}
	delete(r.equipment, id)
	delete(r.history, id)
	return nil
}

func (r *equipmentRepositoryStub) ListEquipment(ctx context.Context, filter EquipmentFilter) ([]Equipment, error) {
	var out []Equipment
	for _, eq := range r.equipment {
		if filter.Status != "" && eq.Status != filter.Status {
			continue
		}
		if filter.Category != "" && eq.Category != filter.Category {
			continue
		}
		out = append(out, eq)
	}
	return out, nil
}

func (r *equipmentRepositoryStub) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	r.history[entry.EquipmentID] = append(r.history[entry.EquipmentID], entry)
	return nil
}

func (r *equipmentRepositoryStub) ListHistory(ctx context.Context, equipmentID string) ([]HistoryEntry, error) {
	return r.history[equipmentID], nil
}

func (r *equipmentRepositoryStub) ApplyInventoryCheck(ctx context.Context, items []InventoryCheckItem, actor string, checkedAt time.Time) error {
	for _, item := range items {
		eq, ok := r.equipment[item.EquipmentID]
		if !ok {
			return ErrNotFound
		}
		eq.Status = item.Status
		checked := checkedAt
		eq.LastCheckedAt = &checked
		r.equipment[item.EquipmentID] = eq
		r.history[item.EquipmentID] = append(r.history[item.EquipmentID], HistoryEntry{
			EquipmentID: item.EquipmentID,
			Actor:       actor,
			ChangeType:  "inventory_check",
			CreatedAt:   checkedAt,
		})
	}
	return nil
}
