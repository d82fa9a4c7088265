package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// EquipmentRepository captures the persistence operations needed by the
// equipment service.
type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, eq Equipment) (Equipment, error)
	GetEquipment(ctx context.Context, id string) (Equipment, error)
	UpdateEquipment(ctx context.Context, eq Equipment) (Equipment, error)
	DeleteEquipment(ctx context.Context, id string) error
	ListEquipment(ctx context.Context, filter EquipmentFilter) ([]Equipment, error)

	AppendHistory(ctx context.Context, entry HistoryEntry) error
	ListHistory(ctx context.Context, equipmentID string) ([]HistoryEntry, error)

	ApplyInventoryCheck(ctx context.Context, items []InventoryCheckItem, actor string, checkedAt time.Time) error
}

// EquipmentService orchestrates validation, authorization, and persistence
// for hardware assets.
type EquipmentService struct {
	equipment   EquipmentRepository
	audit       AuditRecorder
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEquipmentService wires dependencies for the equipment service.
func NewEquipmentService(equipment EquipmentRepository, audit AuditRecorder, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EquipmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EquipmentService{
		equipment:   equipment,
		audit:       audit,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EquipmentService) recordAudit(ctx context.Context, actor, action, entityID, detail string) {
	if s.audit == nil {
		return
	}
	entry := AuditEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "equipment",
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  s.now(),
	}
	if err := s.audit.AppendAudit(ctx, entry); err != nil {
		serviceLogger(ctx, s.logger, "EquipmentService", action).
			ErrorContext(ctx, "failed to append audit entry", "error", err)
	}
}

func (s *EquipmentService) appendHistory(ctx context.Context, equipmentID, actor, changeType, detail string) {
	entry := HistoryEntry{
		EquipmentID: equipmentID,
		Actor:       actor,
		ChangeType:  changeType,
		Detail:      detail,
		CreatedAt:   s.now(),
	}
	if err := s.equipment.AppendHistory(ctx, entry); err != nil {
		serviceLogger(ctx, s.logger, "EquipmentService", changeType).
			ErrorContext(ctx, "failed to append history entry", "error", err, "equipment_id", equipmentID)
	}
}

// CreateEquipment validates input and registers a new asset for editors.
func (s *EquipmentService) CreateEquipment(ctx context.Context, params CreateEquipmentParams) (Equipment, error) {
	if s == nil {
		return Equipment{}, fmt.Errorf("EquipmentService is nil")
	}
	if !params.Principal.Role.canEdit() {
		return Equipment{}, ErrUnauthorized
	}
	if s.equipment == nil {
		return Equipment{}, fmt.Errorf("equipment repository not configured")
	}

	normalized := normalizeEquipmentInput(params.Input)
	if normalized.Status == "" {
		normalized.Status = "in_stock"
	}
	vErr := validateEquipmentInput(normalized)
	if vErr.HasErrors() {
		return Equipment{}, vErr
	}

	now := s.now()
	eq := Equipment{
		ID:              s.idGenerator(),
		AssetTag:        normalized.AssetTag,
		Name:            normalized.Name,
		Category:        normalized.Category,
		Status:          normalized.Status,
		AssignedTo:      normalized.AssignedTo,
		PurchaseDate:    normalized.PurchaseDate,
		WarrantyExpires: normalized.WarrantyExpires,
		Notes:           normalized.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	persisted, err := s.equipment.CreateEquipment(ctx, eq)
	if err != nil {
		return Equipment{}, err
	}

	s.appendHistory(ctx, persisted.ID, params.Principal.UserID, "create", "registered "+persisted.AssetTag)
	s.recordAudit(ctx, params.Principal.UserID, "equipment.create", persisted.ID, "registered "+persisted.AssetTag)
	return persisted, nil
}

// UpdateEquipment validates input and updates an existing asset for editors.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, params UpdateEquipmentParams) (Equipment, error) {
	if s == nil {
		return Equipment{}, fmt.Errorf("EquipmentService is nil")
	}
	if !params.Principal.Role.canEdit() {
		return Equipment{}, ErrUnauthorized
	}
	if s.equipment == nil {
		return Equipment{}, fmt.Errorf("equipment repository not configured")
	}

	existing, err := s.equipment.GetEquipment(ctx, params.EquipmentID)
	if err != nil {
		return Equipment{}, err
	}

	normalized := normalizeEquipmentInput(params.Input)
	if normalized.Status == "" {
		normalized.Status = existing.Status
	}
	vErr := validateEquipmentInput(normalized)
	if vErr.HasErrors() {
		return Equipment{}, vErr
	}

	updated := existing
	updated.AssetTag = normalized.AssetTag
	updated.Name = normalized.Name
	updated.Category = normalized.Category
	updated.Status = normalized.Status
	updated.AssignedTo = normalized.AssignedTo
	updated.PurchaseDate = normalized.PurchaseDate
	updated.WarrantyExpires = normalized.WarrantyExpires
	updated.Notes = normalized.Notes
	updated.UpdatedAt = s.now()

	persisted, err := s.equipment.UpdateEquipment(ctx, updated)
	if err != nil {
		return Equipment{}, err
	}

	s.appendHistory(ctx, persisted.ID, params.Principal.UserID, "update", describeEquipmentChange(existing, persisted))
	s.recordAudit(ctx, params.Principal.UserID, "equipment.update", persisted.ID, "updated "+persisted.AssetTag)
	return persisted, nil
}

// DeleteEquipment removes an asset for editors.
func (s *EquipmentService) DeleteEquipment(ctx context.Context, principal Principal, equipmentID string) error {
	if s == nil {
		return fmt.Errorf("EquipmentService is nil")
	}
	if !principal.Role.canEdit() {
		return ErrUnauthorized
	}
	if s.equipment == nil {
		return fmt.Errorf("equipment repository not configured")
	}

	if err := s.equipment.DeleteEquipment(ctx, equipmentID); err != nil {
		return err
	}

	s.recordAudit(ctx, principal.UserID, "equipment.delete", equipmentID, "")
	return nil
}

// GetEquipment returns a single asset. All authenticated roles may read.
func (s *EquipmentService) GetEquipment(ctx context.Context, principal Principal, equipmentID string) (Equipment, error) {
	if s == nil {
		return Equipment{}, fmt.Errorf("EquipmentService is nil")
	}
	if !principal.Role.Valid() {
		return Equipment{}, ErrUnauthorized
	}
	if s.equipment == nil {
		return Equipment{}, fmt.Errorf("equipment repository not configured")
	}

	return s.equipment.GetEquipment(ctx, equipmentID)
}

// ListEquipment returns assets matching the filter. All authenticated roles
// may read.
func (s *EquipmentService) ListEquipment(ctx context.Context, params ListEquipmentParams) ([]Equipment, error) {
	if s == nil {
		return nil, fmt.Errorf("EquipmentService is nil")
	}
	if !params.Principal.Role.Valid() {
		return nil, ErrUnauthorized
	}
	if s.equipment == nil {
		return nil, nil
	}

	return s.equipment.ListEquipment(ctx, params.Filter)
}

// ListHistory returns the change history of a single asset, newest first.
func (s *EquipmentService) ListHistory(ctx context.Context, principal Principal, equipmentID string) ([]HistoryEntry, error) {
	if s == nil {
		return nil, fmt.Errorf("EquipmentService is nil")
	}
	if !principal.Role.Valid() {
		return nil, ErrUnauthorized
	}
	if s.equipment == nil {
		return nil, nil
	}

	if _, err := s.equipment.GetEquipment(ctx, equipmentID); err != nil {
		return nil, err
	}
	return s.equipment.ListHistory(ctx, equipmentID)
}

// InventoryCheck applies a bulk status update in one transaction. Every item
// must reference a known asset and a known status or the whole batch is
// rejected.
func (s *EquipmentService) InventoryCheck(ctx context.Context, params InventoryCheckParams) error {
	if s == nil {
		return fmt.Errorf("EquipmentService is nil")
	}
	if !params.Principal.Role.canEdit() {
		return ErrUnauthorized
	}
	if s.equipment == nil {
		return fmt.Errorf("equipment repository not configured")
	}

	vErr := &ValidationError{}
	if len(params.Items) == 0 {
		vErr.add("items", "at least one item is required")
	}
	for i, item := range params.Items {
		if item.EquipmentID == "" {
			vErr.add(fmt.Sprintf("items[%d].equipment_id", i), "equipment id is required")
		}
		if !slices.Contains(EquipmentStatuses, item.Status) {
			vErr.add(fmt.Sprintf("items[%d].status", i), "unknown status")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}

	checkedAt := s.now()
	if err := s.equipment.ApplyInventoryCheck(ctx, params.Items, params.Principal.UserID, checkedAt); err != nil {
		return err
	}

	s.recordAudit(ctx, params.Principal.UserID, "equipment.inventory_check", "",
		fmt.Sprintf("checked %d assets", len(params.Items)))
	return nil
}

func normalizeEquipmentInput(input EquipmentInput) EquipmentInput {
	out := input
	out.AssetTag = strings.TrimSpace(input.AssetTag)
	out.Name = strings.TrimSpace(input.Name)
	out.Category = strings.TrimSpace(input.Category)
	out.Status = strings.TrimSpace(input.Status)
	if input.AssignedTo != nil {
		trimmed := strings.TrimSpace(*input.AssignedTo)
		if trimmed == "" {
			out.AssignedTo = nil
		} else {
			out.AssignedTo = &trimmed
		}
	}
	return out
}

func validateEquipmentInput(input EquipmentInput) *ValidationError {
	vErr := &ValidationError{}

	if input.AssetTag == "" {
		vErr.add("asset_tag", "asset tag is required")
	}
	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if !slices.Contains(EquipmentStatuses, input.Status) {
		vErr.add("status", "unknown status")
	}
	if input.PurchaseDate != nil && input.WarrantyExpires != nil && input.WarrantyExpires.Before(*input.PurchaseDate) {
		vErr.add("warranty_expires", "warranty cannot expire before purchase")
	}

	return vErr
}

func describeEquipmentChange(before, after Equipment) string {
	var changes []string
	if before.Status != after.Status {
		changes = append(changes, "status "+before.Status+" -> "+after.Status)
	}
	if !equalStringPtr(before.AssignedTo, after.AssignedTo) {
		changes = append(changes, "assignment changed")
	}
	if before.AssetTag != after.AssetTag {
		changes = append(changes, "asset tag changed")
	}
	if len(changes) == 0 {
		return "updated"
	}
	return strings.Join(changes, "; ")
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
