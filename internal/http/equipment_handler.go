package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/asset-inventory/internal/application"
)

type equipmentService interface {
	CreateEquipment(ctx context.Context, params application.CreateEquipmentParams) (application.Equipment, error)
	UpdateEquipment(ctx context.Context, params application.UpdateEquipmentParams) (application.Equipment, error)
	DeleteEquipment(ctx context.Context, principal application.Principal, equipmentID string) error
	GetEquipment(ctx context.Context, principal application.Principal, equipmentID string) (application.Equipment, error)
	ListEquipment(ctx context.Context, params application.ListEquipmentParams) ([]application.Equipment, error)
	ListHistory(ctx context.Context, principal application.Principal, equipmentID string) ([]application.HistoryEntry, error)
	InventoryCheck(ctx context.Context, params application.InventoryCheckParams) error
}

type EquipmentHandler struct {
	service   equipmentService
	responder responder
	logger    *slog.Logger
}

func NewEquipmentHandler(service equipmentService, logger *slog.Logger) *EquipmentHandler {
	base := defaultLogger(logger)
	return &EquipmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EquipmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EquipmentHandler", operation, attrs...)
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req equipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode equipment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	input, vErr := req.toInput()
	if vErr != nil {
		logger.ErrorContext(r.Context(), "equipment payload rejected", "error", vErr, "error_kind", application.ErrorKind(vErr))
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	equipment, err := h.service.CreateEquipment(r.Context(), application.CreateEquipmentParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "equipment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("equipment_id", equipment.ID).InfoContext(r.Context(), "equipment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, equipmentResponse{Equipment: toEquipmentDTO(equipment)})
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	equipmentID, ok := EquipmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(equipmentID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing equipment id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEquipmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req equipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "equipment_id", equipmentID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode equipment update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "equipment_id", equipmentID)

	input, vErr := req.toInput()
	if vErr != nil {
		logger.ErrorContext(r.Context(), "equipment payload rejected", "error", vErr, "error_kind", application.ErrorKind(vErr))
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	equipment, err := h.service.UpdateEquipment(r.Context(), application.UpdateEquipmentParams{
		Principal:   principal,
		EquipmentID: equipmentID,
		Input:       input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "equipment update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "equipment updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, equipmentResponse{Equipment: toEquipmentDTO(equipment)})
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	equipmentID, ok := EquipmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(equipmentID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing equipment id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEquipmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "equipment_id", equipmentID)
	if err := h.service.DeleteEquipment(r.Context(), principal, equipmentID); err != nil {
		logger.ErrorContext(r.Context(), "equipment delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "equipment deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	equipmentID, ok := EquipmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(equipmentID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing equipment id for fetch")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEquipmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "equipment_id", equipmentID)
	equipment, err := h.service.GetEquipment(r.Context(), principal, equipmentID)
	if err != nil {
		logger.ErrorContext(r.Context(), "equipment fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, equipmentResponse{Equipment: toEquipmentDTO(equipment)})
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	filter := application.EquipmentFilter{
		Status:     strings.TrimSpace(query.Get("status")),
		Category:   strings.TrimSpace(query.Get("category")),
		AssignedTo: strings.TrimSpace(query.Get("assigned_to")),
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	items, err := h.service.ListEquipment(r.Context(), application.ListEquipmentParams{
		Principal: principal,
		Filter:    filter,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "equipment list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(items)).InfoContext(r.Context(), "equipment listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEquipmentResponse{Equipment: toEquipmentDTOs(items)})
}

func (h *EquipmentHandler) History(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	equipmentID, ok := EquipmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(equipmentID) == "" {
		h.log(r.Context(), "History", "error_kind", "bad_request").ErrorContext(r.Context(), "missing equipment id for history")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEquipmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "History", "principal_id", principal.UserID, "equipment_id", equipmentID)
	entries, err := h.service.ListHistory(r.Context(), principal, equipmentID)
	if err != nil {
		logger.ErrorContext(r.Context(), "equipment history failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, historyResponse{History: toHistoryDTOs(entries)})
}

func (h *EquipmentHandler) InventoryCheck(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req inventoryCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "InventoryCheck", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode inventory check request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "InventoryCheck", "principal_id", principal.UserID, "item_count", len(req.Items))

	items := make([]application.InventoryCheckItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, application.InventoryCheckItem{
			EquipmentID: strings.TrimSpace(item.EquipmentID),
			Status:      strings.TrimSpace(item.Status),
			Notes:       item.Notes,
		})
	}

	if err := h.service.InventoryCheck(r.Context(), application.InventoryCheckParams{
		Principal: principal,
		Items:     items,
	}); err != nil {
		logger.ErrorContext(r.Context(), "inventory check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "inventory check recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type equipmentRequest struct {
	AssetTag        string  `json:"asset_tag"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Status          string  `json:"status"`
	AssignedTo      *string `json:"assigned_to"`
	PurchaseDate    *string `json:"purchase_date"`
	WarrantyExpires *string `json:"warranty_expires"`
	Notes           *string `json:"notes"`
}

func (r equipmentRequest) toInput() (application.EquipmentInput, *application.ValidationError) {
	fieldErrors := map[string]string{}

	purchaseDate, err := parseDatePtr(r.PurchaseDate)
	if err != nil {
		fieldErrors["purchase_date"] = "must be a date in YYYY-MM-DD format"
	}
	warrantyExpires, err := parseDatePtr(r.WarrantyExpires)
	if err != nil {
		fieldErrors["warranty_expires"] = "must be a date in YYYY-MM-DD format"
	}

	if len(fieldErrors) > 0 {
		return application.EquipmentInput{}, &application.ValidationError{FieldErrors: fieldErrors}
	}

	return application.EquipmentInput{
		AssetTag:        strings.TrimSpace(r.AssetTag),
		Name:            strings.TrimSpace(r.Name),
		Category:        strings.TrimSpace(r.Category),
		Status:          strings.TrimSpace(r.Status),
		AssignedTo:      r.AssignedTo,
		PurchaseDate:    purchaseDate,
		WarrantyExpires: warrantyExpires,
		Notes:           r.Notes,
	}, nil
}

type equipmentResponse struct {
	Equipment equipmentDTO `json:"equipment"`
}

type listEquipmentResponse struct {
	Equipment []equipmentDTO `json:"equipment"`
}

type historyResponse struct {
	History []historyDTO `json:"history"`
}

type inventoryCheckRequest struct {
	Items []inventoryCheckItemDTO `json:"items"`
}

type inventoryCheckItemDTO struct {
	EquipmentID string  `json:"equipment_id"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes,omitempty"`
}

type equipmentDTO struct {
	ID              string  `json:"id"`
	AssetTag        string  `json:"asset_tag"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Status          string  `json:"status"`
	AssignedTo      *string `json:"assigned_to,omitempty"`
	PurchaseDate    *string `json:"purchase_date,omitempty"`
	WarrantyExpires *string `json:"warranty_expires,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	LastCheckedAt   *string `json:"last_checked_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type historyDTO struct {
	ID          int64  `json:"id"`
	EquipmentID string `json:"equipment_id"`
	Actor       string `json:"actor"`
	ChangeType  string `json:"change_type"`
	Detail      string `json:"detail"`
	CreatedAt   string `json:"created_at"`
}

func toEquipmentDTO(equipment application.Equipment) equipmentDTO {
	return equipmentDTO{
		ID:              equipment.ID,
		AssetTag:        equipment.AssetTag,
		Name:            equipment.Name,
		Category:        equipment.Category,
		Status:          equipment.Status,
		AssignedTo:      equipment.AssignedTo,
		PurchaseDate:    formatDatePtr(equipment.PurchaseDate),
		WarrantyExpires: formatDatePtr(equipment.WarrantyExpires),
		Notes:           equipment.Notes,
		LastCheckedAt:   formatTimePtr(equipment.LastCheckedAt),
		CreatedAt:       equipment.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       equipment.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toEquipmentDTOs(items []application.Equipment) []equipmentDTO {
	if len(items) == 0 {
		return nil
	}
	out := make([]equipmentDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toEquipmentDTO(item))
	}
	return out
}

func toHistoryDTOs(entries []application.HistoryEntry) []historyDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]historyDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyDTO{
			ID:          entry.ID,
			EquipmentID: entry.EquipmentID,
			Actor:       entry.Actor,
			ChangeType:  entry.ChangeType,
			Detail:      entry.Detail,
			CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

const dateLayout = "2006-01-02"

func parseDatePtr(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*value))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func formatDatePtr(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(dateLayout)
	return &formatted
}

func formatTimePtr(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(time.RFC3339Nano)
	return &formatted
}
