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

type licenseService interface {
	CreateLicense(ctx context.Context, params application.CreateLicenseParams) (application.License, error)
	UpdateLicense(ctx context.Context, params application.UpdateLicenseParams) (application.License, error)
	DeleteLicense(ctx context.Context, principal application.Principal, licenseID string) error
	GetLicense(ctx context.Context, principal application.Principal, licenseID string) (application.License, error)
	ListLicenses(ctx context.Context, principal application.Principal) ([]application.License, error)
}

type LicenseHandler struct {
	service   licenseService
	responder responder
	logger    *slog.Logger
}

func NewLicenseHandler(service licenseService, logger *slog.Logger) *LicenseHandler {
	base := defaultLogger(logger)
	return &LicenseHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *LicenseHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "LicenseHandler", operation, attrs...)
}

func (h *LicenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req licenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode license request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	input, vErr := req.toInput()
	if vErr != nil {
		logger.ErrorContext(r.Context(), "license payload rejected", "error", vErr, "error_kind", application.ErrorKind(vErr))
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	license, err := h.service.CreateLicense(r.Context(), application.CreateLicenseParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "license creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("license_id", license.ID).InfoContext(r.Context(), "license created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, licenseResponse{License: toLicenseDTO(license)})
}

func (h *LicenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	licenseID, ok := LicenseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(licenseID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing license id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLicenseID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req licenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "license_id", licenseID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode license update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "license_id", licenseID)

	input, vErr := req.toInput()
	if vErr != nil {
		logger.ErrorContext(r.Context(), "license payload rejected", "error", vErr, "error_kind", application.ErrorKind(vErr))
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	license, err := h.service.UpdateLicense(r.Context(), application.UpdateLicenseParams{
		Principal: principal,
		LicenseID: licenseID,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "license update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "license updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, licenseResponse{License: toLicenseDTO(license)})
}

func (h *LicenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	licenseID, ok := LicenseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(licenseID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing license id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLicenseID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "license_id", licenseID)
	if err := h.service.DeleteLicense(r.Context(), principal, licenseID); err != nil {
		logger.ErrorContext(r.Context(), "license delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "license deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *LicenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	licenseID, ok := LicenseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(licenseID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing license id for fetch")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLicenseID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "license_id", licenseID)
	license, err := h.service.GetLicense(r.Context(), principal, licenseID)
	if err != nil {
		logger.ErrorContext(r.Context(), "license fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, licenseResponse{License: toLicenseDTO(license)})
}

func (h *LicenseHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	licenses, err := h.service.ListLicenses(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "license list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(licenses)).InfoContext(r.Context(), "licenses listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listLicensesResponse{Licenses: toLicenseDTOs(licenses)})
}

type licenseRequest struct {
	Product    string  `json:"product"`
	Vendor     string  `json:"vendor"`
	LicenseKey string  `json:"license_key"`
	Seats      int     `json:"seats"`
	ExpiresOn  *string `json:"expires_on"`
	Notes      *string `json:"notes"`
}

func (r licenseRequest) toInput() (application.LicenseInput, *application.ValidationError) {
	expiresOn, err := parseDatePtr(r.ExpiresOn)
	if err != nil {
		return application.LicenseInput{}, &application.ValidationError{FieldErrors: map[string]string{
			"expires_on": "must be a date in YYYY-MM-DD format",
		}}
	}

	return application.LicenseInput{
		Product:    strings.TrimSpace(r.Product),
		Vendor:     strings.TrimSpace(r.Vendor),
		LicenseKey: strings.TrimSpace(r.LicenseKey),
		Seats:      r.Seats,
		ExpiresOn:  expiresOn,
		Notes:      r.Notes,
	}, nil
}

type licenseResponse struct {
	License licenseDTO `json:"license"`
}

type listLicensesResponse struct {
	Licenses []licenseDTO `json:"licenses"`
}

type licenseDTO struct {
	ID         string  `json:"id"`
	Product    string  `json:"product"`
	Vendor     string  `json:"vendor"`
	LicenseKey string  `json:"license_key"`
	Seats      int     `json:"seats"`
	ExpiresOn  *string `json:"expires_on,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toLicenseDTO(license application.License) licenseDTO {
	return licenseDTO{
		ID:         license.ID,
		Product:    license.Product,
		Vendor:     license.Vendor,
		LicenseKey: license.LicenseKey,
		Seats:      license.Seats,
		ExpiresOn:  formatDatePtr(license.ExpiresOn),
		Notes:      license.Notes,
		CreatedAt:  license.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  license.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toLicenseDTOs(licenses []application.License) []licenseDTO {
	if len(licenses) == 0 {
		return nil
	}
	out := make([]licenseDTO, 0, len(licenses))
	for _, license := range licenses {
		out = append(out, toLicenseDTO(license))
	}
	return out
}
