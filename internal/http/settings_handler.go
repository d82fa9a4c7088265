package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/asset-inventory/internal/application"
)

type settingsService interface {
	ListSettings(ctx context.Context, principal application.Principal) ([]application.Setting, error)
	UpdateSettings(ctx context.Context, principal application.Principal, settings []application.Setting) error
}

type SettingsHandler struct {
	service   settingsService
	responder responder
	logger    *slog.Logger
}

func NewSettingsHandler(service settingsService, logger *slog.Logger) *SettingsHandler {
	base := defaultLogger(logger)
	return &SettingsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SettingsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SettingsHandler", operation, attrs...)
}

func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	settings, err := h.service.ListSettings(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "settings list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingsResponse{Settings: toSettingsMap(settings)})
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode settings request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	settings := make([]application.Setting, 0, len(req.Settings))
	for key, value := range req.Settings {
		settings = append(settings, application.Setting{Key: strings.TrimSpace(key), Value: value})
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "setting_count", len(settings))

	if err := h.service.UpdateSettings(r.Context(), principal, settings); err != nil {
		logger.ErrorContext(r.Context(), "settings update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "settings updated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type settingsRequest struct {
	Settings map[string]string `json:"settings"`
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
}

func toSettingsMap(settings []application.Setting) map[string]string {
	if len(settings) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	return out
}
