package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/asset-inventory/internal/application"
)

type auditService interface {
	ListAudit(ctx context.Context, principal application.Principal, limit int) ([]application.AuditEntry, error)
}

type AuditHandler struct {
	service   auditService
	responder responder
	logger    *slog.Logger
}

func NewAuditHandler(service auditService, logger *slog.Logger) *AuditHandler {
	base := defaultLogger(logger)
	return &AuditHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuditHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuditHandler", operation, attrs...)
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.log(r.Context(), "List", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid audit log limit", "limit", raw)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		limit = parsed
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID, "limit", limit)
	entries, err := h.service.ListAudit(r.Context(), principal, limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "audit log list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "audit log listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAuditResponse{Entries: toAuditDTOs(entries)})
}

type listAuditResponse struct {
	Entries []auditDTO `json:"entries"`
}

type auditDTO struct {
	ID         int64  `json:"id"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Detail     string `json:"detail"`
	CreatedAt  string `json:"created_at"`
}

func toAuditDTOs(entries []application.AuditEntry) []auditDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]auditDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, auditDTO{
			ID:         entry.ID,
			Actor:      entry.Actor,
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			Detail:     entry.Detail,
			CreatedAt:  entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}
