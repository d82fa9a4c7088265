package application

import (
	"context"
	"fmt"
)

// AuditLogReader exposes the read side of the audit trail.
type AuditLogReader interface {
	ListAudit(ctx context.Context, limit int) ([]AuditEntry, error)
}

const defaultAuditLimit = 200

// AuditService exposes the audit trail to administrators.
type AuditService struct {
	reader AuditLogReader
}

// NewAuditService wires dependencies for the audit service.
func NewAuditService(reader AuditLogReader) *AuditService {
	return &AuditService{reader: reader}
}

// ListAudit returns the most recent audit entries for administrators. A limit
// of zero or less selects the default page size.
func (s *AuditService) ListAudit(ctx context.Context, principal Principal, limit int) ([]AuditEntry, error) {
	if s == nil {
		return nil, fmt.Errorf("AuditService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if s.reader == nil {
		return nil, nil
	}

	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return s.reader.ListAudit(ctx, limit)
}
