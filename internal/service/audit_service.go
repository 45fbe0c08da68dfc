package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// RequestMeta identifies where a mutating request came from.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuditEntry describes one audited change.
type AuditEntry struct {
	Action     string
	Resource   string
	ResourceID string
	Old        interface{}
	New        interface{}
}

// AuditService writes moderation events to the audit trail. Failures never
// fail the originating request.
type AuditService struct {
	repo   auditWriter
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditWriter, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record persists an entry on behalf of the principal.
func (s *AuditService) Record(ctx context.Context, actor *models.Principal, entry AuditEntry, meta RequestMeta) {
	if s == nil || s.repo == nil {
		return
	}
	log := &models.AuditLog{
		Action:    entry.Action,
		Resource:  entry.Resource,
		OldValues: marshalAudit(entry.Old),
		NewValues: marshalAudit(entry.New),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if actor != nil {
		id := actor.UserID
		log.UserID = &id
	}
	if entry.ResourceID != "" {
		id := entry.ResourceID
		log.ResourceID = &id
	}
	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Warn("failed to write audit log",
			zap.String("action", entry.Action),
			zap.String("resource_id", entry.ResourceID),
			zap.Error(err),
		)
	}
}

func marshalAudit(v interface{}) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
