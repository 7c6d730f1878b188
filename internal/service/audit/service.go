package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

type Service struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type LogOptions struct {
	Changes   interface{}
	IPAddress string
	UserAgent string
}

// Log creates an audit log entry. Client address and user agent are taken
// from the gin context when the options leave them empty.
func (s *Service) Log(ctx context.Context, staffID uuid.UUID, action, entityType string, entityID uuid.UUID, opts *LogOptions) error {
	if opts == nil {
		opts = &LogOptions{}
	}

	var changes json.RawMessage
	if opts.Changes != nil {
		raw, err := json.Marshal(opts.Changes)
		if err != nil {
			return fmt.Errorf("failed to marshal audit changes: %w", err)
		}
		changes = raw
	}

	ipAddress, userAgent := opts.IPAddress, opts.UserAgent
	if gc, ok := ctx.(*gin.Context); ok && ipAddress == "" {
		ipAddress = gc.ClientIP()
		userAgent = gc.GetHeader("User-Agent")
	}

	entry := &model.AuditLog{
		ID:         uuid.New(),
		StaffID:    staffID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// List returns one page of entries, newest first, and the total match count.
func (s *Service) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int, error) {
	filters.Normalize()
	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return nil, 0, apperrors.BadRequest("to must not precede from", nil)
	}
	logs, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

// Cleanup deletes entries older than retentionDays.
func (s *Service) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention must be positive, got %d days", retentionDays)
	}
	before := s.now().AddDate(0, 0, -retentionDays)
	n, err := s.repo.DeleteBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit logs: %w", err)
	}
	return n, nil
}
