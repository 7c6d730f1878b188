package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
        INSERT INTO audit_logs (
            id, staff_id, action, entity_type, entity_id,
            changes, ip_address, user_agent, created_at
        ) VALUES (
            :id, :staff_id, :action, :entity_type, :entity_id,
            :changes, :ip_address, :user_agent, :created_at
        )
    `
	if _, err := r.GetDB().NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("failed to create audit log: %w", mapError(err))
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int, error) {
	var conditions []string
	var args []interface{}

	add := func(cond string, v interface{}) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filters.StaffID != uuid.Nil {
		add("staff_id = $%d", filters.StaffID)
	}
	if filters.EntityType != "" {
		add("entity_type = $%d", filters.EntityType)
	}
	if filters.EntityID != uuid.Nil {
		add("entity_id = $%d", filters.EntityID)
	}
	if filters.Action != "" {
		add("action = $%d", filters.Action)
	}
	if filters.From != nil {
		add("created_at >= $%d", *filters.From)
	}
	if filters.To != nil {
		add("created_at < $%d", filters.To.AddDate(0, 0, 1))
	}

	baseQuery := "FROM audit_logs"
	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.GetDB().GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	page := filters.Pagination
	page.Normalize()
	query := "SELECT id, staff_id, action, entity_type, entity_id, changes, ip_address, user_agent, created_at " +
		baseQuery + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.PageSize, (page.Page-1)*page.PageSize)

	var logs []*model.AuditLog
	if err := r.GetDB().SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return logs, total, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.GetDB().ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}

	return result.RowsAffected()
}
