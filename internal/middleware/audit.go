package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/audit"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
)

type AuditMiddleware struct {
	auditor *audit.AuditLogger
}

func NewAuditMiddleware(auditor *audit.AuditLogger) *AuditMiddleware {
	return &AuditMiddleware{auditor: auditor}
}

// AuditLog writes one audit entry for every successful tracked mutation. It
// reads the entity and its before/after state from the event context the
// handler filled in.
func (m *AuditMiddleware) AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		ec := event.FromContext(c)
		if ec == nil || ec.NewData == nil || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		opts := &audit.LogOptions{}
		if ec.OldData != nil {
			if changes := event.ExtractChanges(ec.OldData, ec.NewData, nil); len(changes) > 0 {
				opts.Changes = changes
			}
		}
		m.auditor.Log(c, handler.StaffID(c), auditAction(ec.Operation), ec.Resource, ec.EntityID, opts)
	}
}

func auditAction(operation string) string {
	switch operation {
	case "create", "request", "generate":
		return model.AuditActionCreate
	case "delete":
		return model.AuditActionDelete
	case "status_change", "paid", "archive", "record_results":
		return model.AuditActionStatus
	default:
		return model.AuditActionUpdate
	}
}
