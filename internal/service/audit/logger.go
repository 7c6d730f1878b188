package audit

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/pkg/logger"
)

const asyncWriteTimeout = 5 * time.Second

// AuditLogger writes audit entries off the request path. Failures are logged,
// never returned to the caller.
type AuditLogger struct {
	service *Service
	logger  *logger.Logger
	wg      sync.WaitGroup
}

func NewAuditLogger(service *Service, log *logger.Logger) *AuditLogger {
	return &AuditLogger{
		service: service,
		logger:  log,
	}
}

// Log records the entry asynchronously. The request context is detached so
// the write survives the response being sent.
func (l *AuditLogger) Log(ctx context.Context, staffID uuid.UUID, action, entityType string, entityID uuid.UUID, opts *LogOptions) {
	if opts == nil {
		opts = &LogOptions{}
	}
	// gin reuses its context once the handler returns
	if gc, ok := ctx.(*gin.Context); ok {
		if opts.IPAddress == "" {
			opts.IPAddress = gc.ClientIP()
			opts.UserAgent = gc.GetHeader("User-Agent")
		}
		ctx = gc.Request.Context()
	}
	ctx = context.WithoutCancel(ctx)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, asyncWriteTimeout)
		defer cancel()
		if err := l.service.Log(ctx, staffID, action, entityType, entityID, opts); err != nil {
			l.logger.Error(err, "failed to write audit log",
				"action", action, "entity_type", entityType, "entity_id", entityID)
		}
	}()
}

// Wait blocks until pending asynchronous writes finish.
func (l *AuditLogger) Wait() {
	l.wg.Wait()
}
