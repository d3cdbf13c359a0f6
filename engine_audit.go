package iamcore

import (
	"context"
	"time"

	internalaudit "github.com/tenvault/iamcore/internal/audit"
)

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	event.ID = internalaudit.NewEventID()
	event.Timestamp = time.Now().UTC()
	e.audit.Emit(ctx, event)
}

func (e *Engine) auditLoginFailure(ctx context.Context, eventType string, authType AuthType, authAccount string, cause error) {
	e.emitAudit(ctx, AuditEvent{
		EventType: eventType,
		Success:   false,
		Error:     cause.Error(),
		Metadata: map[string]string{
			"auth_type":    string(authType),
			"auth_account": authAccount,
		},
	})
}
