package app

import (
	"context"
	"time"

	"github.com/kasirpos/kasir/internal/domain"
	"go.uber.org/zap"
)

// writeAudit persists events published by the services. Failures are logged
// and never reach the request that caused them.
func (a *Application) writeAudit(ev domain.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := &domain.AuditLog{
		ID:        a.ids.NextID(),
		UserID:    ev.UserID,
		Action:    ev.Action,
		Target:    ev.Target,
		TargetID:  ev.TargetID,
		Detail:    ev.Detail,
		CreatedAt: time.Now(),
	}
	if err := a.store.Audit().Create(ctx, entry); err != nil {
		zap.L().Error("write audit log",
			zap.String("namespace", "audit"),
			zap.String("user_id", ev.UserID),
			zap.String("action", ev.Action),
			zap.Error(err))
	}
}
