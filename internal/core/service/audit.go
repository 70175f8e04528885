package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
	"github.com/Chamindu18/task-management-system/internal/core/security"
)

// emitAudit publishes ev, filling in the actor and timestamp. Failures are
// logged and never surface to the caller.
func emitAudit(ctx context.Context, pub ports.AuditPublisher, log zerolog.Logger, ev domain.AuditEvent, now func() time.Time) {
	if pub == nil {
		return
	}
	if ev.ActorID == "" {
		if p, ok := security.PrincipalFrom(ctx); ok {
			ev.ActorID = p.UserID
		}
	}
	if ev.At.IsZero() {
		ev.At = now().UTC()
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", string(ev.Type)).Msg("failed to publish audit event")
	}
}
