package ports

import (
	"context"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

// Mailer delivers a plain-text email. Delivery is best effort.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ReminderQueue accepts reminders for background delivery without blocking
// the caller.
type ReminderQueue interface {
	Enqueue(reminder domain.Reminder) error
}

// AuditPublisher emits account events to an external sink.
type AuditPublisher interface {
	Publish(ctx context.Context, event domain.AuditEvent) error
}
