package ports

import (
	"context"
	"time"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

// TaskInput is the writable part of a task.
type TaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.Priority
	DueDate     *time.Time
	OwnerID     string
}

type TaskService interface {
	Create(ctx context.Context, in TaskInput) (*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, id string, in TaskInput) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// ReminderService turns pending tasks into queued reminders.
type ReminderService interface {
	DispatchDue(ctx context.Context) (int, error)
}
