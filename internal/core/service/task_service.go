package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
)

type taskService struct {
	tasks ports.TaskRepository
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

// NewTaskService returns a TaskService implementation.
func NewTaskService(tasks ports.TaskRepository, users ports.UserRepository, log zerolog.Logger) ports.TaskService {
	return &taskService{tasks: tasks, users: users, log: log, now: time.Now}
}

func (s *taskService) Create(ctx context.Context, in ports.TaskInput) (*domain.Task, error) {
	task := &domain.Task{Status: domain.TaskTodo, Priority: domain.PriorityMedium}
	if err := applyTaskInput(task, in); err != nil {
		return nil, err
	}
	if task.OwnerID == "" {
		return nil, fmt.Errorf("%w: task owner is required", domain.ErrInvalidOperation)
	}
	if _, err := s.users.FindByID(ctx, task.OwnerID); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	now := s.now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.log.Debug().Str("task_id", created.ID).Str("owner_id", created.OwnerID).Msg("task created")
	return created, nil
}

func (s *taskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

func (s *taskService) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidOperation, filter.Status)
	}
	return s.tasks.List(ctx, filter)
}

// Update replaces the writable fields of a task. An empty OwnerID keeps the
// current owner.
func (s *taskService) Update(ctx context.Context, id string, in ports.TaskInput) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owner := task.OwnerID
	if err := applyTaskInput(task, in); err != nil {
		return nil, err
	}
	if task.OwnerID == "" {
		task.OwnerID = owner
	}
	if task.OwnerID != owner {
		if _, err := s.users.FindByID(ctx, task.OwnerID); err != nil {
			return nil, fmt.Errorf("reassign task: %w", err)
		}
	}

	task.UpdatedAt = s.now().UTC()
	return s.tasks.Update(ctx, task)
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

func applyTaskInput(task *domain.Task, in ports.TaskInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidOperation)
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidOperation, in.Status)
		}
		task.Status = in.Status
	}
	if in.Priority != "" {
		if !in.Priority.Valid() {
			return fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidOperation, in.Priority)
		}
		task.Priority = in.Priority
	}
	task.Title = title
	task.Description = strings.TrimSpace(in.Description)
	task.DueDate = in.DueDate
	task.OwnerID = in.OwnerID
	return nil
}
