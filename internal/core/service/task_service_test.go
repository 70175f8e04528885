package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
)

func TestTaskService_CreateDefaults(t *testing.T) {
	users := newStubUserRepo()
	owner, _ := users.Create(context.Background(), &domain.User{Username: "alice", Email: "a@x.com", Role: domain.RoleUser})
	svc := NewTaskService(newStubTaskRepo(), users, zerolog.Nop())

	task, err := svc.Create(context.Background(), ports.TaskInput{Title: "  write report ", OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Title != "write report" || task.Status != domain.TaskTodo || task.Priority != domain.PriorityMedium {
		t.Fatalf("unexpected defaults: %+v", task)
	}
	if task.CreatedAt.IsZero() {
		t.Fatalf("expected timestamps")
	}
}

func TestTaskService_CreateValidation(t *testing.T) {
	users := newStubUserRepo()
	owner, _ := users.Create(context.Background(), &domain.User{Username: "alice", Email: "a@x.com", Role: domain.RoleUser})
	svc := NewTaskService(newStubTaskRepo(), users, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, ports.TaskInput{OwnerID: owner.ID}); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected missing title error, got %v", err)
	}
	if _, err := svc.Create(ctx, ports.TaskInput{Title: "x", OwnerID: owner.ID, Status: "DONE"}); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected bad status error, got %v", err)
	}
	if _, err := svc.Create(ctx, ports.TaskInput{Title: "x", OwnerID: owner.ID, Priority: "URGENT"}); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected bad priority error, got %v", err)
	}
	if _, err := svc.Create(ctx, ports.TaskInput{Title: "x", OwnerID: "nobody"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTaskService_UpdateKeepsOwner(t *testing.T) {
	users := newStubUserRepo()
	owner, _ := users.Create(context.Background(), &domain.User{Username: "alice", Email: "a@x.com", Role: domain.RoleUser})
	svc := NewTaskService(newStubTaskRepo(), users, zerolog.Nop())
	ctx := context.Background()

	task, err := svc.Create(ctx, ports.TaskInput{Title: "a", OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, task.ID, ports.TaskInput{Title: "b", Status: domain.TaskCompleted})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.OwnerID != owner.ID || updated.Status != domain.TaskCompleted || updated.Title != "b" {
		t.Fatalf("unexpected task: %+v", updated)
	}

	if _, err := svc.Update(ctx, task.ID, ports.TaskInput{Title: "b", OwnerID: "ghost"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected reassignment to unknown user to fail, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing", ports.TaskInput{Title: "b"}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_ListFilter(t *testing.T) {
	users := newStubUserRepo()
	a, _ := users.Create(context.Background(), &domain.User{Username: "a", Email: "a@x.com", Role: domain.RoleUser})
	b, _ := users.Create(context.Background(), &domain.User{Username: "b", Email: "b@x.com", Role: domain.RoleUser})
	svc := NewTaskService(newStubTaskRepo(), users, zerolog.Nop())
	ctx := context.Background()

	_, _ = svc.Create(ctx, ports.TaskInput{Title: "a1", OwnerID: a.ID})
	_, _ = svc.Create(ctx, ports.TaskInput{Title: "a2", OwnerID: a.ID, Status: domain.TaskCompleted})
	_, _ = svc.Create(ctx, ports.TaskInput{Title: "b1", OwnerID: b.ID})

	mine, err := svc.List(ctx, domain.TaskFilter{OwnerID: a.ID})
	if err != nil || len(mine) != 2 {
		t.Fatalf("expected 2 tasks for a, got %d (%v)", len(mine), err)
	}
	todo, _ := svc.List(ctx, domain.TaskFilter{Status: domain.TaskTodo})
	if len(todo) != 2 {
		t.Fatalf("expected 2 TODO tasks, got %d", len(todo))
	}
	if _, err := svc.List(ctx, domain.TaskFilter{Status: "LATER"}); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected bad status filter error, got %v", err)
	}
}
