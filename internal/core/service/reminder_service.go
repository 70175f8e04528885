package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
)

type reminderService struct {
	tasks ports.TaskRepository
	users ports.UserRepository
	queue ports.ReminderQueue
	log   zerolog.Logger
}

// NewReminderService returns a ReminderService that feeds queue.
func NewReminderService(tasks ports.TaskRepository, users ports.UserRepository, queue ports.ReminderQueue, log zerolog.Logger) ports.ReminderService {
	return &reminderService{tasks: tasks, users: users, queue: queue, log: log}
}

// DispatchDue enqueues one reminder per TODO task whose owner has email
// notifications enabled and returns how many were accepted. Reminders the
// queue rejects are dropped and logged.
func (s *reminderService) DispatchDue(ctx context.Context) (int, error) {
	pending, err := s.tasks.List(ctx, domain.TaskFilter{Status: domain.TaskTodo})
	if err != nil {
		return 0, fmt.Errorf("list pending tasks: %w", err)
	}

	owners := make(map[string]*domain.User)
	queued := 0
	for _, task := range pending {
		if err := ctx.Err(); err != nil {
			return queued, err
		}

		owner, seen := owners[task.OwnerID]
		if !seen {
			owner, err = s.users.FindByID(ctx, task.OwnerID)
			if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
				return queued, fmt.Errorf("load task owner: %w", err)
			}
			owners[task.OwnerID] = owner
		}
		if owner == nil || !owner.EmailNotifications || owner.Email == "" {
			continue
		}

		err := s.queue.Enqueue(domain.Reminder{
			TaskID:    task.ID,
			TaskTitle: task.Title,
			DueDate:   task.DueDate,
			UserID:    owner.ID,
			Username:  owner.Username,
			Email:     owner.Email,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("task_id", task.ID).Msg("reminder dropped")
			continue
		}
		queued++
	}

	s.log.Info().Int("pending", len(pending)).Int("queued", queued).Msg("reminder run finished")
	return queued, nil
}

const reminderSubject = "Daily Task Reminder"

// ReminderSender formats reminders as email and hands them to a Mailer.
type ReminderSender struct {
	mailer ports.Mailer
}

func NewReminderSender(mailer ports.Mailer) *ReminderSender {
	return &ReminderSender{mailer: mailer}
}

// Deliver sends a single reminder.
func (r *ReminderSender) Deliver(ctx context.Context, rem domain.Reminder) error {
	body := fmt.Sprintf("Hi %s, you have a pending task: %s", rem.Username, rem.TaskTitle)
	if rem.DueDate != nil {
		body += fmt.Sprintf(" (due %s)", rem.DueDate.Format("2006-01-02"))
	}
	if err := r.mailer.Send(ctx, rem.Email, reminderSubject, body); err != nil {
		return fmt.Errorf("send reminder for task %s: %w", rem.TaskID, err)
	}
	return nil
}
