package handler

import (
	"fmt"
	"time"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
)

const dueDateLayout = "2006-01-02"

// --- Request → Service input ---

func toTaskInput(req taskRequest) (ports.TaskInput, error) {
	in := ports.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.Priority(req.Priority),
		OwnerID:     req.OwnerID,
	}
	if req.DueDate != "" {
		due, err := time.Parse(dueDateLayout, req.DueDate)
		if err != nil {
			return ports.TaskInput{}, fmt.Errorf("%w: due_date must be YYYY-MM-DD", domain.ErrInvalidOperation)
		}
		in.DueDate = &due
	}
	return in, nil
}

// --- Service result → HTTP response ---

func toTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.DueDate != nil {
		resp.DueDate = t.DueDate.UTC().Format(dueDateLayout)
	}
	return resp
}

func toTaskResponses(tasks []domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	return out
}
