package ports

import (
	"context"

	"github.com/taskmaster/taskstore/internal/domain/entities"
)

// TaskService interface for task store operations
type TaskService interface {
	GetStore(ctx context.Context) *entities.Store
	SaveStore(ctx context.Context, candidate any) (WriteResult, error)
	GetDayTasks(ctx context.Context, day Day) []entities.Task
	ReplaceDayTasks(ctx context.Context, day Day, tasks any) (WriteResult, error)
	SetCounter(ctx context.Context, req SetCounterRequest) (WriteResult, error)
}

// Day selects a relative calendar day.
type Day string

const (
	DayToday    Day = "today"
	DayTomorrow Day = "tomorrow"
)

// Request/Response Types

type SetCounterRequest struct {
	Counter *int64 `json:"counter" validate:"required,gte=1"`
}

type SaveResponse struct {
	Success bool   `json:"success"`
	Changed bool   `json:"changed"`
	Message string `json:"message,omitempty"`
}
