package services

import (
	"context"
	"fmt"
	"time"

	"github.com/taskmaster/taskstore/internal/domain/entities"
	"github.com/taskmaster/taskstore/internal/domain/schema"
	"github.com/taskmaster/taskstore/internal/infrastructure/logger"
	"github.com/taskmaster/taskstore/internal/ports"
)

// TaskService handles task store operations
type TaskService struct {
	storeRepo ports.StoreRepository
	logger    *logger.Logger
	now       func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(storeRepo ports.StoreRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		storeRepo: storeRepo,
		logger:    logger.WithComponent("task_service"),
		now:       time.Now,
	}
}

// WithClock replaces the clock used to resolve "today" and "tomorrow"
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// GetStore returns the current store, migrated if the file is legacy
func (s *TaskService) GetStore(ctx context.Context) *entities.Store {
	return s.storeRepo.Load(ctx)
}

// SaveStore replaces the whole store with candidate
func (s *TaskService) SaveStore(ctx context.Context, candidate any) (ports.WriteResult, error) {
	result, err := s.storeRepo.Write(ctx, candidate)
	if err != nil {
		return result, fmt.Errorf("save store: %w", err)
	}

	s.logger.Infow("Store saved", "changed", result.Changed)

	return result, nil
}

// GetDayTasks returns the tasks dated today or tomorrow
func (s *TaskService) GetDayTasks(ctx context.Context, day ports.Day) []entities.Task {
	date, err := s.resolveDay(day)
	if err != nil {
		return []entities.Task{}
	}
	return s.storeRepo.Load(ctx).TasksOn(date)
}

// ReplaceDayTasks swaps every task dated day for the given task list
func (s *TaskService) ReplaceDayTasks(ctx context.Context, day ports.Day, tasks any) (ports.WriteResult, error) {
	date, err := s.resolveDay(day)
	if err != nil {
		return ports.WriteResult{}, err
	}

	replacements, err := schema.TaskArray(tasks)
	if err != nil {
		return ports.WriteResult{}, err
	}

	result, err := s.storeRepo.Update(ctx, func(store *entities.Store) error {
		store.ReplaceTasksOn(date, replacements)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("replace %s tasks: %w", day, err)
	}

	s.logger.Infow("Day tasks replaced", "day", day, "date", date, "tasks", len(replacements), "changed", result.Changed)

	return result, nil
}

// SetCounter persists a new task id counter
func (s *TaskService) SetCounter(ctx context.Context, req ports.SetCounterRequest) (ports.WriteResult, error) {
	if req.Counter == nil || *req.Counter < 1 {
		return ports.WriteResult{}, fmt.Errorf("%w: counter must be a positive integer", entities.ErrInvalidInput)
	}
	counter := *req.Counter

	result, err := s.storeRepo.Update(ctx, func(store *entities.Store) error {
		store.TaskIDCounter = counter
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("set task id counter: %w", err)
	}

	s.logger.Infow("Task id counter updated", "counter", counter, "changed", result.Changed)

	return result, nil
}

func (s *TaskService) resolveDay(day ports.Day) (string, error) {
	now := s.now()
	switch day {
	case ports.DayToday:
		return entities.Today(now), nil
	case ports.DayTomorrow:
		return entities.Tomorrow(now), nil
	default:
		return "", fmt.Errorf("%w: unknown day %q", entities.ErrInvalidInput, day)
	}
}
