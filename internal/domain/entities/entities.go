package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input: store document must be a JSON object")
	ErrStoreWrite   = errors.New("failed to write store")
	ErrWriterClosed = errors.New("store writer is closed")
)

// Store defaults applied on first read and during coercion.
const (
	DefaultTaskIDCounter      int64 = 1
	DefaultTaskExpirationDays int64 = 7
)

// DateLayout is the calendar date format used by task dates.
const DateLayout = "2006-01-02"

// Store is the current-schema task document persisted on disk.
type Store struct {
	AllTasks           []Task         `json:"allTasks"`
	TaskIDCounter      int64          `json:"taskIdCounter"`
	CurrentDate        *string        `json:"currentDate"`
	TaskExpirationDays int64          `json:"taskExpirationDays"`
	ArchivedTasks      map[string]any `json:"archivedTasks"`
}

// NewStore returns the empty store served when nothing valid is on disk.
func NewStore() *Store {
	return &Store{
		AllTasks:           []Task{},
		TaskIDCounter:      DefaultTaskIDCounter,
		CurrentDate:        nil,
		TaskExpirationDays: DefaultTaskExpirationDays,
		ArchivedTasks:      map[string]any{},
	}
}

// TasksOn returns the tasks dated day, in store order.
func (s *Store) TasksOn(day string) []Task {
	tasks := []Task{}
	for _, task := range s.AllTasks {
		if date, ok := task.DateValue(); ok && date == day {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// ReplaceTasksOn drops every task dated day and appends replacements,
// each tagged with day.
func (s *Store) ReplaceTasksOn(day string, replacements []Task) {
	kept := make([]Task, 0, len(s.AllTasks)+len(replacements))
	for _, task := range s.AllTasks {
		if date, ok := task.DateValue(); ok && date == day {
			continue
		}
		kept = append(kept, task)
	}
	for _, task := range replacements {
		kept = append(kept, task.WithDate(day))
	}
	s.AllTasks = kept
}

// LegacyStore is the older day-bucketed representation. Pointer fields
// are nil when the field was absent or had the wrong type.
type LegacyStore struct {
	TodayTasks         []Task
	TomorrowTasks      []Task
	DailyTasks         map[string][]Task
	DailyOrder         []string
	TaskIDCounter      *int64
	LastSavedDate      *string
	TaskExpirationDays *int64
	ArchivedTasks      map[string]any
}

// FormatDate renders t as a local calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the calendar date of now.
func Today(now time.Time) string {
	return FormatDate(now)
}

// Tomorrow returns the calendar date following now, rolling over months
// and years.
func Tomorrow(now time.Time) string {
	return FormatDate(now.AddDate(0, 0, 1))
}
