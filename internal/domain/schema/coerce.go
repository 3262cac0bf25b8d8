package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/taskmaster/taskstore/internal/domain/entities"
)

// Coerce turns a decoded JSON value into a Store, replacing every field of
// the wrong type with its default. Non-object input is rejected with
// entities.ErrInvalidInput.
func Coerce(candidate any) (*entities.Store, error) {
	m, ok := candidate.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", entities.ErrInvalidInput, kindOf(candidate))
	}
	return coerceFields(m), nil
}

func coerceFields(m map[string]any) *entities.Store {
	store := entities.NewStore()

	if tasks, ok := taskList(m[fieldAllTasks]); ok {
		store.AllTasks = tasks
	}
	if counter, ok := entities.IntegerValue(m[fieldTaskIDCounter]); ok {
		store.TaskIDCounter = counter
	}
	if date, ok := m[fieldCurrentDate].(string); ok {
		store.CurrentDate = &date
	}
	if days, ok := entities.IntegerValue(m[fieldTaskExpirationDays]); ok {
		store.TaskExpirationDays = days
	}
	if archived, ok := m[fieldArchivedTasks].(map[string]any); ok {
		store.ArchivedTasks = archived
	}
	return store
}

// taskList keeps the object elements of an array and skips the rest, so a
// stray scalar never costs the neighbouring tasks.
func taskList(v any) ([]entities.Task, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	tasks := make([]entities.Task, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			tasks = append(tasks, entities.TaskFromMap(obj))
		}
	}
	return tasks, true
}

// TaskArray decodes a list of task objects, as posted to the per-day
// endpoints.
func TaskArray(v any) ([]entities.Task, error) {
	tasks, ok := taskList(v)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array of tasks, got %s", entities.ErrInvalidInput, kindOf(v))
	}
	return tasks, nil
}

// Canonical renders store in its comparison form: compact, keys sorted,
// no HTML escaping.
func Canonical(store *entities.Store) ([]byte, error) {
	return encode(store, "")
}

// Pretty renders store the way it is written to disk: two-space indent.
func Pretty(store *entities.Store) ([]byte, error) {
	return encode(store, "  ")
}

func encode(store *entities.Store, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(normalize(store)); err != nil {
		return nil, fmt.Errorf("encode store: %w", err)
	}
	return buf.Bytes(), nil
}

// normalize guarantees empty collections encode as [] and {} rather than
// null.
func normalize(store *entities.Store) *entities.Store {
	out := *store
	if out.AllTasks == nil {
		out.AllTasks = []entities.Task{}
	}
	if out.ArchivedTasks == nil {
		out.ArchivedTasks = map[string]any{}
	}
	return &out
}
