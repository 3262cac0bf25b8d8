package schema

import (
	"math"
	"sort"
	"time"

	"github.com/taskmaster/taskstore/internal/domain/entities"
)

// ParseLegacy extracts the legacy fields from a decoded object. Fields
// with unexpected types are treated as absent.
func ParseLegacy(m map[string]any) entities.LegacyStore {
	var legacy entities.LegacyStore

	legacy.TodayTasks, _ = taskList(m[fieldTodayTasks])
	legacy.TomorrowTasks, _ = taskList(m[fieldTomorrowTasks])

	if daily, ok := m[fieldDailyTasks].(map[string]any); ok {
		legacy.DailyTasks = make(map[string][]entities.Task, len(daily))
		for day, bucket := range daily {
			if tasks, ok := taskList(bucket); ok {
				legacy.DailyTasks[day] = tasks
			}
		}
	}
	if counter, ok := entities.IntegerValue(m[fieldTaskIDCounter]); ok {
		legacy.TaskIDCounter = &counter
	}
	if date, ok := m[fieldLastSavedDate].(string); ok {
		legacy.LastSavedDate = &date
	}
	if days, ok := entities.IntegerValue(m[fieldTaskExpirationDays]); ok {
		legacy.TaskExpirationDays = &days
	}
	if archived, ok := m[fieldArchivedTasks].(map[string]any); ok {
		legacy.ArchivedTasks = archived
	}
	return legacy
}

// Migrate converts a legacy store into the current layout. today is the
// local calendar day the conversion is relative to; the result depends on
// nothing else.
//
// Output order: todayTasks, then tomorrowTasks, then dailyTasks buckets in
// the order the document listed them.
func Migrate(legacy entities.LegacyStore, today time.Time) *entities.Store {
	todayDate := entities.Today(today)
	tomorrowDate := entities.Tomorrow(today)

	store := entities.NewStore()
	maxID := int64(1)

	add := func(task entities.Task, day string) {
		store.AllTasks = append(store.AllTasks, task.WithDate(day))
		if id, ok := task.IDValue(); ok && id >= maxID {
			maxID = id
			if id < math.MaxInt64 {
				maxID = id + 1
			}
		}
	}

	for _, task := range legacy.TodayTasks {
		add(task, todayDate)
	}
	for _, task := range legacy.TomorrowTasks {
		add(task, tomorrowDate)
	}

	for _, day := range dailyOrder(legacy) {
		for _, task := range legacy.DailyTasks[day] {
			add(task, day)
		}
	}

	store.TaskIDCounter = maxID
	if legacy.TaskIDCounter != nil {
		store.TaskIDCounter = *legacy.TaskIDCounter
	}

	if legacy.LastSavedDate != nil {
		date := *legacy.LastSavedDate
		store.CurrentDate = &date
	} else {
		store.CurrentDate = &todayDate
	}

	if legacy.TaskExpirationDays != nil {
		store.TaskExpirationDays = *legacy.TaskExpirationDays
	}
	if legacy.ArchivedTasks != nil {
		store.ArchivedTasks = legacy.ArchivedTasks
	}
	return store
}

// dailyOrder yields the dailyTasks keys in document order when it is
// known, followed by any remaining keys in ascending order.
func dailyOrder(legacy entities.LegacyStore) []string {
	days := make([]string, 0, len(legacy.DailyTasks))
	seen := make(map[string]bool, len(legacy.DailyTasks))
	for _, day := range legacy.DailyOrder {
		if _, ok := legacy.DailyTasks[day]; ok && !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}

	rest := make([]string, 0, len(legacy.DailyTasks)-len(days))
	for day := range legacy.DailyTasks {
		if !seen[day] {
			rest = append(rest, day)
		}
	}
	sort.Strings(rest)
	return append(days, rest...)
}

// Resolve yields a current-schema store for any detected document, plus
// whether a legacy migration took place. Unrecognized documents resolve
// to the default store.
func Resolve(doc Document, today time.Time) (*entities.Store, bool) {
	switch d := doc.(type) {
	case Current:
		return coerceFields(d.Fields), false
	case Legacy:
		return Migrate(d.Store, today), true
	default:
		return entities.NewStore(), false
	}
}
