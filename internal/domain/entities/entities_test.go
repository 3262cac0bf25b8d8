package entities

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTomorrow(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"mid month", time.Date(2024, time.March, 14, 9, 0, 0, 0, time.Local), "2024-03-15"},
		{"month rollover", time.Date(2024, time.January, 31, 23, 59, 0, 0, time.Local), "2024-02-01"},
		{"leap day", time.Date(2024, time.February, 28, 12, 0, 0, 0, time.Local), "2024-02-29"},
		{"year rollover", time.Date(2023, time.December, 31, 0, 0, 0, 0, time.Local), "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tomorrow(tt.now))
		})
	}
}

func TestNewStore_Defaults(t *testing.T) {
	store := NewStore()

	data, err := json.Marshal(store)
	require.NoError(t, err)
	assert.JSONEq(t, `{"allTasks":[],"taskIdCounter":1,"currentDate":null,"taskExpirationDays":7,"archivedTasks":{}}`, string(data))
}

func TestTaskFromMap_SplitsKnownFields(t *testing.T) {
	task := TaskFromMap(map[string]any{
		"id":   json.Number("42"),
		"date": "2024-01-31",
		"text": "buy milk",
	})

	id, ok := task.IDValue()
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	date, ok := task.DateValue()
	require.True(t, ok)
	assert.Equal(t, "2024-01-31", date)

	assert.Equal(t, map[string]any{"text": "buy milk"}, task.Extra)
}

func TestTaskFromMap_NonLiteralIDsStayVerbatim(t *testing.T) {
	for _, raw := range []string{"1.0", "1e20"} {
		raw := raw
		t.Run(raw, func(t *testing.T) {
			task := TaskFromMap(map[string]any{"id": json.Number(raw)})

			assert.Nil(t, task.ID)
			assert.Equal(t, json.Number(raw), task.Extra["id"])

			data, err := json.Marshal(task)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":`+raw+`}`, string(data))
			assert.Contains(t, string(data), raw)

			_, ok := task.IDValue()
			assert.True(t, ok)
		})
	}
}

func TestTaskFromMap_KeepsUnexpectedTypesInExtra(t *testing.T) {
	task := TaskFromMap(map[string]any{
		"id":   "abc",
		"date": json.Number("20240131"),
	})

	_, hasID := task.IDValue()
	_, hasDate := task.DateValue()
	assert.False(t, hasID)
	assert.False(t, hasDate)
	assert.Equal(t, "abc", task.Extra["id"])
	assert.Equal(t, json.Number("20240131"), task.Extra["date"])
}

func TestTask_JSONRoundTrip(t *testing.T) {
	in := `{"date":"2024-01-31","done":false,"id":7,"meta":{"b":2,"a":1},"text":"x"}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(in), &task))

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.Equal(t, `{"date":"2024-01-31","done":false,"id":7,"meta":{"a":1,"b":2},"text":"x"}`, string(out))
}

func TestTask_WithDateDoesNotAlias(t *testing.T) {
	id := int64(1)
	original := Task{ID: &id, Extra: map[string]any{"text": "a", "date": 5}}

	dated := original.WithDate("2024-02-01")
	dated.Extra["text"] = "changed"
	*dated.ID = 99

	assert.Equal(t, "a", original.Extra["text"])
	assert.Equal(t, int64(1), *original.ID)
	assert.Nil(t, original.Date)

	date, _ := dated.DateValue()
	assert.Equal(t, "2024-02-01", date)
	assert.NotContains(t, dated.Extra, "date")
}

func TestStore_ReplaceTasksOn(t *testing.T) {
	store := NewStore()
	store.AllTasks = []Task{
		TaskFromMap(map[string]any{"id": 1, "date": "2024-01-31"}),
		TaskFromMap(map[string]any{"id": 2, "date": "2024-02-01"}),
		TaskFromMap(map[string]any{"id": 3, "date": "2024-01-31"}),
		TaskFromMap(map[string]any{"id": 4}),
	}

	store.ReplaceTasksOn("2024-01-31", []Task{
		TaskFromMap(map[string]any{"id": 5, "text": "new"}),
	})

	var ids []int64
	for _, task := range store.AllTasks {
		id, _ := task.IDValue()
		ids = append(ids, id)
	}
	assert.Equal(t, []int64{2, 4, 5}, ids)

	today := store.TasksOn("2024-01-31")
	require.Len(t, today, 1)
	assert.Equal(t, "new", today[0].Extra["text"])
}

func TestStore_TasksOnEmpty(t *testing.T) {
	tasks := NewStore().TasksOn("2024-01-31")
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestIntegerValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{"json integer", json.Number("12"), 12, true},
		{"json integral float", json.Number("3.0"), 3, true},
		{"json fraction", json.Number("3.5"), 0, false},
		{"json above int64", json.Number("1e20"), math.MaxInt64, true},
		{"json below int64", json.Number("-1e20"), math.MinInt64, true},
		{"json beyond float64", json.Number("1e400"), math.MaxInt64, true},
		{"json underflow", json.Number("1e-400"), 0, false},
		{"float64", float64(8), 8, true},
		{"string", "8", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntegerValue(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
