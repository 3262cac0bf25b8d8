package schema

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/taskstore/internal/domain/entities"
)

var fixedNow = time.Date(2024, time.January, 31, 10, 30, 0, 0, time.Local)

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func mustDecode(t *testing.T, raw string) any {
	t.Helper()

	v, err := Decode([]byte(raw))
	require.NoError(t, err)
	return v
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"current with tasks", `{"allTasks":[{"id":1}],"taskIdCounter":2}`, "current"},
		{"current empty", `{"allTasks":[]}`, "current"},
		{"current malformed rest", `{"allTasks":"nope","taskIdCounter":"x"}`, "current"},
		{"legacy", `{"todayTasks":[],"tomorrowTasks":[]}`, "legacy"},
		{"empty object is legacy", `{}`, "legacy"},
		{"invalid json", `{"allTasks":`, "unrecognized"},
		{"array", `[1,2]`, "unrecognized"},
		{"null", `null`, "unrecognized"},
		{"trailing garbage", `{"allTasks":[]} {}`, "unrecognized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			switch Detect([]byte(tt.raw)).(type) {
			case Current:
				got = "current"
			case Legacy:
				got = "legacy"
			case Unrecognized:
				got = "unrecognized"
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_RejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`null`, `"string"`, `[1,2]`, `42`, `true`} {
		t.Run(raw, func(t *testing.T) {
			_, err := Coerce(mustDecode(t, raw))
			require.ErrorIs(t, err, entities.ErrInvalidInput)
		})
	}
}

func TestCoerce_WrongTypesFallBackToDefaults(t *testing.T) {
	store, err := Coerce(mustDecode(t, `{
		"allTasks": "not a list",
		"taskIdCounter": "5",
		"currentDate": 20240131,
		"taskExpirationDays": 2.5,
		"archivedTasks": []
	}`))
	require.NoError(t, err)

	if diff := cmp.Diff(entities.NewStore(), store); diff != "" {
		t.Errorf("coerced store mismatch (-want +got):\n%s", diff)
	}
}

func TestCoerce_SkipsNonObjectTasks(t *testing.T) {
	store, err := Coerce(mustDecode(t, `{"allTasks":[{"id":1}, 2, null, "x", {"id":2}]}`))
	require.NoError(t, err)

	require.Len(t, store.AllTasks, 2)
	assert.Equal(t, int64(1), *store.AllTasks[0].ID)
	assert.Equal(t, int64(2), *store.AllTasks[1].ID)
}

func TestCoerce_HugeCounterIsClamped(t *testing.T) {
	store, err := Coerce(mustDecode(t, `{"allTasks":[{"id":1e20}],"taskIdCounter":1e20}`))
	require.NoError(t, err)

	assert.Equal(t, int64(math.MaxInt64), store.TaskIDCounter)

	canonical, err := Canonical(store)
	require.NoError(t, err)
	assert.Contains(t, string(canonical), `"id":1e20`)
}

func TestCoerce_IdentityOnWellFormedInput(t *testing.T) {
	raw := `{
		"allTasks": [{"id": 3, "date": "2024-01-31", "text": "a"}],
		"taskIdCounter": 5,
		"currentDate": "2024-01-31",
		"taskExpirationDays": 3,
		"archivedTasks": {"2024-01-01": [{"id": 1}]}
	}`

	store, err := Coerce(mustDecode(t, raw))
	require.NoError(t, err)

	want := &entities.Store{
		AllTasks: []entities.Task{{
			ID:    int64Ptr(3),
			Date:  strPtr("2024-01-31"),
			Extra: map[string]any{"text": "a"},
		}},
		TaskIDCounter:      5,
		CurrentDate:        strPtr("2024-01-31"),
		TaskExpirationDays: 3,
		ArchivedTasks: map[string]any{
			"2024-01-01": []any{map[string]any{"id": json.Number("1")}},
		},
	}
	if diff := cmp.Diff(want, store); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}

	canonical, err := Canonical(store)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(canonical))
}

func TestCoerce_NullCurrentDateStaysNull(t *testing.T) {
	store, err := Coerce(mustDecode(t, `{"allTasks":[],"currentDate":null}`))
	require.NoError(t, err)
	assert.Nil(t, store.CurrentDate)
}

func TestMigrate_TodayAndTomorrow(t *testing.T) {
	doc := Detect([]byte(`{"todayTasks":[{"id":1,"text":"a"}], "tomorrowTasks":[{"id":2,"text":"b"}], "taskIdCounter":3}`))
	legacy, ok := doc.(Legacy)
	require.True(t, ok, "expected legacy document, got %T", doc)

	store := Migrate(legacy.Store, fixedNow)

	require.Len(t, store.AllTasks, 2)
	assert.Equal(t, "2024-01-31", *store.AllTasks[0].Date)
	assert.Equal(t, "a", store.AllTasks[0].Extra["text"])
	assert.Equal(t, "2024-02-01", *store.AllTasks[1].Date)
	assert.Equal(t, "b", store.AllTasks[1].Extra["text"])
	assert.Equal(t, int64(3), store.TaskIDCounter)
	assert.Equal(t, "2024-01-31", *store.CurrentDate)
	assert.Equal(t, entities.DefaultTaskExpirationDays, store.TaskExpirationDays)
	assert.Empty(t, store.ArchivedTasks)
}

func TestMigrate_CounterFromHighestID(t *testing.T) {
	legacy := ParseLegacy(mustDecode(t, `{"todayTasks":[{"id":4}],"dailyTasks":{"2024-01-20":[{"id":9},{"id":2}]}}`).(map[string]any))

	store := Migrate(legacy, fixedNow)

	assert.GreaterOrEqual(t, store.TaskIDCounter, int64(10))
	assert.Equal(t, int64(10), store.TaskIDCounter)
}

func TestMigrate_CounterSaturatesOnHugeID(t *testing.T) {
	legacy := ParseLegacy(mustDecode(t, `{"todayTasks":[{"id":1e20},{"id":2.0}]}`).(map[string]any))

	store := Migrate(legacy, fixedNow)

	assert.Equal(t, int64(math.MaxInt64), store.TaskIDCounter)
	assert.Equal(t, json.Number("1e20"), store.AllTasks[0].Extra["id"])
	assert.Equal(t, json.Number("2.0"), store.AllTasks[1].Extra["id"])
}

func TestMigrate_DailyTasksOrderAndDates(t *testing.T) {
	legacy := ParseLegacy(mustDecode(t, `{
		"tomorrowTasks": [{"id": 1}],
		"dailyTasks": {
			"2024-01-05": [{"id": 2}],
			"2024-01-02": [{"id": 3}, {"id": 4}],
			"broken": "not a list"
		},
		"lastSavedDate": "2024-01-30",
		"taskExpirationDays": 14,
		"archivedTasks": {"k": "v"}
	}`).(map[string]any))

	store := Migrate(legacy, fixedNow)

	type row struct {
		ID   int64
		Date string
	}
	var got []row
	for _, task := range store.AllTasks {
		got = append(got, row{*task.ID, *task.Date})
	}

	want := []row{
		{1, "2024-02-01"},
		{3, "2024-01-02"},
		{4, "2024-01-02"},
		{2, "2024-01-05"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("migrated order mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, int64(5), store.TaskIDCounter)
	assert.Equal(t, "2024-01-30", *store.CurrentDate)
	assert.Equal(t, int64(14), store.TaskExpirationDays)
	assert.Equal(t, map[string]any{"k": "v"}, store.ArchivedTasks)
}

func TestMigrate_DailyTasksFollowDocumentOrder(t *testing.T) {
	doc := Detect([]byte(`{
		"dailyTasks": {
			"2024-01-05": [{"id": 2}],
			"2024-01-02": [{"id": 3}],
			"skip": 7,
			"2024-01-09": [{"id": 4}]
		},
		"dailyTasksNote": {"2024-01-01": []}
	}`))
	legacy, ok := doc.(Legacy)
	require.True(t, ok, "expected legacy document, got %T", doc)
	assert.Equal(t, []string{"2024-01-05", "2024-01-02", "skip", "2024-01-09"}, legacy.Store.DailyOrder)

	store := Migrate(legacy.Store, fixedNow)

	var dates []string
	for _, task := range store.AllTasks {
		dates = append(dates, *task.Date)
	}
	assert.Equal(t, []string{"2024-01-05", "2024-01-02", "2024-01-09"}, dates)
}

func TestMigrate_IsIdempotentForEmptyLegacy(t *testing.T) {
	raw := `{"todayTasks":[],"tomorrowTasks":[],"dailyTasks":{}}`

	first, migrated := Resolve(Detect([]byte(raw)), fixedNow)
	require.True(t, migrated)
	second, _ := Resolve(Detect([]byte(raw)), fixedNow)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated migration differs (-first +second):\n%s", diff)
	}

	want := entities.NewStore()
	want.CurrentDate = strPtr("2024-01-31")
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("migrated store mismatch (-want +got):\n%s", diff)
	}
}

func TestMigrate_DoesNotMutateInput(t *testing.T) {
	legacy := ParseLegacy(mustDecode(t, `{"todayTasks":[{"id":1}]}`).(map[string]any))

	_ = Migrate(legacy, fixedNow)

	assert.Nil(t, legacy.TodayTasks[0].Date)
}

func TestResolve_UnrecognizedYieldsDefault(t *testing.T) {
	store, migrated := Resolve(Detect([]byte(`not json`)), fixedNow)

	assert.False(t, migrated)
	if diff := cmp.Diff(entities.NewStore(), store); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestCanonical_IgnoresKeyOrder(t *testing.T) {
	a, err := Coerce(mustDecode(t, `{"allTasks":[{"text":"a","id":1}],"taskIdCounter":2,"archivedTasks":{"y":1,"x":{"b":1,"a":2}}}`))
	require.NoError(t, err)
	b, err := Coerce(mustDecode(t, `{"archivedTasks":{"x":{"a":2,"b":1},"y":1},"taskIdCounter":2,"allTasks":[{"id":1,"text":"a"}]}`))
	require.NoError(t, err)

	ca, err := Canonical(a)
	require.NoError(t, err)
	cb, err := Canonical(b)
	require.NoError(t, err)

	assert.Equal(t, string(ca), string(cb))
}

func TestPretty_DefaultLayout(t *testing.T) {
	out, err := Pretty(entities.NewStore())
	require.NoError(t, err)

	want := "{\n" +
		"  \"allTasks\": [],\n" +
		"  \"taskIdCounter\": 1,\n" +
		"  \"currentDate\": null,\n" +
		"  \"taskExpirationDays\": 7,\n" +
		"  \"archivedTasks\": {}\n" +
		"}\n"
	assert.Equal(t, want, string(out))
}

func TestPretty_NoHTMLEscaping(t *testing.T) {
	store := entities.NewStore()
	store.AllTasks = []entities.Task{{Extra: map[string]any{"text": "a < b & c"}}}

	out, err := Pretty(store)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"a < b & c"`)
}

func TestTaskArray(t *testing.T) {
	tasks, err := TaskArray(mustDecode(t, `[{"id":1},{"text":"x"}]`))
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = TaskArray(mustDecode(t, `[{"id":1},null,3]`))
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	_, err = TaskArray(mustDecode(t, `{"id":1}`))
	require.ErrorIs(t, err, entities.ErrInvalidInput)
}
