package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

const (
	taskIDField   = "id"
	taskDateField = "date"
)

// Task is a client-defined document. Only id and date carry meaning for
// the server; every other field rides along in Extra untouched.
type Task struct {
	ID    *int64
	Date  *string
	Extra map[string]any
}

// TaskFromMap splits a decoded JSON object into known fields and extras.
// An id or date of an unexpected type, or an id not written as a plain
// int64 literal, stays in Extra verbatim.
func TaskFromMap(m map[string]any) Task {
	task := Task{Extra: make(map[string]any, len(m))}
	for key, value := range m {
		switch key {
		case taskIDField:
			if id, ok := exactInteger(value); ok {
				task.ID = &id
				continue
			}
		case taskDateField:
			if date, ok := value.(string); ok {
				task.Date = &date
				continue
			}
		}
		task.Extra[key] = value
	}
	return task
}

// Map merges the known fields back into a single JSON object.
func (t Task) Map() map[string]any {
	m := make(map[string]any, len(t.Extra)+2)
	for key, value := range t.Extra {
		m[key] = value
	}
	if t.ID != nil {
		m[taskIDField] = *t.ID
	}
	if t.Date != nil {
		m[taskDateField] = *t.Date
	}
	return m
}

// IDValue reports the integer id, if the task has one. Ids kept verbatim
// in Extra count when they are integral, clamped to the int64 range.
func (t Task) IDValue() (int64, bool) {
	if t.ID == nil {
		return IntegerValue(t.Extra[taskIDField])
	}
	return *t.ID, true
}

// DateValue reports the date string, if the task has one.
func (t Task) DateValue() (string, bool) {
	if t.Date == nil {
		return "", false
	}
	return *t.Date, true
}

// WithDate returns a copy of t dated day. Extra is copied so the result
// never aliases the source.
func (t Task) WithDate(day string) Task {
	out := Task{Extra: make(map[string]any, len(t.Extra))}
	for key, value := range t.Extra {
		if key == taskDateField {
			continue
		}
		out.Extra[key] = value
	}
	if t.ID != nil {
		id := *t.ID
		out.ID = &id
	}
	out.Date = &day
	return out
}

// MarshalJSON implements json.Marshaler. HTML escaping is left to the
// enclosing encoder.
func (t Task) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t.Map()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON implements json.Unmarshaler. Numbers are kept textual so
// large ids and client values survive a round trip.
func (t *Task) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	if m == nil {
		m = map[string]any{}
	}
	*t = TaskFromMap(m)
	return nil
}

// IntegerValue reports whether v is an integral JSON number. Integral
// values outside the int64 range are clamped to its bounds.
func IntegerValue(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil && (!errors.Is(err, strconv.ErrRange) || f == 0) {
			return 0, false
		}
		return clampFloat(f)
	case float64:
		return clampFloat(n)
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func clampFloat(f float64) (int64, bool) {
	switch {
	case math.IsNaN(f) || f != math.Trunc(f):
		return 0, false
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	default:
		return int64(f), true
	}
}

// exactInteger accepts only values that re-encode to the same text, so a
// task id like 1.0 or 1e20 round-trips unchanged.
func exactInteger(v any) (int64, bool) {
	if n, ok := v.(json.Number); ok {
		i, err := n.Int64()
		if err != nil || strconv.FormatInt(i, 10) != string(n) {
			return 0, false
		}
		return i, true
	}
	if f, ok := v.(float64); ok && (f >= math.MaxInt64 || f <= math.MinInt64) {
		return 0, false
	}
	return IntegerValue(v)
}
