// Package schema recognises the two on-disk store layouts, converts the
// legacy layout into the current one and coerces arbitrary JSON values
// into a well-formed Store.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/taskmaster/taskstore/internal/domain/entities"
)

// Field names of the current and legacy layouts.
const (
	fieldAllTasks           = "allTasks"
	fieldTaskIDCounter      = "taskIdCounter"
	fieldCurrentDate        = "currentDate"
	fieldTaskExpirationDays = "taskExpirationDays"
	fieldArchivedTasks      = "archivedTasks"

	fieldTodayTasks    = "todayTasks"
	fieldTomorrowTasks = "tomorrowTasks"
	fieldDailyTasks    = "dailyTasks"
	fieldLastSavedDate = "lastSavedDate"
)

// Document is the result of format detection: one of Current, Legacy or
// Unrecognized.
type Document interface {
	document()
}

// Current is a document carrying the allTasks field.
type Current struct {
	Fields map[string]any
}

// Legacy is a JSON object without allTasks.
type Legacy struct {
	Store entities.LegacyStore
}

// Unrecognized is anything that is not a JSON object.
type Unrecognized struct {
	Err error
}

func (Current) document()      {}
func (Legacy) document()       {}
func (Unrecognized) document() {}

// Decode parses a single JSON value, keeping numbers textual.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode store document: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode store document: trailing data after JSON value")
	}
	return v, nil
}

// Detect classifies raw store bytes. The presence of allTasks alone marks
// a document as current, however malformed the rest of it is.
func Detect(data []byte) Document {
	v, err := Decode(data)
	if err != nil {
		return Unrecognized{Err: err}
	}
	doc := Classify(v)
	if legacy, ok := doc.(Legacy); ok {
		legacy.Store.DailyOrder = memberOrder(data, fieldDailyTasks)
		return legacy
	}
	return doc
}

// Classify is Detect for an already decoded value.
func Classify(v any) Document {
	m, ok := v.(map[string]any)
	if !ok {
		return Unrecognized{Err: fmt.Errorf("store document is %s, not an object", kindOf(v))}
	}
	if _, ok := m[fieldAllTasks]; ok {
		return Current{Fields: m}
	}
	return Legacy{Store: ParseLegacy(m)}
}

// memberOrder lists the keys of the object stored under field of the
// top-level object in data, in document order. A repeated key keeps its
// first position, and a repeated field uses its last occurrence, matching
// what Decode keeps.
func memberOrder(data []byte, field string) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil
		}
		if tok == field {
			keys = objectKeys(value)
		}
	}
	return keys
}

func objectKeys(data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	keys := []string{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil
		}
		if key, ok := tok.(string); ok && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case json.Number, float64:
		return "a number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
