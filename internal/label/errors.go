package label

import (
	"fmt"
	"strings"
	"time"
)

// ParseError reports a malformed or missing date or coordinate value.
type ParseError struct {
	Field string
	Value string
	Row   int
	Err   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s %q", e.Field, e.Value)
	if e.Row > 0 {
		msg = fmt.Sprintf("row %d: %s", e.Row, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a sighting or tile without one of its identity fields.
type ValidationError struct {
	Kind  string
	Row   int
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %d: missing %s", e.Kind, e.Row, e.Field)
}

var dateLayouts = []string{
	"2006/01/02 15:04:05-07",
	"2006/01/02 15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05",
	"20060102T150405",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006",
}

// ParseDate parses value with the layouts found in sighting extracts and tile
// names, discarding the time of day.
func ParseDate(field, value string, row int) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &ParseError{Field: field, Value: value, Row: row, Err: fmt.Errorf("empty value")}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, &ParseError{Field: field, Value: value, Row: row, Err: fmt.Errorf("unknown date layout")}
}
