package models

import (
	"errors"
	"fmt"
)

// ErrEmptyGroup marks an aggregation group without samples. It is only ever
// logged; the aggregators return their documented defaults instead.
var ErrEmptyGroup = errors.New("aggregation group has no samples")

// LoadError reports a corpus document that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load corpus %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError reports a single corpus item that cannot be adapted.
type SchemaError struct {
	// Index is the position of the item in the Sources array
	Index int
	// ID is the record identifier when it could be read
	ID     string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	id := e.ID
	if id == "" {
		id = "<unknown>"
	}
	if e.Err != nil {
		return fmt.Sprintf("source %d (%s): %s: %v", e.Index, id, e.Reason, e.Err)
	}
	return fmt.Sprintf("source %d (%s): %s", e.Index, id, e.Reason)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// TimestampError reports a record without usable creation or update times.
type TimestampError struct {
	ID    string
	Field string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("record %s: missing or unparsable %s", e.ID, e.Field)
}
