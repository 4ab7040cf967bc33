// Package parsererror defines the error taxonomy of the ingestion pipeline.
// Structural errors fail the whole import; row-level problems never become
// errors at all (bad rows are skipped by the parser).
package parsererror

import "fmt"

// ValidationError represents a structural parse failure that aborts an
// import, such as a missing mandatory column. Reason names the missing
// requirement so the caller can surface it verbatim.
type ValidationError struct {
	Source string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Source, e.Reason)
}

// ParseError represents a failure to interpret a specific field value.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StoreError represents a persistence failure during upsert.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
