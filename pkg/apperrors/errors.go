// Package apperrors defines the typed failures surfaced by the query pipeline.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrNoSuitableTable = errors.New("no suitable table found for query")
	ErrEmptyUpload     = errors.New("uploaded file contains no rows")
)

// SchemaError indicates a malformed or empty schema. Surfaced as a client error.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema: %s", e.Reason)
}

// SQLRejectedError indicates the generated SQL failed safety or structural
// validation. It carries every accumulated validation reason; the query is
// never partially executed.
type SQLRejectedError struct {
	Reasons []string
}

func (e *SQLRejectedError) Error() string {
	return fmt.Sprintf("generated SQL rejected: %s", strings.Join(e.Reasons, "; "))
}

// ExecutionError indicates the datastore rejected the repaired query.
// Not retried automatically - re-running the same malformed query fails identically.
type ExecutionError struct {
	Detail string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %s", e.Detail)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
