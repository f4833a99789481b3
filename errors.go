package rowsql

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a SELECT ran successfully but matched no rows.
	ErrNotFound = errors.New("rowsql: no rows found")

	// ErrTemplateMismatch is returned when a filter template does not line up
	// with the fields declared on the row it is applied to.
	ErrTemplateMismatch = errors.New("rowsql: filter template does not match row")
)

// NotFoundError is returned when a SELECT against a table yields zero rows.
type NotFoundError struct {
	table string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("rowsql: no rows found in %s", e.table)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table expression the SELECT ran against.
func (e *NotFoundError) Table() string {
	return e.table
}

// NewNotFoundError returns a new NotFoundError for the given table expression.
func NewNotFoundError(table string) *NotFoundError {
	return &NotFoundError{table: table}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// TemplateError describes a filter template that asks for more placeholders
// than the row declares, or a value mask with no field mask before it.
type TemplateError struct {
	Template string
	Index    int // Zero-based placeholder that failed.
	Fields   int // Number of fields on the row.
	Reason   string
}

// Error returns the error string.
func (e *TemplateError) Error() string {
	return fmt.Sprintf("rowsql: template %q placeholder %d (row has %d fields): %s", e.Template, e.Index, e.Fields, e.Reason)
}

// Is reports whether the target error matches ErrTemplateMismatch.
func (e *TemplateError) Is(err error) bool {
	return err == ErrTemplateMismatch
}

// IsTemplateMismatch returns true if the error is a TemplateError.
func IsTemplateMismatch(err error) bool {
	if err == nil {
		return false
	}
	var e *TemplateError
	return errors.As(err, &e) || errors.Is(err, ErrTemplateMismatch)
}

// QueryError wraps an engine failure with the statement that caused it.
type QueryError struct {
	Table string // Table expression the statement targeted
	Op    string // Operation (select, insert, update, delete, fetch)
	Stmt  string // Statement text sent to the engine
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	return fmt.Sprintf("rowsql: %s %s: %v", e.Op, e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(table, op, stmt string, err error) *QueryError {
	return &QueryError{Table: table, Op: op, Stmt: stmt, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "rowsql: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("rowsql: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// Status is the coarse outcome of a statement.
type Status int

// Statement outcomes.
const (
	StatusOK Status = iota
	StatusNotFound
	StatusFailed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not found"
	default:
		return "failed"
	}
}

// StatusOf maps an error returned by a query verb to its Status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case IsNotFound(err):
		return StatusNotFound
	default:
		return StatusFailed
	}
}
