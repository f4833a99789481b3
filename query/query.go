package query

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/syssam/rowsql"
	"github.com/syssam/rowsql/dialect"
	"github.com/syssam/rowsql/dialect/sql"
	"github.com/syssam/rowsql/field"
	"github.com/syssam/rowsql/row"
)

// State is the read state of a Query.
type State int

// Query states.
const (
	// Idle means no SELECT result is open.
	Idle State = iota
	// HasCursor means a SELECT result is open and Fetch may advance it.
	HasCursor
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == HasCursor {
		return "has-cursor"
	}
	return "idle"
}

// Query derives and runs SELECT, INSERT, UPDATE and DELETE statements for a
// table from the fields of a row.
//
// A Query is meant to be long-lived and reused: set filter values on its row,
// call a verb, read the fields back, and ClearAll before the next call. It is
// not safe for concurrent use.
type Query struct {
	drv    dialect.ExecQuerier
	table  string
	tmpl   string
	clause string
	row    *row.Row
	cursor *sql.Cursor
	log    *slog.Logger
	id     uuid.UUID
}

// Option configures a Query.
type Option func(*Query)

// WithTemplate sets a masked filter template used for every WHERE clause in
// place of the equality conjunction derived from field flags. See Expand.
func WithTemplate(tmpl string) Option {
	return func(q *Query) {
		q.tmpl = tmpl
	}
}

// WithClause sets a suffix appended verbatim to SELECT statements, such as
// an ORDER BY or GROUP BY clause.
func WithClause(clause string) Option {
	return func(q *Query) {
		q.clause = clause
	}
}

// WithLogger sets the logger statements are logged to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(q *Query) {
		q.log = l
	}
}

// New returns a Query over table backed by r. table is used verbatim and
// may itself be a join expression.
func New(drv dialect.ExecQuerier, table string, r *row.Row, opts ...Option) *Query {
	q := &Query{
		drv:   drv,
		table: table,
		row:   r,
		id:    uuid.New(),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.log == nil {
		q.log = slog.Default()
	}
	q.log = q.log.With("table", table, "query_id", q.id.String())
	return q
}

// Table returns the table expression.
func (q *Query) Table() string { return q.table }

// Template returns the masked filter template, if any.
func (q *Query) Template() string { return q.tmpl }

// Clause returns the SELECT suffix, if any.
func (q *Query) Clause() string { return q.clause }

// Row returns the row the query is derived from.
func (q *Query) Row() *row.Row { return q.row }

// Field returns the named field of the row, or nil.
func (q *Query) Field(name string) *field.Field { return q.row.Get(name) }

// ID returns the identifier attached to the query's log records.
func (q *Query) ID() uuid.UUID { return q.id }

// State reports whether a SELECT result is open.
func (q *Query) State() State {
	if q.cursor != nil {
		return HasCursor
	}
	return Idle
}

// Select runs the SELECT statement and fetches the first row into the
// fields flagged SelectRead. It returns an error satisfying
// rowsql.IsNotFound if the statement matched no rows; the fields are then
// NULL. Further rows are read with Fetch.
func (q *Query) Select(ctx context.Context) error {
	if err := q.closeCursor(); err != nil {
		return rowsql.NewQueryError(q.table, "select", "", err)
	}
	stmt, err := q.SelectStmt()
	if err != nil {
		return err
	}
	q.log.DebugContext(ctx, "select", "stmt", stmt)
	var rows sql.Rows
	if err := q.drv.Query(ctx, stmt, []any{}, &rows); err != nil {
		return rowsql.NewQueryError(q.table, "select", stmt, err)
	}
	cur, err := sql.NewCursor(rows.ColumnScanner)
	if err != nil {
		return rowsql.NewQueryError(q.table, "select", stmt, err)
	}
	q.cursor = cur
	ok, err := q.Fetch()
	switch {
	case err != nil:
		return err
	case !ok:
		return rowsql.NewNotFoundError(q.table)
	}
	return nil
}

// Fetch advances the open SELECT result. On a new row it copies each
// SelectRead column, looked up by name, into its field and returns true.
// When the result is exhausted, or no result is open, it closes the result,
// sets every field to NULL and returns false.
func (q *Query) Fetch() (bool, error) {
	if q.cursor == nil {
		q.row.Clear()
		return false, nil
	}
	if !q.cursor.Next() {
		err := errors.Join(q.cursor.Err(), q.cursor.Close())
		q.cursor = nil
		q.row.Clear()
		if err != nil {
			return false, rowsql.NewQueryError(q.table, "fetch", "", err)
		}
		return false, nil
	}
	q.row.Each(func(_ string, f *field.Field) {
		if !f.Has(field.SelectRead) {
			return
		}
		if v, ok := q.cursor.ColumnText(f.Column()); ok {
			f.SetString(v)
		} else {
			f.SetNull()
		}
	})
	return true, nil
}

// Insert runs the INSERT statement.
func (q *Query) Insert(ctx context.Context) error {
	return q.exec(ctx, "insert", q.InsertStmt)
}

// Update runs the UPDATE statement.
func (q *Query) Update(ctx context.Context) error {
	return q.exec(ctx, "update", q.UpdateStmt)
}

// Delete runs the DELETE statement.
func (q *Query) Delete(ctx context.Context) error {
	return q.exec(ctx, "delete", q.DeleteStmt)
}

// ClearAll closes any open SELECT result and sets every field to NULL.
func (q *Query) ClearAll() error {
	err := q.closeCursor()
	q.row.Clear()
	if err != nil {
		return rowsql.NewQueryError(q.table, "clear", "", err)
	}
	return nil
}

func (q *Query) exec(ctx context.Context, op string, build func() (string, error)) error {
	if err := q.closeCursor(); err != nil {
		return rowsql.NewQueryError(q.table, op, "", err)
	}
	stmt, err := build()
	if err != nil {
		return err
	}
	q.log.DebugContext(ctx, op, "stmt", stmt)
	if err := q.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
		return rowsql.NewQueryError(q.table, op, stmt, err)
	}
	return nil
}

func (q *Query) closeCursor() error {
	if q.cursor == nil {
		return nil
	}
	err := q.cursor.Close()
	q.cursor = nil
	return err
}
