package sql

import (
	"errors"
	"fmt"
	"strings"
)

// Cursor is a forward-only reader over a result set that exposes the current
// row as text, addressed by column name.
type Cursor struct {
	rows   ColumnScanner
	cols   []string
	index  map[string]int
	folded map[string]int
	vals   []NullString
	err    error
	closed bool
}

// NewCursor wraps rows in a Cursor. The cursor owns rows and closes them when
// the result set is exhausted or Close is called.
func NewCursor(rows ColumnScanner) (*Cursor, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("dialect/sql: columns: %w", err), rows.Close())
	}
	c := &Cursor{
		rows:   rows,
		cols:   cols,
		index:  make(map[string]int, len(cols)),
		folded: make(map[string]int, len(cols)),
		vals:   make([]NullString, len(cols)),
	}
	for i, name := range cols {
		if _, ok := c.index[name]; !ok {
			c.index[name] = i
		}
		// Engines such as Postgres fold unquoted identifiers to lower case.
		if _, ok := c.folded[strings.ToLower(name)]; !ok {
			c.folded[strings.ToLower(name)] = i
		}
	}
	return c, nil
}

// Columns returns the result column names in engine order.
func (c *Cursor) Columns() []string {
	return c.cols
}

// Next advances to the next row. It returns false when the result set is
// exhausted, the cursor is closed, or scanning failed; Err reports which.
func (c *Cursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		return false
	}
	dest := make([]any, len(c.vals))
	for i := range c.vals {
		dest[i] = &c.vals[i]
	}
	if err := c.rows.Scan(dest...); err != nil {
		c.err = fmt.Errorf("dialect/sql: scan: %w", err)
		return false
	}
	return true
}

// ColumnText returns the text of the named column in the current row. The
// boolean is false if the column is absent or SQL NULL.
func (c *Cursor) ColumnText(name string) (string, bool) {
	i, ok := c.index[name]
	if !ok {
		if i, ok = c.folded[strings.ToLower(name)]; !ok {
			return "", false
		}
	}
	v := c.vals[i]
	return v.String, v.Valid
}

// Err returns the error, if any, that stopped iteration.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the underlying rows. It is safe to call more than once.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rows.Close()
}
