package dialect

import (
	"context"
	"database/sql/driver"
)

// Dialect names for the supported engines.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two database operations a statement needs: Exec runs
// a statement for effect and Query runs a statement that returns rows.
type ExecQuerier interface {
	// Exec executes a query that does not return records. v, if not nil,
	// receives the driver result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows into v.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for the
// connection boundary.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in a transaction.
type Tx interface {
	ExecQuerier
	driver.Tx
}
