// Package dialect defines the connection boundary used by the query layer.
//
// A query never talks to database/sql directly. It hands a finished
// statement string to an ExecQuerier, either for effect (Exec) or to get a
// forward-only result back (Query). The dialect/sql package provides the
// database/sql backed implementation; tests substitute go-sqlmock or an
// in-memory SQLite database.
//
// # Dialect Constants
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// Statements built by the query package carry their values inline, so args
// is always an empty []any.
package dialect
