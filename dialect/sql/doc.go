// Package sql is the database/sql backed implementation of the connection
// boundary.
//
// A Driver wraps a *sql.DB and exposes the dialect.Driver interface used by
// the query package:
//
//	drv, err := sql.Open("sqlite", "file:attrs.db")
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
//	// Executed for effect.
//	err = drv.Exec(ctx, "DELETE FROM XAttribute WHERE fkCol = 7", []any{}, nil)
//
//	// Executed for rows.
//	var rows sql.Rows
//	err = drv.Query(ctx, "SELECT AttributeValue FROM XAttribute", []any{}, &rows)
//	cur, err := sql.NewCursor(rows.ColumnScanner)
//	for cur.Next() {
//	    v, ok := cur.ColumnText("AttributeValue")
//	    ...
//	}
//
// # Cursors
//
// Cursor reads every result column as text so that a row model can re-read
// values through its own typed accessors. Columns are addressed by name;
// lookups fall back to a case-insensitive match because Postgres folds
// unquoted identifiers to lower case.
//
// # Decorators
//
// StatsDriver counts statements, errors and slow statements. DebugDriver logs
// each statement through log/slog. Both satisfy dialect.Driver and can be
// stacked.
//
// # Errors
//
// Engine failures are wrapped with "dialect/sql: exec:" or "dialect/sql:
// query:" and keep the driver error in their chain. IsUniqueConstraintError
// and its siblings classify lib/pq, pgx, go-sql-driver/mysql and SQLite
// constraint failures.
package sql
