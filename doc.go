// Package rowsql builds and runs SQL CRUD statements from a declarative row
// model instead of hand-written SQL per entity.
//
// A caller declares the columns of an entity once as typed fields, tags each
// field with the statements it takes part in, and lets a query derive the
// SELECT, INSERT, UPDATE and DELETE text from that declaration:
//
//	r := row.New()
//	r.Set("fkCol", field.Int("fkCol", field.All))
//	r.Set("AttributeName", field.String("AttributeName", field.All))
//
//	q := query.New(drv, "XAttribute", r)
//	r.Get("fkCol").SetInt(7)
//	if err := q.Select(ctx); rowsql.IsNotFound(err) {
//	    // query ran, nothing matched
//	}
//
// # Packages
//
//   - field: typed, nullable column values with role flags
//   - row: insertion-ordered column name to field mapping
//   - query: statement derivation, masked filter templates and the cursor
//   - dialect/sql: the database/sql backed connection boundary
//   - store: opening, migrating and closing a database
//   - attribute: a key/value attribute table client built on query
//
// # Errors
//
// Every verb returns an error. ErrNotFound separates "the statement ran and
// matched nothing" from an engine failure; StatusOf maps an error back to a
// coarse Status code.
//
// Values are inlined into statement text without escaping. Callers must not
// pass untrusted input through string fields or filter templates.
package rowsql
