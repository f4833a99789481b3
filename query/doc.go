// Package query derives SQL statements from a row of flagged fields and runs
// them through a dialect.ExecQuerier.
//
// # Statements
//
// For a row [A(SelectRead), B(InsertWrite), C(SelectRead|SelectWhere)] over
// table T, with C set to 5:
//
//	SELECT A, C FROM T WHERE C = 5
//	INSERT INTO T (B) VALUES (...)
//
// Column lists and filters always follow the row's insertion order. Fields
// whose value is NULL are left out of generated filters.
//
// # Masked templates
//
// When equality conjunctions are not enough, WithTemplate supplies the WHERE
// clause as a template of "&" (column) and "?" (value) masks bound to the
// row's fields by position:
//
//	r := row.Of(field.Int("Age", field.Where), field.String("Name", field.Where))
//	q := query.New(drv, "people", r, query.WithTemplate("& <= ? AND & = ?"))
//
// The row must declare its fields in the order the template uses them.
//
// # Reading
//
// Select runs the statement and fetches the first row into the SelectRead
// fields; Fetch reads the following ones. Exhausting the result, or calling
// Insert, Update, Delete or ClearAll, closes it.
//
//	if err := q.Select(ctx); err != nil {
//	    if rowsql.IsNotFound(err) {
//	        ...
//	    }
//	    return err
//	}
//	for {
//	    use(q.Field("Name").String())
//	    ok, err := q.Fetch()
//	    if err != nil || !ok {
//	        break
//	    }
//	}
//
// Values are written into statement text without escaping.
package query
