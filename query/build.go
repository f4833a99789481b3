package query

import (
	"strings"

	"github.com/syssam/rowsql/field"
)

// SelectColumns returns the SelectRead columns, comma-separated, in row order.
func (q *Query) SelectColumns() string {
	return strings.Join(q.columns(field.SelectRead), ", ")
}

// InsertColumns returns the InsertWrite columns, comma-separated, in row order.
func (q *Query) InsertColumns() string {
	return strings.Join(q.columns(field.InsertWrite), ", ")
}

// InsertLiterals returns the literals of the InsertWrite fields,
// comma-separated, in row order.
func (q *Query) InsertLiterals() string {
	var lits []string
	q.each(field.InsertWrite, func(f *field.Field) {
		lits = append(lits, f.Literal())
	})
	return strings.Join(lits, ", ")
}

// UpdateAssignments returns "column = literal" for every UpdateWrite field,
// comma-separated, in row order.
func (q *Query) UpdateAssignments() string {
	var set []string
	q.each(field.UpdateWrite, func(f *field.Field) {
		set = append(set, f.Column()+" = "+f.Literal())
	})
	return strings.Join(set, ", ")
}

// Where returns the filter for the statement identified by flag, one of
// SelectWhere, UpdateWhere or DeleteWhere. With a template set the template
// is expanded and flag is ignored. Otherwise the result is the conjunction
// of "column = literal" over non-null fields carrying flag; null fields are
// left out rather than rendered as IS NULL.
func (q *Query) Where(flag field.Flag) (string, error) {
	if q.tmpl != "" {
		return Expand(q.tmpl, q.row)
	}
	var preds []string
	q.each(flag, func(f *field.Field) {
		if !f.IsNull() {
			preds = append(preds, f.Column()+" = "+f.Literal())
		}
	})
	return strings.Join(preds, " AND "), nil
}

// SelectStmt returns the SELECT statement text.
func (q *Query) SelectStmt() (string, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.SelectColumns())
	b.WriteString(" FROM ")
	b.WriteString(q.table)
	if err := q.writeWhere(&b, field.SelectWhere); err != nil {
		return "", err
	}
	if q.clause != "" {
		b.WriteByte(' ')
		b.WriteString(q.clause)
	}
	return b.String(), nil
}

// InsertStmt returns the INSERT statement text. Without InsertWrite fields
// the statement is "INSERT INTO table ()" with no VALUES clause.
func (q *Query) InsertStmt() (string, error) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(q.table)
	b.WriteString(" (")
	b.WriteString(q.InsertColumns())
	b.WriteByte(')')
	if lits := q.InsertLiterals(); lits != "" {
		b.WriteString(" VALUES (")
		b.WriteString(lits)
		b.WriteByte(')')
	}
	return b.String(), nil
}

// UpdateStmt returns the UPDATE statement text.
func (q *Query) UpdateStmt() (string, error) {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(q.table)
	b.WriteString(" SET ")
	b.WriteString(q.UpdateAssignments())
	if err := q.writeWhere(&b, field.UpdateWhere); err != nil {
		return "", err
	}
	return b.String(), nil
}

// DeleteStmt returns the DELETE statement text.
func (q *Query) DeleteStmt() (string, error) {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(q.table)
	if err := q.writeWhere(&b, field.DeleteWhere); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (q *Query) writeWhere(b *strings.Builder, flag field.Flag) error {
	where, err := q.Where(flag)
	if err != nil {
		return err
	}
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	return nil
}

func (q *Query) columns(flag field.Flag) []string {
	var cols []string
	q.each(flag, func(f *field.Field) {
		cols = append(cols, f.Column())
	})
	return cols
}

// each calls fn for the fields carrying flag, in row order.
func (q *Query) each(flag field.Flag, fn func(*field.Field)) {
	q.row.Each(func(_ string, f *field.Field) {
		if f.Has(flag) {
			fn(f)
		}
	})
}
