package query

import (
	"strings"

	"github.com/syssam/rowsql"
	"github.com/syssam/rowsql/row"
)

// Placeholder tokens of a masked filter template.
const (
	FieldMask = '&'
	ValueMask = '?'
)

// Expand substitutes the fields of r into a masked filter template.
//
// The template is scanned left to right for value masks. The n-th value mask
// binds the n-th field of r in insertion order: the first field mask between
// the previous value mask and this one is replaced by the field's column, and
// the value mask by the field's literal. For the row [Age=30, Name="Eve"]:
//
//	Expand("& <= ? AND & = ?", r) // Age <= 30 AND Name = 'Eve'
//
// Text produced by a substitution is never rescanned. Fields beyond the
// last placeholder are ignored. A template with more placeholders than r has
// fields, or a value mask with no field mask before it, is rejected with a
// *rowsql.TemplateError.
func Expand(tmpl string, r *row.Row) (string, error) {
	var (
		b   strings.Builder
		pos int
	)
	for n := 0; ; n++ {
		v := strings.IndexByte(tmpl[pos:], ValueMask)
		if v < 0 {
			break
		}
		v += pos
		if n >= r.Len() {
			return "", &rowsql.TemplateError{Template: tmpl, Index: n, Fields: r.Len(), Reason: "no field for placeholder"}
		}
		f := strings.IndexByte(tmpl[pos:v], FieldMask)
		if f < 0 {
			return "", &rowsql.TemplateError{Template: tmpl, Index: n, Fields: r.Len(), Reason: "value mask without field mask"}
		}
		f += pos
		fd := r.At(n)
		b.WriteString(tmpl[pos:f])
		b.WriteString(fd.Column())
		b.WriteString(tmpl[f+1 : v])
		b.WriteString(fd.Literal())
		pos = v + 1
	}
	b.WriteString(tmpl[pos:])
	return b.String(), nil
}
