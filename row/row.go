// Package row holds the ordered set of fields a query is derived from.
//
// Order matters: statement column lists follow it, and masked filter
// templates bind their placeholders to fields by position in it.
package row

import (
	"fmt"

	"github.com/syssam/rowsql/field"
)

// Row maps column names to fields and remembers the order in which names
// were first set.
type Row struct {
	order  []string
	fields map[string]*field.Field
}

// New returns an empty Row.
func New() *Row {
	return &Row{fields: make(map[string]*field.Field)}
}

// Of returns a Row holding fs keyed by their column names, in order.
func Of(fs ...*field.Field) *Row {
	r := New()
	for _, f := range fs {
		r.Set(f.Column(), f)
	}
	return r
}

// Set stores f under name. A new name is appended to the order; an existing
// name keeps its position and has its field replaced.
func (r *Row) Set(name string, f *field.Field) {
	if _, ok := r.fields[name]; !ok {
		r.order = append(r.order, name)
	}
	r.fields[name] = f
}

// Get returns the field stored under name, or nil.
func (r *Row) Get(name string) *field.Field {
	return r.fields[name]
}

// Lookup returns the field stored under name and whether it exists.
func (r *Row) Lookup(name string) (*field.Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// At returns the i-th field in insertion order. It panics if i is out of
// range.
func (r *Row) At(i int) *field.Field {
	if i < 0 || i >= len(r.order) {
		panic(fmt.Sprintf("row: position %d out of range [0:%d]", i, len(r.order)))
	}
	return r.fields[r.order[i]]
}

// Len returns the number of fields.
func (r *Row) Len() int { return len(r.order) }

// Names returns the field names in insertion order.
func (r *Row) Names() []string {
	return append([]string(nil), r.order...)
}

// Each calls fn for every field in insertion order.
func (r *Row) Each(fn func(name string, f *field.Field)) {
	for _, name := range r.order {
		fn(name, r.fields[name])
	}
}

// Clear sets every field to NULL.
func (r *Row) Clear() {
	for _, f := range r.fields {
		f.SetNull()
	}
}
