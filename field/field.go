package field

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Field is a typed, nullable column value. The value is always held as text;
// typed accessors parse on read and format on write. A parse failure reads as
// the zero value of the type.
type Field struct {
	column string
	typ    Type
	flags  Flag
	text   string
	valid  bool
}

// New returns a null field of the given type backing column.
func New(column string, typ Type, flags Flag) *Field {
	return &Field{column: column, typ: typ, flags: flags}
}

// String returns a null string field.
func String(column string, flags Flag) *Field { return New(column, TypeString, flags) }

// Int returns a null integer field.
func Int(column string, flags Flag) *Field { return New(column, TypeInteger, flags) }

// Float returns a null double field.
func Float(column string, flags Flag) *Field { return New(column, TypeDouble, flags) }

// Bool returns a null boolean field.
func Bool(column string, flags Flag) *Field { return New(column, TypeBool, flags) }

// Column returns the column name the field backs.
func (f *Field) Column() string { return f.column }

// Type returns the field type.
func (f *Field) Type() Type { return f.typ }

// Flags returns the statement roles of the field.
func (f *Field) Flags() Flag { return f.flags }

// Has reports whether the field carries all bits of flag.
func (f *Field) Has(flag Flag) bool { return f.flags.Has(flag) }

// IsNull reports whether the field holds SQL NULL.
func (f *Field) IsNull() bool { return !f.valid }

// SetNull clears the value.
func (f *Field) SetNull() {
	f.text, f.valid = "", false
}

// Text returns the stored text and whether the field is non-null.
func (f *Field) Text() (string, bool) { return f.text, f.valid }

// SetString stores v verbatim.
func (f *Field) SetString(v string) {
	f.text, f.valid = v, true
}

// String returns the stored text, or "" for NULL.
func (f *Field) String() string { return f.text }

// SetInt stores v in base 10.
func (f *Field) SetInt(v int64) {
	f.SetString(strconv.FormatInt(v, 10))
}

// Int parses the stored text as an integer. Text with a fractional part is
// truncated. Anything else, including NaN, infinities and values outside the
// int64 range, reads as 0.
func (f *Field) Int() int64 {
	s := strings.TrimSpace(f.text)
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) || x < math.MinInt64 || x >= math.MaxInt64 {
		return 0
	}
	return int64(x)
}

// SetFloat stores v in the shortest form that round-trips.
func (f *Field) SetFloat(v float64) {
	f.SetString(strconv.FormatFloat(v, 'g', -1, 64))
}

// Float parses the stored text as a float, or 0 if it does not parse.
func (f *Field) Float() float64 {
	x, err := strconv.ParseFloat(strings.TrimSpace(f.text), 64)
	if err != nil {
		return 0
	}
	return x
}

// SetBool stores "1" or "0".
func (f *Field) SetBool(v bool) {
	if v {
		f.SetString("1")
	} else {
		f.SetString("0")
	}
}

// Bool reports whether the stored text is exactly "1".
func (f *Field) Bool() bool { return f.text == "1" }

// Literal renders the value as SQL text. Strings are single-quoted without
// escaping, doubles use their shortest float form, integers and booleans
// their integer form. A null field renders as NULL.
//
// A double holding NaN or an infinity renders as NaN, +Inf or -Inf, which
// engines read as identifiers rather than numbers.
func (f *Field) Literal() string {
	if !f.valid {
		return "NULL"
	}
	switch f.typ {
	case TypeString:
		return "'" + f.text + "'"
	case TypeDouble:
		return strconv.FormatFloat(f.Float(), 'g', -1, 64)
	default:
		return strconv.FormatInt(f.Int(), 10)
	}
}
