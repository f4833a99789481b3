package field

import "strings"

// Flag marks the statements a field takes part in. A field may carry any
// combination of flags.
type Flag uint8

// Statement roles.
const (
	// SelectRead projects the field in SELECT and fills it on Fetch.
	SelectRead Flag = 1 << iota
	// UpdateWrite assigns the field in UPDATE ... SET.
	UpdateWrite
	// InsertWrite writes the field in INSERT.
	InsertWrite
	// SelectWhere filters SELECT on the field.
	SelectWhere
	// UpdateWhere filters UPDATE on the field.
	UpdateWhere
	// DeleteWhere filters DELETE on the field.
	DeleteWhere
)

// Flag unions.
const (
	ReadWrite = SelectRead | UpdateWrite | InsertWrite
	Where     = SelectWhere | UpdateWhere | DeleteWhere
	All       = ReadWrite | Where
)

var flagNames = []struct {
	f    Flag
	name string
}{
	{SelectRead, "SelectRead"},
	{UpdateWrite, "UpdateWrite"},
	{InsertWrite, "InsertWrite"},
	{SelectWhere, "SelectWhere"},
	{UpdateWhere, "UpdateWhere"},
	{DeleteWhere, "DeleteWhere"},
}

// Has reports whether every bit of o is set in f.
func (f Flag) Has(o Flag) bool {
	return o != 0 && f&o == o
}

// String returns the set bits joined by "|", e.g. "SelectRead|SelectWhere".
func (f Flag) String() string {
	if f == 0 {
		return "None"
	}
	var names []string
	for _, n := range flagNames {
		if f&n.f != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}
