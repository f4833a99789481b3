package field

// Type is the value type of a field. It is fixed when the field is created.
type Type uint8

// Field types.
const (
	TypeString Type = iota
	TypeInteger
	TypeDouble
	TypeBool
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Numeric reports whether the type is rendered as an unquoted number.
func (t Type) Numeric() bool {
	return t != TypeString
}
