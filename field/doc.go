// Package field provides typed, nullable column values tagged with the
// statements they take part in.
//
//	age := field.Int("Age", field.SelectRead|field.SelectWhere)
//	age.SetInt(30)
//	age.Literal() // 30
//
//	name := field.String("Name", field.All)
//	name.SetString("Eve")
//	name.Literal() // 'Eve'
//
// Values are stored as text. Int, Float and Bool never fail: text that does
// not parse reads as the zero value. Booleans are stored as "1" and "0".
package field
