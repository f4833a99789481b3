package row_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowsql/field"
	"github.com/syssam/rowsql/row"
)

func TestSetPreservesFirstInsertionOrder(t *testing.T) {
	r := row.New()
	r.Set("A", field.Int("A", field.All))
	r.Set("B", field.String("B", field.All))
	r.Set("C", field.Bool("C", field.All))
	for i := 0; i < 5; i++ {
		r.Set("A", field.Int("A", field.SelectRead))
		r.Set("C", field.Bool("C", field.SelectRead))
	}
	assert.Equal(t, []string{"A", "B", "C"}, r.Names())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, field.SelectRead, r.Get("A").Flags(), "overwrite replaces the field")
	assert.Same(t, r.Get("A"), r.At(0))
	assert.Same(t, r.Get("B"), r.At(1))
}

func TestOf(t *testing.T) {
	age := field.Int("Age", field.All)
	name := field.String("Name", field.All)
	r := row.Of(age, name)
	assert.Equal(t, []string{"Age", "Name"}, r.Names())
	assert.Same(t, age, r.Get("Age"))
}

func TestLookup(t *testing.T) {
	r := row.Of(field.Int("Age", field.All))
	f, ok := r.Lookup("Age")
	require.True(t, ok)
	assert.Equal(t, "Age", f.Column())
	_, ok = r.Lookup("Missing")
	assert.False(t, ok)
	assert.Nil(t, r.Get("Missing"))
}

func TestAtOutOfRange(t *testing.T) {
	r := row.Of(field.Int("Age", field.All))
	assert.Panics(t, func() { r.At(1) })
	assert.Panics(t, func() { r.At(-1) })
}

func TestEach(t *testing.T) {
	r := row.New()
	for _, name := range []string{"z", "a", "m"} {
		r.Set(name, field.String(name, field.All))
	}
	var got []string
	r.Each(func(name string, f *field.Field) {
		assert.Equal(t, name, f.Column())
		got = append(got, name)
	})
	assert.Equal(t, []string{"z", "a", "m"}, got)
}

func TestClear(t *testing.T) {
	r := row.Of(field.Int("Age", field.All), field.String("Name", field.All))
	r.Get("Age").SetInt(3)
	r.Get("Name").SetString("x")
	r.Clear()
	assert.True(t, r.Get("Age").IsNull())
	assert.True(t, r.Get("Name").IsNull())
}

func TestNamesIsACopy(t *testing.T) {
	r := row.Of(field.Int("Age", field.All))
	names := r.Names()
	names[0] = "changed"
	assert.Equal(t, []string{"Age"}, r.Names())
}
