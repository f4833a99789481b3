package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowsql"
	"github.com/syssam/rowsql/field"
	"github.com/syssam/rowsql/row"
)

func TestExpand(t *testing.T) {
	people := func() *row.Row {
		r := row.Of(field.Int("Age", field.Where), field.String("Name", field.Where))
		r.Get("Age").SetInt(30)
		r.Get("Name").SetString("Eve")
		return r
	}
	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"two placeholders", "& <= ? AND & = ?", "Age <= 30 AND Name = 'Eve'"},
		{"fewer placeholders than fields", "& > ?", "Age > 30"},
		{"no placeholders", "1 = 1", "1 = 1"},
		{"parenthesized", "(& BETWEEN 0 AND ?) OR & LIKE ?", "(Age BETWEEN 0 AND 30) OR Name LIKE 'Eve'"},
		{"trailing text", "& = ? AND & = ? LIMIT 1", "Age = 30 AND Name = 'Eve' LIMIT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.tmpl, people())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandIsPositional(t *testing.T) {
	// Name declared first binds to the first placeholder, whatever its flags.
	r := row.New()
	r.Set("Name", field.String("Name", field.SelectRead))
	r.Set("Age", field.Int("Age", 0))
	r.Get("Name").SetString("Eve")
	r.Get("Age").SetInt(30)
	got, err := Expand("& = ? AND & <= ?", r)
	require.NoError(t, err)
	assert.Equal(t, "Name = 'Eve' AND Age <= 30", got)
}

func TestExpandDoesNotRescanValues(t *testing.T) {
	r := row.Of(field.String("q", field.Where), field.Int("n", field.Where))
	r.Get("q").SetString("& ?")
	r.Get("n").SetInt(1)
	got, err := Expand("& = ? AND & = ?", r)
	require.NoError(t, err)
	assert.Equal(t, "q = '& ?' AND n = 1", got)
}

func TestExpandNullValue(t *testing.T) {
	r := row.Of(field.Int("Age", field.Where))
	got, err := Expand("& IS ?", r)
	require.NoError(t, err)
	assert.Equal(t, "Age IS NULL", got)
}

func TestExpandMismatch(t *testing.T) {
	r := row.Of(field.Int("Age", field.Where))
	r.Get("Age").SetInt(1)

	_, err := Expand("& > ? AND & < ?", r)
	var te *rowsql.TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 1, te.Index)
	assert.Equal(t, 1, te.Fields)
	assert.Equal(t, "no field for placeholder", te.Reason)

	_, err = Expand("Age > ?", r)
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 0, te.Index)
	assert.Equal(t, "value mask without field mask", te.Reason)

	_, err = Expand("& = ?", row.New())
	assert.ErrorIs(t, err, rowsql.ErrTemplateMismatch)
}
