package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowsql"
	"github.com/syssam/rowsql/field"
	"github.com/syssam/rowsql/row"
)

func attributeRow() *row.Row {
	r := row.Of(
		field.Int("fkCol", field.All),
		field.String("AttributeName", field.All),
		field.Int("AttributeIndex", field.All),
		field.String("AttributeValue", field.All),
	)
	r.Get("fkCol").SetInt(7)
	r.Get("AttributeName").SetString("level")
	r.Get("AttributeIndex").SetInt(0)
	r.Get("AttributeValue").SetString("42")
	return r
}

func TestSelectColumns(t *testing.T) {
	r := row.Of(
		field.Int("A", field.SelectRead),
		field.Int("B", field.InsertWrite),
		field.Int("C", field.SelectRead|field.SelectWhere),
	)
	q := New(nil, "T", r)
	assert.Equal(t, "A, C", q.SelectColumns())
	assert.Equal(t, "B", q.InsertColumns())
	assert.Empty(t, q.UpdateAssignments())
}

func TestWhere(t *testing.T) {
	r := row.Of(
		field.Int("A", field.SelectWhere),
		field.String("B", field.SelectWhere),
		field.Int("C", field.UpdateWhere),
	)
	r.Get("A").SetInt(5)
	r.Get("C").SetInt(9)
	q := New(nil, "T", r)

	where, err := q.Where(field.SelectWhere)
	require.NoError(t, err)
	assert.Equal(t, "A = 5", where, "null B is omitted")

	where, err = q.Where(field.UpdateWhere)
	require.NoError(t, err)
	assert.Equal(t, "C = 9", where)

	where, err = q.Where(field.DeleteWhere)
	require.NoError(t, err)
	assert.Empty(t, where)

	r.Get("B").SetString("x")
	where, err = q.Where(field.SelectWhere)
	require.NoError(t, err)
	assert.Equal(t, "A = 5 AND B = 'x'", where)
}

func TestStatements(t *testing.T) {
	tests := []struct {
		name  string
		build func(*Query) (string, error)
		want  string
	}{
		{
			name:  "select",
			build: (*Query).SelectStmt,
			want:  "SELECT fkCol, AttributeName, AttributeIndex, AttributeValue FROM XAttribute WHERE fkCol = 7 AND AttributeName = 'level' AND AttributeIndex = 0 AND AttributeValue = '42'",
		},
		{
			name:  "insert",
			build: (*Query).InsertStmt,
			want:  "INSERT INTO XAttribute (fkCol, AttributeName, AttributeIndex, AttributeValue) VALUES (7, 'level', 0, '42')",
		},
		{
			name:  "update",
			build: (*Query).UpdateStmt,
			want:  "UPDATE XAttribute SET fkCol = 7, AttributeName = 'level', AttributeIndex = 0, AttributeValue = '42' WHERE fkCol = 7 AND AttributeName = 'level' AND AttributeIndex = 0 AND AttributeValue = '42'",
		},
		{
			name:  "delete",
			build: (*Query).DeleteStmt,
			want:  "DELETE FROM XAttribute WHERE fkCol = 7 AND AttributeName = 'level' AND AttributeIndex = 0 AND AttributeValue = '42'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := tt.build(New(nil, "XAttribute", attributeRow()))
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt)
		})
	}
}

func TestInsertWithoutInsertFields(t *testing.T) {
	r := row.Of(field.Int("A", field.SelectRead|field.Where))
	r.Get("A").SetInt(1)
	stmt, err := New(nil, "T", r).InsertStmt()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO T ()", stmt)
}

func TestInsertNullValue(t *testing.T) {
	r := row.Of(field.Int("A", field.InsertWrite), field.String("B", field.InsertWrite))
	r.Get("A").SetInt(1)
	stmt, err := New(nil, "T", r).InsertStmt()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO T (A, B) VALUES (1, NULL)", stmt)
}

func TestSelectWithClause(t *testing.T) {
	r := row.Of(field.Int("fk", field.SelectWhere), field.String("name", field.SelectRead))
	r.Get("fk").SetInt(3)
	q := New(nil, "attrs", r, WithClause("ORDER BY name DESC"))
	stmt, err := q.SelectStmt()
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM attrs WHERE fk = 3 ORDER BY name DESC", stmt)

	r.Get("fk").SetNull()
	stmt, err = q.SelectStmt()
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM attrs ORDER BY name DESC", stmt)
}

func TestJoinTableExpression(t *testing.T) {
	r := row.Of(field.String("u.name", field.SelectRead), field.Int("p.id", field.SelectWhere))
	r.Get("p.id").SetInt(1)
	q := New(nil, "users u JOIN posts p ON p.user_id = u.id", r)
	stmt, err := q.SelectStmt()
	require.NoError(t, err)
	assert.Equal(t, "SELECT u.name FROM users u JOIN posts p ON p.user_id = u.id WHERE p.id = 1", stmt)
}

func TestTemplateOverridesFlags(t *testing.T) {
	r := row.Of(
		field.Int("Age", field.SelectRead),
		field.String("Name", field.SelectRead),
	)
	r.Get("Age").SetInt(30)
	r.Get("Name").SetString("Eve")
	q := New(nil, "people", r, WithTemplate("& <= ? AND & = ?"))
	assert.Equal(t, "& <= ? AND & = ?", q.Template())

	for _, build := range []func(*Query) (string, error){(*Query).SelectStmt, (*Query).UpdateStmt, (*Query).DeleteStmt} {
		stmt, err := build(q)
		require.NoError(t, err)
		assert.Contains(t, stmt, " WHERE Age <= 30 AND Name = 'Eve'")
	}
}

func TestTemplateMismatchFailsStatement(t *testing.T) {
	r := row.Of(field.Int("Age", field.All))
	q := New(nil, "people", r, WithTemplate("& >= ? AND & <= ?"))
	_, err := q.SelectStmt()
	assert.True(t, rowsql.IsTemplateMismatch(err))
	_, err = q.UpdateStmt()
	assert.ErrorIs(t, err, rowsql.ErrTemplateMismatch)
	_, err = q.DeleteStmt()
	assert.ErrorIs(t, err, rowsql.ErrTemplateMismatch)
}

func TestUpdateLiteralFormatting(t *testing.T) {
	r := row.Of(
		field.String("s", field.UpdateWrite),
		field.Float("d", field.UpdateWrite),
		field.Int("i", field.UpdateWrite),
		field.Bool("b", field.UpdateWrite),
	)
	r.Get("s").SetString("it's")
	r.Get("d").SetFloat(2.25)
	r.Get("i").SetInt(-4)
	r.Get("b").SetBool(true)
	assert.Equal(t, "s = 'it's', d = 2.25, i = -4, b = 1", New(nil, "T", r).UpdateAssignments())
}
