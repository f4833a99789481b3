package store

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowsql/config"
	"github.com/syssam/rowsql/dialect"
	"github.com/syssam/rowsql/dialect/sql"
)

func memory(runMigrations bool) config.Database {
	return config.Database{Driver: config.DriverSQLite, DSN: "file::memory:", Migrate: runMigrations}
}

func TestOpenMigrates(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, memory(true))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, dialect.SQLite, s.Dialect())
	v, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(Migrations()), v)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	n, err := s.Migrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "second run applies nothing")

	require.NoError(t, s.Driver().Exec(ctx,
		"INSERT INTO XAttribute (fkCol, AttributeName, AttributeIndex, AttributeValue) VALUES (1, 'a', 0, 'x')",
		[]any{}, nil))
	err = s.Driver().Exec(ctx,
		"INSERT INTO XAttribute (fkCol, AttributeName, AttributeIndex, AttributeValue) VALUES (1, 'a', 0, 'y')",
		[]any{}, nil)
	assert.True(t, sql.IsUniqueConstraintError(err), "key index created: %v", err)
	assert.Equal(t, int64(2), s.Stats().TotalExecs)
	assert.Equal(t, int64(1), s.Stats().Errors)
}

func TestOpenWithoutMigrate(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, memory(false))
	require.NoError(t, err)
	defer s.Close()

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_xattribute", "0002_xattribute_key"}, pending)

	n, err := s.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWithMigrations(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, memory(true), WithMigrations(&migrate.Migration{
		Id:   "0100_notes",
		Up:   []string{"CREATE TABLE Notes (id INTEGER, body TEXT)"},
		Down: []string{"DROP TABLE Notes"},
	}))
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	require.NoError(t, s.Driver().Exec(ctx, "INSERT INTO Notes (id, body) VALUES (1, 'x')", []any{}, nil))
}

func TestOpenLogging(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := memory(true)
	cfg.Debug = true
	s, err := Open(ctx, cfg, WithLogger(l), WithSlowThreshold(time.Nanosecond))
	require.NoError(t, err)
	defer s.Close()

	assert.Contains(t, buf.String(), "applied migrations")
	buf.Reset()
	require.NoError(t, s.Driver().Exec(ctx, "DELETE FROM XAttribute", []any{}, nil))
	assert.Contains(t, buf.String(), "msg=exec")
	assert.Contains(t, buf.String(), "slow statement")

	s.SetSlowThreshold(time.Hour)
	buf.Reset()
	require.NoError(t, s.Driver().Exec(ctx, "DELETE FROM XAttribute", []any{}, nil))
	assert.NotContains(t, buf.String(), "slow statement")
}

func TestMigrateCanceled(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, memory(false))
	require.NoError(t, err)
	defer s.Close()

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Migrate(canceled)
	assert.ErrorIs(t, err, context.Canceled)

	v, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, v, "nothing applied")
}

func TestSlowLogEnabledAfterOpen(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	s, err := Open(ctx, memory(true), WithLogger(l))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Driver().Exec(ctx, "DELETE FROM XAttribute", []any{}, nil))
	assert.NotContains(t, buf.String(), "slow statement", "zero threshold logs nothing")
	assert.Zero(t, s.Stats().SlowQueries)

	s.SetSlowThreshold(time.Nanosecond)
	require.NoError(t, s.Driver().Exec(ctx, "DELETE FROM XAttribute", []any{}, nil))
	assert.Contains(t, buf.String(), "slow statement")
	assert.Equal(t, int64(1), s.Stats().SlowQueries)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	_, err := Open(ctx, config.Database{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Open(canceled, memory(true))
	assert.Error(t, err)
}
