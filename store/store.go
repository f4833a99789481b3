// Package store opens the database a rowsql application runs against and
// keeps its schema current.
//
// A Store is an explicit handle: callers open one per database and pass
// Driver() into the queries they build. The underlying *sql.DB is safe for
// concurrent use; the queries built on it are not.
package store

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	_ "modernc.org/sqlite"

	"github.com/syssam/rowsql/config"
	"github.com/syssam/rowsql/dialect"
	"github.com/syssam/rowsql/dialect/sql"
)

// MigrationTable records the applied schema migrations.
const MigrationTable = "rowsql_migrations"

// Store is an open database with its statement statistics.
type Store struct {
	cfg        config.Database
	db         *sql.Driver
	stats      *sql.StatsDriver
	drv        dialect.Driver
	log        *slog.Logger
	slow       time.Duration
	migrations []*migrate.Migration
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for migrations, slow statements and, when the
// database is configured with debug, every statement.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithSlowThreshold logs statements running longer than d. Zero turns slow
// statement logging off until SetSlowThreshold enables it.
func WithSlowThreshold(d time.Duration) Option {
	return func(s *Store) {
		s.slow = d
	}
}

// WithMigrations appends migrations to the built-in schema.
func WithMigrations(ms ...*migrate.Migration) Option {
	return func(s *Store) {
		s.migrations = append(s.migrations, ms...)
	}
}

// Open connects to the configured database, verifies the connection and,
// if cfg.Migrate is set, applies pending migrations.
func Open(ctx context.Context, cfg config.Database, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store{cfg: cfg, migrations: Migrations()}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("driver", cfg.Driver)

	db, err := sql.Open(cfg.Driver, cfg.Source())
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Driver, err)
	}
	if db.Dialect() == dialect.SQLite {
		// A second connection to an in-memory database sees an empty schema.
		db.DB().SetMaxOpenConns(1)
	}
	if err := db.DB().PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", cfg.Driver, err)
	}
	s.db = db

	s.stats = sql.NewStatsDriver(db, sql.WithSlowThreshold(s.slow), sql.WithSlowQueryLog(s.log))
	s.drv = s.stats
	if cfg.Debug {
		s.drv = sql.NewDebugDriver(s.stats, s.log)
	}

	if cfg.Migrate {
		if _, err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Driver returns the driver queries run on.
func (s *Store) Driver() dialect.Driver { return s.drv }

// DB returns the underlying connection pool.
func (s *Store) DB() *stdsql.DB { return s.db.DB() }

// Dialect returns the SQL dialect of the database.
func (s *Store) Dialect() string { return s.db.Dialect() }

// Stats returns a snapshot of the statement statistics.
func (s *Store) Stats() sql.StatsSnapshot { return s.stats.QueryStats().Stats() }

// SetSlowThreshold changes the slow statement threshold of an open store.
// Zero turns slow statement logging off.
func (s *Store) SetSlowThreshold(d time.Duration) {
	s.stats.SetSlowThreshold(d)
}

// Migrate applies pending migrations and returns how many ran. Canceling
// ctx stops before the next migration.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.migrationSet().ExecContext(ctx, s.db.DB(), s.migrateDialect(), s.source(), migrate.Up)
	if err != nil {
		return n, fmt.Errorf("store: migrate: %w", err)
	}
	if n > 0 {
		s.log.InfoContext(ctx, "applied migrations", "count", n)
	}
	return n, nil
}

// Pending returns the ids of migrations not yet applied. sql-migrate plans
// without a context, so ctx is only checked up front.
func (s *Store) Pending(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	planned, _, err := s.migrationSet().PlanMigration(s.db.DB(), s.migrateDialect(), s.source(), migrate.Up, 0)
	if err != nil {
		return nil, fmt.Errorf("store: plan migrations: %w", err)
	}
	ids := make([]string, len(planned))
	for i, m := range planned {
		ids[i] = m.Id
	}
	return ids, nil
}

// Version returns the number of applied migrations. Like Pending, ctx is
// only checked up front.
func (s *Store) Version(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	records, err := s.migrationSet().GetMigrationRecords(s.db.DB(), s.migrateDialect())
	if err != nil {
		return 0, fmt.Errorf("store: migration records: %w", err)
	}
	return len(records), nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.log.Debug("closing store", "stats", s.Stats().String())
	return s.db.Close()
}

func (s *Store) migrationSet() *migrate.MigrationSet {
	return &migrate.MigrationSet{TableName: MigrationTable}
}

func (s *Store) source() migrate.MigrationSource {
	return &migrate.MemoryMigrationSource{Migrations: s.migrations}
}

// migrateDialect maps the dialect to the name sql-migrate registers it under.
func (s *Store) migrateDialect() string {
	if s.db.Dialect() == dialect.SQLite {
		return "sqlite3"
	}
	return s.db.Dialect()
}
