package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/rowsql/dialect"
)

// QueryStats counts the statements a StatsDriver has run. The counters are
// updated atomically and may be read while statements are in flight.
type QueryStats struct {
	TotalQueries  atomic.Int64 // SELECT and other row-returning statements
	TotalExecs    atomic.Int64 // INSERT, UPDATE, DELETE and DDL
	TotalDuration atomic.Int64 // nanoseconds
	SlowQueries   atomic.Int64
	Errors        atomic.Int64
}

// Stats copies the counters.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset zeroes every counter.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a copy of QueryStats taken at one moment.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgDuration is TotalDuration over the number of statements, or zero
// before the first one.
func (s StatsSnapshot) AvgDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String formats the snapshot as space-separated key=value pairs for logs.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook receives each statement that ran longer than the threshold.
type SlowQueryHook func(ctx context.Context, stmt string, duration time.Duration)

// StatsDriver counts the statements run through a Driver, including those run
// in its transactions, and reports slow ones to a hook.
type StatsDriver struct {
	*Driver
	stats    *QueryStats
	slow     atomic.Int64 // threshold in nanoseconds; <= 0 is off
	slowHook SlowQueryHook
}

// StatsOption configures NewStatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold marks statements running longer than d as slow. The
// default is 100ms; zero or a negative d turns slow detection off.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slow.Store(int64(d))
	}
}

// WithSlowQueryHook calls hook for every slow statement.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog warns about slow statements on l, or on slog.Default
// when l is nil.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	if l == nil {
		l = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, stmt string, duration time.Duration) {
		l.WarnContext(ctx, "slow statement", "duration", duration, "stmt", stmt)
	})
}

// NewStatsDriver returns drv with statement counting.
//
//	drv, _ := sql.Open("sqlite", "file:attrs.db")
//	sd := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(nil),
//	)
//	fmt.Println(sd.QueryStats().Stats())
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, stats: &QueryStats{}}
	s.slow.Store(int64(100 * time.Millisecond))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the threshold in effect.
func (d *StatsDriver) SlowThreshold() time.Duration {
	return time.Duration(d.slow.Load())
}

// SetSlowThreshold replaces the threshold of a driver in use. Zero or a
// negative value turns slow detection off.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.slow.Store(int64(threshold))
}

// Query implements dialect.ExecQuerier.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.timed(ctx, query, &d.stats.TotalQueries, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec implements dialect.ExecQuerier.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.timed(ctx, query, &d.stats.TotalExecs, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

// timed runs a statement, bumps counter and the shared totals, and hands a
// slow statement to the hook.
func (d *StatsDriver) timed(ctx context.Context, stmt string, counter *atomic.Int64, run func() error) error {
	start := time.Now()
	err := run()
	took := time.Since(start)

	counter.Add(1)
	d.stats.TotalDuration.Add(int64(took))
	if err != nil {
		d.stats.Errors.Add(1)
	}
	if limit := d.slow.Load(); limit > 0 && int64(took) > limit {
		d.stats.SlowQueries.Add(1)
		if d.slowHook != nil {
			d.slowHook(ctx, stmt, took)
		}
	}
	return err
}

// Tx begins a transaction whose statements count toward the driver's stats.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{Tx: tx, driver: d}, nil
}

// StatsTx is a transaction begun by a StatsDriver.
type StatsTx struct {
	dialect.Tx
	driver *StatsDriver
}

// Query implements dialect.ExecQuerier.
func (tx *StatsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.driver.timed(ctx, query, &tx.driver.stats.TotalQueries, func() error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

// Exec implements dialect.ExecQuerier.
func (tx *StatsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.driver.timed(ctx, query, &tx.driver.stats.TotalExecs, func() error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}

// DebugDriver logs each statement at debug level before running it.
type DebugDriver struct {
	dialect.Driver
	log *slog.Logger
}

// NewDebugDriver returns drv logging through l, or slog.Default when l is
// nil. Records carry the dialect name.
func NewDebugDriver(drv dialect.Driver, l *slog.Logger) *DebugDriver {
	if l == nil {
		l = slog.Default()
	}
	return &DebugDriver{Driver: drv, log: l.With("dialect", drv.Dialect())}
}

// Query implements dialect.ExecQuerier.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "query", "stmt", query)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec implements dialect.ExecQuerier.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "exec", "stmt", query)
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx begins a transaction that logs its statements, commit and rollback.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	d.log.DebugContext(ctx, "begin transaction")
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &DebugTx{Tx: tx, log: d.log}, nil
}

// DebugTx is a transaction begun by a DebugDriver.
type DebugTx struct {
	dialect.Tx
	log *slog.Logger
}

// Query implements dialect.ExecQuerier.
func (tx *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.log.DebugContext(ctx, "tx query", "stmt", query)
	return tx.Tx.Query(ctx, query, args, v)
}

// Exec implements dialect.ExecQuerier.
func (tx *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.log.DebugContext(ctx, "tx exec", "stmt", query)
	return tx.Tx.Exec(ctx, query, args, v)
}

// Commit implements driver.Tx.
func (tx *DebugTx) Commit() error {
	tx.log.Debug("commit transaction")
	return tx.Tx.Commit()
}

// Rollback implements driver.Tx.
func (tx *DebugTx) Rollback() error {
	tx.log.Debug("rollback transaction")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*StatsTx)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*DebugTx)(nil)
)
