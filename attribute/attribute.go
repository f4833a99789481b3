// Package attribute reads and writes the XAttribute table: ordered, indexed
// name/value pairs hanging off an owning row identified by fkCol.
package attribute

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/rowsql"
	"github.com/syssam/rowsql/dialect"
	"github.com/syssam/rowsql/field"
	"github.com/syssam/rowsql/query"
	"github.com/syssam/rowsql/row"
)

// Table and column names.
const (
	Table       = "XAttribute"
	ColumnFK    = "fkCol"
	ColumnName  = "AttributeName"
	ColumnIndex = "AttributeIndex"
	ColumnValue = "AttributeValue"
)

// RangeTemplate filters one attribute name of an owner to an index range.
const RangeTemplate = "& = ? AND & = ? AND & >= ? AND & <= ?"

// Attribute is one row of the table.
type Attribute struct {
	FK    int64  `msgpack:"fk"`
	Name  string `msgpack:"name"`
	Index int64  `msgpack:"index"`
	Value string `msgpack:"value"`
}

// NewRow returns the full attribute row: every column in table order,
// taking part in every statement.
func NewRow() *row.Row {
	return row.Of(
		field.Int(ColumnFK, field.All),
		field.String(ColumnName, field.All),
		field.Int(ColumnIndex, field.All),
		field.String(ColumnValue, field.All),
	)
}

// keyRow filters on the key columns and only reads or writes the value.
func keyRow() *row.Row {
	return row.Of(
		field.Int(ColumnFK, field.All),
		field.String(ColumnName, field.All),
		field.Int(ColumnIndex, field.All),
		field.String(ColumnValue, field.ReadWrite),
	)
}

// rangeRow lines up with RangeTemplate. The lower bound doubles as the
// index read back on fetch.
func rangeRow() *row.Row {
	r := row.New()
	r.Set("fk", field.Int(ColumnFK, field.SelectRead|field.SelectWhere))
	r.Set("name", field.String(ColumnName, field.SelectRead|field.SelectWhere))
	r.Set("lo", field.Int(ColumnIndex, field.SelectRead|field.SelectWhere))
	r.Set("hi", field.Int(ColumnIndex, field.SelectWhere))
	r.Set("value", field.String(ColumnValue, field.SelectRead))
	return r
}

// Client runs attribute statements over one driver. It is safe for
// concurrent use; calls are serialized.
type Client struct {
	mu    sync.Mutex
	drv   dialect.Driver
	key   *query.Query
	list  *query.Query
	rng   *query.Query
	cache rowsql.Cache
	ttl   time.Duration
	log   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache caches Get and List results. Entries live for ttl, or until a
// write to the same owner when ttl is zero.
func WithCache(c rowsql.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.ttl = ttl
	}
}

// WithLogger sets the logger used by the client and its queries.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

// NewClient returns a client running statements on drv.
func NewClient(drv dialect.Driver, opts ...Option) *Client {
	c := &Client{drv: drv}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.key = query.New(drv, Table, keyRow(), query.WithLogger(c.log))
	c.list = query.New(drv, Table, NewRow(),
		query.WithClause("ORDER BY "+ColumnName+", "+ColumnIndex),
		query.WithLogger(c.log))
	c.rng = query.New(drv, Table, rangeRow(),
		query.WithTemplate(RangeTemplate),
		query.WithClause("ORDER BY "+ColumnIndex),
		query.WithLogger(c.log))
	return c
}

// Get returns the value stored under (fk, name, index). It returns an error
// satisfying rowsql.IsNotFound if there is none.
func (c *Client) Get(ctx context.Context, fk int64, name string, index int64) (string, error) {
	key := cacheKey(fk, fmt.Sprintf("%s/%d", name, index))
	var a Attribute
	if c.cached(ctx, key, &a) {
		return a.Value, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.key.ClearAll(); err != nil {
		return "", err
	}
	bindKey(c.key, fk, name, index)
	if err := c.key.Select(ctx); err != nil {
		return "", err
	}
	value := c.key.Field(ColumnValue).String()
	if err := c.key.ClearAll(); err != nil {
		return "", err
	}
	c.store(ctx, key, Attribute{FK: fk, Name: name, Index: index, Value: value})
	return value, nil
}

// Set stores a, replacing the value of an existing (fk, name, index) row or
// inserting a new one. The lookup and the write run in one transaction.
func (c *Client) Set(ctx context.Context, a Attribute) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.invalidate(ctx, a.FK)

	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("attribute: begin: %w", err)
	}
	q := query.New(tx, Table, keyRow(), query.WithLogger(c.log))
	if err := upsert(ctx, q, a); err != nil {
		return rollback(tx, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("attribute: commit: %w", err)
	}
	return nil
}

func upsert(ctx context.Context, q *query.Query, a Attribute) error {
	bindKey(q, a.FK, a.Name, a.Index)
	err := q.Select(ctx)
	switch {
	case rowsql.IsNotFound(err):
		// The failed select nulled the key.
		bindKey(q, a.FK, a.Name, a.Index)
		q.Field(ColumnValue).SetString(a.Value)
		return q.Insert(ctx)
	case err != nil:
		return err
	}
	q.Field(ColumnValue).SetString(a.Value)
	return q.Update(ctx)
}

// rollback rolls tx back and reports err along with any rollback failure.
func rollback(tx dialect.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return rowsql.NewAggregateError(err, fmt.Errorf("attribute: rollback: %w", rerr))
	}
	return err
}

// Delete removes every index of name under fk.
func (c *Client) Delete(ctx context.Context, fk int64, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.invalidate(ctx, fk)

	if err := c.list.ClearAll(); err != nil {
		return err
	}
	c.list.Field(ColumnFK).SetInt(fk)
	c.list.Field(ColumnName).SetString(name)
	return c.list.Delete(ctx)
}

// List returns every attribute of fk ordered by name and index.
func (c *Client) List(ctx context.Context, fk int64) ([]Attribute, error) {
	key := cacheKey(fk, "*")
	var attrs []Attribute
	if c.cached(ctx, key, &attrs) {
		return attrs, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.list.ClearAll(); err != nil {
		return nil, err
	}
	c.list.Field(ColumnFK).SetInt(fk)
	attrs, err := c.collect(ctx, c.list, func(r *row.Row) Attribute {
		return Attribute{
			FK:    r.Get(ColumnFK).Int(),
			Name:  r.Get(ColumnName).String(),
			Index: r.Get(ColumnIndex).Int(),
			Value: r.Get(ColumnValue).String(),
		}
	})
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, attrs)
	return attrs, nil
}

// ListRange returns the attributes of fk named name whose index lies in
// [lo, hi], ordered by index.
func (c *Client) ListRange(ctx context.Context, fk int64, name string, lo, hi int64) ([]Attribute, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rng.ClearAll(); err != nil {
		return nil, err
	}
	r := c.rng.Row()
	r.Get("fk").SetInt(fk)
	r.Get("name").SetString(name)
	r.Get("lo").SetInt(lo)
	r.Get("hi").SetInt(hi)
	return c.collect(ctx, c.rng, func(r *row.Row) Attribute {
		return Attribute{
			FK:    r.Get("fk").Int(),
			Name:  r.Get("name").String(),
			Index: r.Get("lo").Int(),
			Value: r.Get("value").String(),
		}
	})
}

func bindKey(q *query.Query, fk int64, name string, index int64) {
	q.Field(ColumnFK).SetInt(fk)
	q.Field(ColumnName).SetString(name)
	q.Field(ColumnIndex).SetInt(index)
}

// collect selects with q and converts every fetched row. No match yields an
// empty slice.
func (c *Client) collect(ctx context.Context, q *query.Query, conv func(*row.Row) Attribute) ([]Attribute, error) {
	attrs := []Attribute{}
	err := q.Select(ctx)
	if rowsql.IsNotFound(err) {
		return attrs, nil
	}
	for err == nil {
		attrs = append(attrs, conv(q.Row()))
		var ok bool
		if ok, err = q.Fetch(); !ok {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

func cacheKey(fk int64, rest string) string {
	return rowsql.CacheKey{Table: Table, Filter: fmt.Sprintf("%d/%s", fk, rest)}.String()
}

func (c *Client) cached(ctx context.Context, key string, v any) bool {
	if c.cache == nil {
		return false
	}
	b, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WarnContext(ctx, "attribute cache get", "key", key, "error", err)
		return false
	}
	if b == nil {
		return false
	}
	if err := msgpack.Unmarshal(b, v); err != nil {
		c.log.WarnContext(ctx, "attribute cache decode", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Client) store(ctx context.Context, key string, v any) {
	if c.cache == nil {
		return
	}
	b, err := msgpack.Marshal(v)
	if err == nil {
		err = c.cache.Set(ctx, key, b, c.ttl)
	}
	if err != nil {
		c.log.WarnContext(ctx, "attribute cache set", "key", key, "error", err)
	}
}

func (c *Client) invalidate(ctx context.Context, fk int64) {
	if c.cache == nil {
		return
	}
	if err := c.cache.DeletePrefix(ctx, cacheKey(fk, "")); err != nil {
		c.log.WarnContext(ctx, "attribute cache invalidate", "fk", fk, "error", err)
	}
}
