// rowsql manages and edits the attribute table of a rowsql database.
//
//	rowsql migrate rowsql.yaml [more.yaml...]
//	rowsql set -config rowsql.yaml -fk 7 -name level -value 42
//	rowsql get -config rowsql.yaml -fk 7 -name level
//	rowsql list -config rowsql.yaml -fk 7 [-name tag -lo 1 -hi 3]
//	rowsql delete -config rowsql.yaml -fk 7 -name level
//	rowsql watch -config rowsql.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/rowsql/attribute"
	"github.com/syssam/rowsql/config"
	"github.com/syssam/rowsql/store"
)

const usage = `Usage: rowsql <command> [options]

Commands:
  migrate  Apply schema migrations to every configured database
  get      Print one attribute value
  set      Insert or replace one attribute value
  list     List the attributes of an owner
  delete   Delete every index of an attribute
  watch    Hold the database open, reloading the configuration on change

Use 'rowsql <command> -h' for the options of a command.
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "rowsql: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "migrate":
		return runMigrate(ctx, args, stdout, stderr)
	case "get", "set", "list", "delete":
		return runAttribute(ctx, cmd, args, stdout, stderr)
	case "watch":
		return runWatch(ctx, args, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n%s", cmd, usage)
		return errUsage
	}
}

// newLogger builds the process logger from cfg. The returned level can be
// changed while the logger is in use.
func newLogger(cfg config.Log, w io.Writer) (*slog.Logger, *slog.LevelVar) {
	lvl := new(slog.LevelVar)
	lvl.Set(cfg.SlogLevel())
	return slog.New(cfg.Handler(w, lvl)), lvl
}

func open(ctx context.Context, cfg *config.Config, l *slog.Logger) (*store.Store, error) {
	return store.Open(ctx, cfg.Database,
		store.WithLogger(l),
		store.WithSlowThreshold(cfg.Stats.SlowThreshold),
	)
}

// runMigrate migrates each configured database on its own connection,
// concurrently, and reports the resulting versions in argument order.
func runMigrate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "migrate: at least one configuration file is required")
		return errUsage
	}

	type result struct{ applied, version int }
	results := make([]result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			l, _ := newLogger(cfg.Log, stderr)
			cfg.Database.Migrate = false
			s, err := open(ctx, cfg, l.With("config", path))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			defer s.Close()
			n, err := s.Migrate(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			v, err := s.Version(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = result{applied: n, version: v}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, path := range paths {
		fmt.Fprintf(stdout, "%s: applied %d, version %d\n", path, results[i].applied, results[i].version)
	}
	return nil
}

func runAttribute(ctx context.Context, cmd string, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", "rowsql.yaml", "configuration file")
	fk := fs.Int64("fk", 0, "owner key")
	name := fs.String("name", "", "attribute name")
	index := fs.Int64("index", 0, "attribute index")
	value := fs.String("value", "", "attribute value (set)")
	lo := fs.Int64("lo", 0, "lowest index (list with -name)")
	hi := fs.Int64("hi", 0, "highest index (list with -name)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *name == "" && cmd != "list" {
		fmt.Fprintf(stderr, "%s: -name is required\n", cmd)
		return errUsage
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	l, _ := newLogger(cfg.Log, stderr)
	s, err := open(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer s.Close()
	c := attribute.NewClient(s.Driver(), attribute.WithLogger(l))

	switch cmd {
	case "get":
		v, err := c.Get(ctx, *fk, *name, *index)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, v)
		return nil
	case "set":
		return c.Set(ctx, attribute.Attribute{FK: *fk, Name: *name, Index: *index, Value: *value})
	case "delete":
		return c.Delete(ctx, *fk, *name)
	}

	var attrs []attribute.Attribute
	if *name != "" {
		attrs, err = c.ListRange(ctx, *fk, *name, *lo, *hi)
	} else {
		attrs, err = c.List(ctx, *fk)
	}
	if err != nil {
		return err
	}
	for _, a := range attrs {
		fmt.Fprintf(stdout, "%d\t%s\t%d\t%s\n", a.FK, a.Name, a.Index, a.Value)
	}
	return nil
}

// runWatch keeps the database open until ctx is done, applying log level and
// slow threshold changes from the configuration file as they are saved.
func runWatch(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", "rowsql.yaml", "configuration file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	l, lvl := newLogger(cfg.Log, stderr)
	s, err := open(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer s.Close()

	l.InfoContext(ctx, "watching", "config", *path, "dialect", s.Dialect())
	err = config.Watch(ctx, *path, l, func(next *config.Config) {
		lvl.Set(next.Log.SlogLevel())
		s.SetSlowThreshold(next.Stats.SlowThreshold)
		if next.Database.Driver != cfg.Database.Driver || next.Database.Source() != cfg.Database.Source() {
			l.Warn("database settings changed; restart to apply")
		}
	})
	l.Info("stopped", "stats", s.Stats().String())
	return err
}
