// Package config loads rowsql settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// Config is the top-level configuration file.
type Config struct {
	Database Database `yaml:"database"`
	Log      Log      `yaml:"log"`
	Stats    Stats    `yaml:"stats"`
}

// Database selects and configures the engine.
type Database struct {
	// Driver is the database/sql driver name: sqlite, mysql, postgres or pgx.
	Driver string `yaml:"driver"`
	// DSN is passed to sql.Open as is.
	DSN string `yaml:"dsn"`
	// MySQL builds the DSN from parts when Driver is mysql and DSN is empty.
	MySQL *MySQL `yaml:"mysql,omitempty"`
	// Migrate runs schema migrations on open.
	Migrate bool `yaml:"migrate"`
	// Debug logs every statement.
	Debug bool `yaml:"debug"`
}

// MySQL holds the parts of a MySQL DSN.
type MySQL struct {
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Net      string            `yaml:"net"`
	Addr     string            `yaml:"addr"`
	DBName   string            `yaml:"dbname"`
	Params   map[string]string `yaml:"params,omitempty"`
}

// DSN formats the parts with utf8mb4 collation and UTC time parsing.
func (m *MySQL) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = m.User
	cfg.Passwd = m.Password
	cfg.Net = m.Net
	if cfg.Net == "" {
		cfg.Net = "tcp"
	}
	cfg.Addr = m.Addr
	cfg.DBName = m.DBName
	cfg.Collation = "utf8mb4_general_ci"
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if len(m.Params) > 0 {
		cfg.Params = make(map[string]string, len(m.Params))
		for k, v := range m.Params {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN()
}

// Source returns the data source name to open.
func (d Database) Source() string {
	if d.DSN == "" && d.Driver == DriverMySQL && d.MySQL != nil {
		return d.MySQL.DSN()
	}
	return d.DSN
}

// Validate reports configuration errors.
func (d Database) Validate() error {
	switch d.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres, DriverPgx:
	default:
		return fmt.Errorf("config: unsupported database driver %q", d.Driver)
	}
	if d.Source() == "" {
		return errors.New("config: database dsn is required")
	}
	return nil
}

// Log configures the process logger.
type Log struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// SlogLevel parses Level, defaulting to info.
func (l Log) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Handler returns a slog handler writing to w at the level held by lvl.
func (l Log) Handler(w io.Writer, lvl slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Stats configures statement statistics.
type Stats struct {
	// SlowThreshold marks statements slower than it; zero disables logging.
	SlowThreshold time.Duration `yaml:"slow_threshold"`
}

// Default returns the configuration used for missing keys.
func Default() *Config {
	return &Config{
		Database: Database{Driver: DriverSQLite, Migrate: true},
		Log:      Log{Level: "info", Format: "text"},
	}
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return cfg, nil
}
