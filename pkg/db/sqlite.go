// Package db is the SQLite storage for bookmarks, tags, users and API keys.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	MaxOpenConns    = 10        // Maximum number of open connections
	MaxIdleConns    = 5         // Maximum number of idle connections
	MaxLifetimeConn = time.Hour // Maximum connection lifetime
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"  // pure Go, modernc.org/sqlite
	DriverCGO     = "sqlite3" // cgo, github.com/mattn/go-sqlite3
)

type Table string

// SQLite is the bookmark repository.
type SQLite struct {
	DB        *sqlx.DB `json:"-"`
	Cfg       *Cfg     `json:"db"`
	closeOnce sync.Once
}

// Name returns the name of the SQLite database.
func (r *SQLite) Name() string {
	return r.Cfg.Name
}

// Close closes the SQLite database connection and logs any errors encountered.
func (r *SQLite) Close() {
	s := r.Name()
	r.closeOnce.Do(func() {
		if err := r.DB.Close(); err != nil {
			slog.Error("closing database", "name", s, "error", err)
		} else {
			slog.Debug("database closed", "name", s)
		}
	})
}

// newSQLiteRepository returns a new SQLiteRepository.
func newSQLiteRepository(db *sqlx.DB, cfg *Cfg) *SQLite {
	return &SQLite{
		DB:  db,
		Cfg: cfg,
	}
}

// New returns a repository for an existing database file.
func New(p string, opts ...OptFn) (*SQLite, error) {
	return newRepository(p, opts, func(path string) error {
		slog.Debug("new repo: checking if database exists")

		if !fileExists(path) {
			return fmt.Errorf("%w: %q", ErrDBNotFound, path)
		}

		return nil
	})
}

// Open returns a repository for the database at p, creating the file, its
// parent directory and the schema when missing.
func Open(ctx context.Context, p string, opts ...OptFn) (*SQLite, error) {
	r, err := newRepository(p, opts, func(path string) error {
		if fileExists(path) || isMemory(path) {
			return nil
		}

		slog.Debug("open repo: creating database", "path", path)

		return os.MkdirAll(filepath.Dir(path), 0o750)
	})
	if err != nil {
		return nil, err
	}

	if err := r.Init(ctx); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

// newRepository returns a new SQLiteRepository from the provided path.
func newRepository(p string, opts []OptFn, validate func(string) error) (*SQLite, error) {
	if p == "" {
		return nil, fmt.Errorf("%w: %q", ErrDBNotFound, p)
	}

	c, err := NewSQLiteCfg(p, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if !isMemory(p) {
		p = c.Fullpath()
	}

	if err := validate(p); err != nil {
		return nil, err
	}

	db, err := OpenDatabase(c.Driver, p)
	if err != nil {
		slog.Error("NewRepo", "error", err, "path", p)
		return nil, err
	}

	return newSQLiteRepository(db, c), nil
}

func isMemory(path string) bool {
	return strings.Contains(path, "mode=memory") || path == ":memory:"
}

// dsnParams returns the connection parameters for driver. Each driver
// spells its pragmas differently.
func dsnParams(driver string, memory bool) url.Values {
	v := url.Values{}

	switch driver {
	case DriverCGO:
		v.Set("_foreign_keys", "on")
		if !memory {
			v.Set("_journal_mode", "WAL")
			v.Set("_synchronous", "NORMAL")
			v.Set("_busy_timeout", "5000")
		}
	default:
		v.Add("_pragma", "foreign_keys(1)")
		if !memory {
			v.Add("_pragma", "journal_mode(WAL)")
			v.Add("_pragma", "synchronous(NORMAL)")
			v.Add("_pragma", "busy_timeout(5000)")
		}
	}

	return v
}

// buildSQLiteDSN constructs a SQLite Data Source Name from a file path and
// optional parameters.
func buildSQLiteDSN(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return fmt.Sprintf("%s%s%s", path, separator, params.Encode())
}

// OpenDatabase opens a SQLite database at the specified path with the given
// driver and verifies the connection, returning the database handle or an
// error.
func OpenDatabase(driver, path string) (*sqlx.DB, error) {
	if driver == "" {
		driver = DriverModernc
	}

	if driver != DriverModernc && driver != DriverCGO {
		return nil, fmt.Errorf("%w: %q", ErrDriverUnknown, driver)
	}

	slog.Debug("opening database", "path", path, "driver", driver)
	memory := isMemory(path)

	db, err := sqlx.Open(driver, buildSQLiteDSN(path, dsnParams(driver, memory)))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// an in-memory database lives and dies with its connection
	if memory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(MaxOpenConns)
		db.SetMaxIdleConns(MaxIdleConns)
		db.SetConnMaxLifetime(MaxLifetimeConn)
	}

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%w: on ping context", err)
	}

	return db, nil
}

// Cfg represents the configuration for a SQLite database.
type Cfg struct {
	Name   string `json:"name"`   // Name of the SQLite database
	Path   string `json:"path"`   // Path to the SQLite database
	Driver string `json:"driver"` // database/sql driver name
}

// OptFn is an option function for the database configuration.
type OptFn func(*Cfg)

// WithDriver sets the database/sql driver.
func WithDriver(name string) OptFn {
	return func(c *Cfg) {
		if name != "" {
			c.Driver = name
		}
	}
}

// Fullpath returns the full path to the SQLite database.
func (c *Cfg) Fullpath() string {
	return filepath.Join(c.Path, c.Name)
}

// Exists returns true if the SQLite database exists.
func (c *Cfg) Exists() bool {
	return fileExists(c.Fullpath())
}

// NewSQLiteCfg returns the default settings for the database.
func NewSQLiteCfg(p string, opts ...OptFn) (*Cfg, error) {
	c := &Cfg{Driver: DriverModernc}
	for _, fn := range opts {
		fn(c)
	}

	if isMemory(p) {
		c.Name = p
		return c, nil
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %w", p, err)
	}

	c.Path = filepath.Dir(abs)
	c.Name = ensureDBSuffix(filepath.Base(abs))

	return c, nil
}
