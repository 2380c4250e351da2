// Package config loads the application settings from the config file, the
// environment and a .env file, and sets up logging.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// version of the application.
var version = "0.1.0"

const (
	appName         string = "stupidbookmarks"    // Default name of the application
	command         string = "sbm"                // Default name of the executable
	MainDBName      string = "stupidbookmarks.db" // Default name of the main database
	DefaultFilename string = "config.yml"         // Default config filename
)

// Defaults.
const (
	DefaultAddr          = "127.0.0.1:8000"
	DefaultPageSize      = 20
	DefaultSessionTTL    = 7 * 24 * time.Hour
	DefaultSessionLimit  = 1024
	DefaultImportMaxSize = 32 << 20
	DefaultFetchTimeout  = 5 * time.Second
	DefaultUserAgent     = "StupidBookmarks/1.0"
	DefaultFetchRate     = 2.0 // requests per second
	DefaultAdminUser     = "admin"
	DefaultAdminPassword = "admin"
)

var (
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrConfigNotFound = errors.New("config file not found")
)

type (
	// Config holds every setting of the application.
	Config struct {
		Server   Server   `yaml:"server"`
		Database Database `yaml:"database"`
		Import   Import   `yaml:"import"`
		Scraper  Scraper  `yaml:"scraper"`

		// AdminPassword is the password given to the default user when it is
		// first created. Only read from the environment.
		AdminPassword string `yaml:"-"`
		// File is the config file the settings were read from, if any.
		File string `yaml:"-"`
	}

	Server struct {
		Addr         string        `yaml:"addr"`
		PageSize     int           `yaml:"page_size"`
		SecureCookie bool          `yaml:"secure_cookie"`
		SessionTTL   time.Duration `yaml:"session_ttl"`
		SessionLimit int           `yaml:"session_limit"`
		CORSOrigins  []string      `yaml:"cors_origins"`
	}

	Database struct {
		Path   string `yaml:"path"`
		Driver string `yaml:"driver"` // sqlite (pure Go) or sqlite3 (cgo)
	}

	Import struct {
		MaxSize int `yaml:"max_size"` // bytes
	}

	Scraper struct {
		Enabled   bool          `yaml:"enabled"`
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
		RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 = unlimited
	}
)

// AppInfo describes the application.
type AppInfo struct {
	Name    string `json:"name"`
	Cmd     string `json:"cmd"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

// App is the application description.
var App = AppInfo{
	Name:    appName,
	Cmd:     command,
	Version: version,
	URL:     "https://github.com/mateconpizza/sbm#readme",
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         DefaultAddr,
			PageSize:     DefaultPageSize,
			SessionTTL:   DefaultSessionTTL,
			SessionLimit: DefaultSessionLimit,
		},
		Database: Database{
			Path:   defaultDBPath(),
			Driver: "sqlite",
		},
		Import: Import{
			MaxSize: DefaultImportMaxSize,
		},
		Scraper: Scraper{
			Enabled:   true,
			Timeout:   DefaultFetchTimeout,
			UserAgent: DefaultUserAgent,
			RateLimit: DefaultFetchRate,
		},
		AdminPassword: DefaultAdminPassword,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server address cannot be empty", ErrConfigInvalid)
	case c.Server.PageSize <= 0:
		return fmt.Errorf("%w: page size must be positive", ErrConfigInvalid)
	case c.Server.SessionTTL <= 0:
		return fmt.Errorf("%w: session ttl must be positive", ErrConfigInvalid)
	case c.Server.SessionLimit <= 0:
		return fmt.Errorf("%w: session limit must be positive", ErrConfigInvalid)
	case c.Database.Path == "":
		return fmt.Errorf("%w: database path cannot be empty", ErrConfigInvalid)
	case c.Database.Driver != "sqlite" && c.Database.Driver != "sqlite3":
		return fmt.Errorf("%w: unknown database driver %q", ErrConfigInvalid, c.Database.Driver)
	case c.Import.MaxSize < 0:
		return fmt.Errorf("%w: import max size cannot be negative", ErrConfigInvalid)
	case c.Scraper.Timeout <= 0:
		return fmt.Errorf("%w: scraper timeout must be positive", ErrConfigInvalid)
	case c.Scraper.RateLimit < 0:
		return fmt.Errorf("%w: scraper rate limit cannot be negative", ErrConfigInvalid)
	case c.AdminPassword == "":
		return fmt.Errorf("%w: admin password cannot be empty", ErrConfigInvalid)
	}

	return nil
}

func SetVerbosity(verbose int) {
	levels := []slog.Level{
		slog.LevelError,
		slog.LevelWarn,
		slog.LevelInfo,
		slog.LevelDebug,
	}
	level := levels[min(max(verbose, 0), len(levels)-1)]

	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == "source" {
					if source, ok := a.Value.Any().(*slog.Source); ok {
						dir, file := filepath.Split(source.File)
						source.File = filepath.Join(filepath.Base(filepath.Clean(dir)), file)

						return slog.Attr{Key: "source", Value: slog.AnyValue(source)}
					}
				}

				return a
			},
		}),
	)
	slog.SetDefault(logger)

	slog.Debug("logging", "level", level)
}
