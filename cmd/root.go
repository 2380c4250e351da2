// Package cmd is the command line interface of the application.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/sbm/internal/auth"
	"github.com/mateconpizza/sbm/internal/config"
	"github.com/mateconpizza/sbm/internal/scraper"
	"github.com/mateconpizza/sbm/internal/service"
	"github.com/mateconpizza/sbm/pkg/db"
)

var (
	cfgFile string // --config
	dbPath  string // --db
	verbose int    // -v count

	cfg *config.Config
)

// Root represents the base command when called without any subcommands.
var Root = &cobra.Command{
	Use:           config.App.Cmd,
	Short:         "🔖 a self-hosted bookmark manager",
	Long:          "StupidBookmarks keeps your bookmarks in SQLite and serves them over the web.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       config.App.Version,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		config.SetVerbosity(verbose)

		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if dbPath != "" {
			c.Database.Path = dbPath
		}
		cfg = c

		if c.File != "" {
			slog.Debug("config loaded", "file", c.File)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := Root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", config.App.Cmd, err)
		os.Exit(1)
	}
}

func init() {
	pf := Root.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default: user config dir)")
	pf.StringVar(&dbPath, "db", "", "database path, overrides the config file")
	pf.CountVarP(&verbose, "verbose", "v", "verbosity level (-v, -vv, -vvv)")

	Root.SetVersionTemplate(fmt.Sprintf("%s v{{ .Version }}\n", config.App.Name))
}

// openDB opens and migrates the configured database.
func openDB(ctx context.Context) (*db.SQLite, error) {
	r, err := db.Open(ctx, cfg.Database.Path, db.WithDriver(cfg.Database.Driver))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return r, nil
}

// serviceOpts builds the service options from the loaded config.
func serviceOpts() []service.OptFn {
	opts := []service.OptFn{
		service.WithPageSize(cfg.Server.PageSize),
		service.WithMaxImportSize(cfg.Import.MaxSize),
	}
	if cfg.Scraper.Enabled {
		s := scraper.New(
			scraper.WithTimeout(cfg.Scraper.Timeout),
			scraper.WithUserAgent(cfg.Scraper.UserAgent),
			scraper.WithRateLimit(cfg.Scraper.RateLimit),
		)
		opts = append(opts, service.WithTitleFetcher(s))
	}

	return opts
}

// defaultUser returns the single user, creating it on first run.
func defaultUser(ctx context.Context, r *db.SQLite) (*db.User, error) {
	a := service.NewAuth(r, sessionStore(), serviceOpts()...)
	return a.EnsureDefaultUser(ctx, cfg.AdminPassword)
}

func sessionStore() *auth.Sessions {
	s := cfg.Server
	return auth.NewSessions(s.SessionLimit, s.SessionTTL, s.SecureCookie)
}
