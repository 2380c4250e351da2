package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvAddr          = "SBM_ADDR"
	EnvDB            = "SBM_DB"
	EnvDBDriver      = "SBM_DB_DRIVER"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvAdminPassword = "DEFAULT_ADMIN_PASSWORD"
	EnvSecureCookie  = "SBM_SECURE_COOKIE"
	EnvPageSize      = "SBM_PAGE_SIZE"
)

const sqliteURLPrefix = "sqlite:///"

// Load builds the configuration. Settings are layered: defaults, then the
// YAML file, then a .env file in the working directory, then the
// environment. An empty file means the default config file, which may be
// missing; an explicit file must exist.
func Load(file string) (*Config, error) {
	c := Default()

	explicit := file != ""
	if !explicit {
		p, err := DefaultConfigFile()
		if err != nil {
			slog.Warn("resolving config file", "error", err)
		}
		file = p
	}

	if file != "" {
		if err := c.readFile(file); err != nil {
			if explicit || !errors.Is(err, ErrConfigNotFound) {
				return nil, err
			}

			slog.Debug("config file not found, using defaults", "path", file)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("loading .env file", "error", err)
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// readFile merges the YAML file at p into c.
func (c *Config) readFile(p string) error {
	content, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrConfigNotFound, p)
		}

		return fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("error unmarshalling YAML: %w", err)
	}

	c.File = p
	slog.Debug("loaded config file", "path", p)

	return nil
}

// applyEnv overrides c with the variables found by lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(k string) (string, bool) {
		v, ok := lookup(k)
		v = strings.TrimSpace(v)

		return v, ok && v != ""
	}

	if v, ok := get(EnvAddr); ok {
		c.Server.Addr = v
	}

	if v, ok := get(EnvDatabaseURL); ok {
		c.Database.Path = strings.TrimPrefix(v, sqliteURLPrefix)
	}

	if v, ok := get(EnvDB); ok {
		c.Database.Path = v
	}

	if v, ok := get(EnvDBDriver); ok {
		c.Database.Driver = v
	}

	if v, ok := get(EnvAdminPassword); ok {
		c.AdminPassword = v
	}

	if v, ok := get(EnvSecureCookie); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfigInvalid, EnvSecureCookie, err)
		}
		c.Server.SecureCookie = b
	}

	if v, ok := get(EnvPageSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfigInvalid, EnvPageSize, err)
		}
		c.Server.PageSize = n
	}

	return nil
}

// Dump returns c as YAML.
func (c *Config) Dump() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("error marshalling YAML: %w", err)
	}

	return data, nil
}
