package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, DefaultPageSize, c.Server.PageSize)
	assert.Equal(t, DefaultImportMaxSize, c.Import.MaxSize)
	assert.Equal(t, "StupidBookmarks/1.0", c.Scraper.UserAgent)
	assert.Equal(t, 5*time.Second, c.Scraper.Timeout)
	assert.InDelta(t, DefaultFetchRate, c.Scraper.RateLimit, 0)
	assert.Equal(t, MainDBName, filepath.Base(c.Database.Path))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{name: "empty addr", modify: func(c *Config) { c.Server.Addr = "" }},
		{name: "zero page size", modify: func(c *Config) { c.Server.PageSize = 0 }},
		{name: "zero session ttl", modify: func(c *Config) { c.Server.SessionTTL = 0 }},
		{name: "empty db path", modify: func(c *Config) { c.Database.Path = "" }},
		{name: "unknown driver", modify: func(c *Config) { c.Database.Driver = "postgres" }},
		{name: "negative max size", modify: func(c *Config) { c.Import.MaxSize = -1 }},
		{name: "zero timeout", modify: func(c *Config) { c.Scraper.Timeout = 0 }},
		{name: "negative rate limit", modify: func(c *Config) { c.Scraper.RateLimit = -1 }},
		{name: "empty admin password", modify: func(c *Config) { c.AdminPassword = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Default()
			tt.modify(c)
			require.ErrorIs(t, c.Validate(), ErrConfigInvalid)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	c := Default()
	err := c.applyEnv(envMap(map[string]string{
		EnvAddr:          ":9000",
		EnvDatabaseURL:   "sqlite:///./stupidbookmarks.db",
		EnvAdminPassword: "s3cret",
		EnvSecureCookie:  "true",
		EnvPageSize:      "50",
		EnvDBDriver:      "sqlite3",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.Server.Addr)
	assert.Equal(t, "./stupidbookmarks.db", c.Database.Path)
	assert.Equal(t, "s3cret", c.AdminPassword)
	assert.True(t, c.Server.SecureCookie)
	assert.Equal(t, 50, c.Server.PageSize)
	assert.Equal(t, "sqlite3", c.Database.Driver)

	// SBM_DB wins over DATABASE_URL
	c = Default()
	require.NoError(t, c.applyEnv(envMap(map[string]string{
		EnvDatabaseURL: "sqlite:///a.db",
		EnvDB:          "/data/b.db",
	})))
	assert.Equal(t, "/data/b.db", c.Database.Path)

	// blank values are ignored
	c = Default()
	require.NoError(t, c.applyEnv(envMap(map[string]string{EnvAdminPassword: "  "})))
	assert.Equal(t, DefaultAdminPassword, c.AdminPassword)

	c = Default()
	err = c.applyEnv(envMap(map[string]string{EnvSecureCookie: "maybe"}))
	require.ErrorIs(t, err, ErrConfigInvalid)

	err = c.applyEnv(envMap(map[string]string{EnvPageSize: "many"}))
	require.ErrorIs(t, err, ErrConfigInvalid)
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), DefaultFilename)
	content := `
server:
  addr: "0.0.0.0:8080"
  page_size: 10
  session_ttl: 1h
  cors_origins:
    - https://app.example
database:
  path: /tmp/sbm-test.db
scraper:
  enabled: false
  timeout: 2s
`
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	t.Setenv(EnvAddr, "")
	t.Setenv(EnvDB, "")
	t.Setenv(EnvDatabaseURL, "")
	t.Setenv(EnvAdminPassword, "from-env")

	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, p, c.File)
	assert.Equal(t, "0.0.0.0:8080", c.Server.Addr)
	assert.Equal(t, 10, c.Server.PageSize)
	assert.Equal(t, time.Hour, c.Server.SessionTTL)
	assert.Equal(t, []string{"https://app.example"}, c.Server.CORSOrigins)
	assert.Equal(t, "/tmp/sbm-test.db", c.Database.Path)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.False(t, c.Scraper.Enabled)
	assert.Equal(t, 2*time.Second, c.Scraper.Timeout)
	assert.Equal(t, DefaultUserAgent, c.Scraper.UserAgent)
	assert.Equal(t, "from-env", c.AdminPassword)

	data, err := c.Dump()
	require.NoError(t, err)
	assert.Contains(t, string(data), "page_size: 10")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadBadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(p, []byte("server: [unclosed"), 0o600))

	_, err := Load(p)
	require.Error(t, err)
}
