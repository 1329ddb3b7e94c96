package config_test

import (
	"path/filepath"
	"testing"

	"github.com/gamedex/gdb/pkg/config"
	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	assert.Equal(t,
		filepath.Join(tempHome, ".config", "gdb"),
		config.ConfigDir(tempHome),
	)
	assert.Equal(t,
		filepath.Join(tempHome, ".config", "gdb", "config.yaml"),
		config.ConfigFilePath(tempHome),
	)
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		// Database defaults
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "postgres", cfg.Database.Password)
		assert.Equal(t, "gamedex", cfg.Database.Database)
		assert.Equal(t, "disable", cfg.Database.SSLMode)

		// Fetch defaults
		assert.Equal(t, "", cfg.Fetch.UserAgent)
		assert.Equal(t,
			"https://query.wikidata.org/sparql", cfg.Fetch.QueryServiceURL)
		assert.Equal(t,
			"https://www.wikidata.org/w/api.php", cfg.Fetch.APIURL)
		assert.Equal(t, 1500, cfg.Fetch.QueryIntervalMs)
		assert.Equal(t, 5, cfg.Fetch.MaxRetries)
		assert.Equal(t, 60, cfg.Fetch.MaxWaitSec)
		assert.Equal(t, 30, cfg.Fetch.CooldownSec)

		// Crawl defaults
		assert.Equal(t, 2000, cfg.Crawl.PageSize)
		assert.Equal(t, 50, cfg.Crawl.BatchSize)

		// Log defaults
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)

		assert.Equal(t, 2, cfg.JobsNumber)
	})
}

func TestOptionDatabaseHost(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sets valid host",
			input:    "db.example.com",
			expected: "db.example.com",
		},
		{
			name:     "trims whitespace",
			input:    "  db.example.com  ",
			expected: "db.example.com",
		},
		{
			name:     "ignores empty string",
			input:    "",
			expected: "localhost", // Should keep default
		},
		{
			name:     "ignores whitespace-only",
			input:    "   ",
			expected: "localhost", // Should keep default
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			opt := config.OptDatabaseHost(tt.input)
			cfg.Update([]config.Option{opt})
			assert.Equal(t, tt.expected, cfg.Database.Host)
		})
	}
}

func TestOptionDatabaseSSLMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sets valid mode",
			input:    "require",
			expected: "require",
		},
		{
			name:     "lowercases input",
			input:    "VERIFY-FULL",
			expected: "verify-full",
		},
		{
			name:     "ignores invalid mode",
			input:    "maybe",
			expected: "disable", // Should keep default
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseSSLMode(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.SSLMode)
		})
	}
}

func TestOptionCrawlPageSize(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{
			name:     "sets valid page size",
			input:    5000,
			expected: 5000,
		},
		{
			name:     "accepts the floor exactly",
			input:    config.MinPageSize,
			expected: config.MinPageSize,
		},
		{
			name:     "rejects below the floor",
			input:    config.MinPageSize - 1,
			expected: 2000, // Should keep default
		},
		{
			name:     "rejects zero",
			input:    0,
			expected: 2000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptCrawlPageSize(tt.input)})
			assert.Equal(t, tt.expected, cfg.Crawl.PageSize)
		})
	}
}

func TestOptionFetchQueryIntervalMs(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptFetchQueryIntervalMs(500)})
	assert.Equal(t, 500, cfg.Fetch.QueryIntervalMs)

	cfg.Update([]config.Option{config.OptFetchQueryIntervalMs(-1)})
	assert.Equal(t, 500, cfg.Fetch.QueryIntervalMs)
}

func TestRuntimeOptions(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptLimit(100),
		config.OptProcessAll(true),
		config.OptPlatformQID(" Q1406 "),
		config.OptResetCursor(true),
		config.OptOutputFile("out.sqlite"),
	})

	assert.Equal(t, 100, cfg.Limit)
	assert.True(t, cfg.ProcessAll)
	assert.Equal(t, "Q1406", cfg.PlatformQID)
	assert.True(t, cfg.ResetCursor)
	assert.Equal(t, "out.sqlite", cfg.OutputFile)
}

func TestToOptionsRoundTrip(t *testing.T) {
	orig := config.New()
	orig.Update([]config.Option{
		config.OptDatabaseHost("db.example.com"),
		config.OptDatabasePort(5433),
		config.OptFetchUserAgent("gamedex-gdb/1.0 (ops@example.com)"),
		config.OptFetchQueryIntervalMs(2500),
		config.OptCrawlPageSize(4000),
		config.OptLogFormat("json"),
		config.OptJobsNumber(4),
		// Runtime-only fields must not survive the round trip.
		config.OptLimit(42),
		config.OptProcessAll(true),
	})

	clone := config.New()
	clone.Update(orig.ToOptions())

	assert.Equal(t, "db.example.com", clone.Database.Host)
	assert.Equal(t, 5433, clone.Database.Port)
	assert.Equal(t,
		"gamedex-gdb/1.0 (ops@example.com)", clone.Fetch.UserAgent)
	assert.Equal(t, 2500, clone.Fetch.QueryIntervalMs)
	assert.Equal(t, 4000, clone.Crawl.PageSize)
	assert.Equal(t, "json", clone.Log.Format)
	assert.Equal(t, 4, clone.JobsNumber)

	assert.Equal(t, 0, clone.Limit)
	assert.False(t, clone.ProcessAll)
}

func TestValidate(t *testing.T) {
	cfg := config.New()
	err := cfg.Validate()
	require.Error(t, err, "default config has no user agent")

	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Equal(t, errcode.ConfigUserAgentError, gnErr.Code)

	cfg.Update([]config.Option{
		config.OptFetchUserAgent("gamedex-gdb/1.0 (ops@example.com)"),
	})
	assert.NoError(t, cfg.Validate())
}
