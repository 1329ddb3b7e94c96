// Package config provides configuration management for GDb.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode
//   - Fetch: user_agent, query_service_url, api_url, query_interval_ms,
//     max_retries, max_wait_sec, cooldown_sec
//   - Crawl: page_size, batch_size
//   - Log: level, format
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Limit, ProcessAll, PlatformQID, ResetCursor, IncludeNiche,
//     OutputFile (per-command)
//
// # Environment Variables
//
// Use GDB_ prefix with underscores for nesting:
//
//	GDB_DATABASE_HOST=localhost
//	GDB_DATABASE_PORT=5432
//	GDB_FETCH_USER_AGENT="gamedex-gdb/1.0 (admin@gamedex.net)"
//	GDB_CRAWL_PAGE_SIZE=2000
//	GDB_JOBS_NUMBER=2
package config

// Config represents the complete GDb configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Fetch contains upstream HTTP client settings.
	Fetch FetchConfig `mapstructure:"fetch" yaml:"fetch"`

	// Crawl contains roster crawl and batch settings.
	Crawl CrawlConfig `mapstructure:"crawl" yaml:"crawl"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for document API
	// hydration. The query service is serialized regardless of this value.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// Limit caps the number of items processed per run. Zero means no cap.
	// Runtime-only, set by CLI flags.
	Limit int

	// ProcessAll selects "reprocess everything" instead of "only
	// unfinished items". Runtime-only, set by CLI flags.
	ProcessAll bool

	// PlatformQID restricts a roster crawl to one platform.
	// Runtime-only, set by CLI flags.
	PlatformQID string

	// ResetCursor clears the roster cursor before crawling.
	// Runtime-only, set by CLI flags.
	ResetCursor bool

	// IncludeNiche activates niche-status registry properties during
	// normalization. Runtime-only, set by CLI flags.
	IncludeNiche bool

	// OutputFile is the destination path for coverage export.
	// Runtime-only, set by CLI flags.
	OutputFile string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// FetchConfig contains upstream HTTP client parameters.
type FetchConfig struct {
	// UserAgent identifies this client to the upstream services.
	// Wikimedia requires a descriptive User-Agent with contact data.
	// An empty value fails validation at startup, not at first call.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`

	// QueryServiceURL is the SPARQL endpoint of the Wikidata Query
	// Service.
	QueryServiceURL string `mapstructure:"query_service_url" yaml:"query_service_url"`

	// APIURL is the MediaWiki api.php endpoint used for entity
	// documents and page revisions.
	APIURL string `mapstructure:"api_url" yaml:"api_url"`

	// QueryIntervalMs is the minimum interval between query-service
	// requests in milliseconds. The query service enforces one logical
	// client, so requests are serialized at this pace.
	QueryIntervalMs int `mapstructure:"query_interval_ms" yaml:"query_interval_ms"`

	// MaxRetries caps retry attempts for retryable upstream failures.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// MaxWaitSec caps a single computed backoff wait in seconds.
	MaxWaitSec int `mapstructure:"max_wait_sec" yaml:"max_wait_sec"`

	// CooldownSec is the shared slow-window duration applied after a
	// Retry-After response; unrelated requests are throttled until it
	// expires.
	CooldownSec int `mapstructure:"cooldown_sec" yaml:"cooldown_sec"`
}

// CrawlConfig contains roster crawl parameters.
type CrawlConfig struct {
	// PageSize is the number of roster rows requested per query
	// service page. Values below MinPageSize are rejected during
	// validation to avoid pathologically slow paging.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// BatchSize is the number of entities per normalization/write
	// batch.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format" yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level" yaml:"level"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "gamedex",
			SSLMode:  "disable",
		},
		Fetch: FetchConfig{
			UserAgent:       "",
			QueryServiceURL: "https://query.wikidata.org/sparql",
			APIURL:          "https://www.wikidata.org/w/api.php",
			QueryIntervalMs: 1500,
			MaxRetries:      5,
			MaxWaitSec:      60,
			CooldownSec:     30,
		},
		Crawl: CrawlConfig{
			PageSize:  2000,
			BatchSize: 50,
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		JobsNumber: defaultJobsNumber(),
	}
	return res
}

func defaultJobsNumber() int {
	// The document API tolerates a handful of concurrent requests per
	// client; keep the default small.
	return 2
}
