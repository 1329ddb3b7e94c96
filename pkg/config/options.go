package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptFetchUserAgent sets the descriptive client identifier sent with
// every upstream request.
func OptFetchUserAgent(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Fetch UserAgent", s) {
			c.Fetch.UserAgent = s
		}
	}
}

// OptFetchQueryServiceURL sets the SPARQL endpoint URL.
func OptFetchQueryServiceURL(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Query Service URL", s) {
			c.Fetch.QueryServiceURL = s
		}
	}
}

// OptFetchAPIURL sets the MediaWiki api.php endpoint URL.
func OptFetchAPIURL(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("API URL", s) {
			c.Fetch.APIURL = s
		}
	}
}

// OptFetchQueryIntervalMs sets the minimum interval between
// query-service requests.
func OptFetchQueryIntervalMs(i int) Option {
	return func(c *Config) {
		if isValidInt("Query Interval", i) {
			c.Fetch.QueryIntervalMs = i
		}
	}
}

// OptFetchMaxRetries sets the retry attempt cap for upstream failures.
func OptFetchMaxRetries(i int) Option {
	return func(c *Config) {
		if isValidInt("Max Retries", i) {
			c.Fetch.MaxRetries = i
		}
	}
}

// OptFetchMaxWaitSec sets the cap on a single backoff wait.
func OptFetchMaxWaitSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Max Wait", i) {
			c.Fetch.MaxWaitSec = i
		}
	}
}

// OptFetchCooldownSec sets the shared slow-window duration.
func OptFetchCooldownSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Cooldown", i) {
			c.Fetch.CooldownSec = i
		}
	}
}

// OptCrawlPageSize sets the roster page size. Values below MinPageSize
// are rejected.
func OptCrawlPageSize(i int) Option {
	return func(c *Config) {
		if isValidPageSize(i) {
			c.Crawl.PageSize = i
		}
	}
}

// OptCrawlBatchSize sets the number of entities per write batch.
func OptCrawlBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Crawl.BatchSize = i
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the logging format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptJobsNumber sets the number of concurrent hydration workers.
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptLimit caps the number of items processed per run (runtime-only).
func OptLimit(i int) Option {
	return func(c *Config) {
		if i >= 0 {
			c.Limit = i
		}
	}
}

// OptProcessAll selects reprocessing of already finished items
// (runtime-only).
func OptProcessAll(b bool) Option {
	return func(c *Config) {
		c.ProcessAll = b
	}
}

// OptPlatformQID restricts a roster crawl to one platform
// (runtime-only).
func OptPlatformQID(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.PlatformQID = s
	}
}

// OptResetCursor clears the roster cursor before crawling
// (runtime-only).
func OptResetCursor(b bool) Option {
	return func(c *Config) {
		c.ResetCursor = b
	}
}

// OptOutputFile sets the coverage export destination (runtime-only).
func OptOutputFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.OutputFile = s
	}
}
