// Package iotesting provides shared helpers for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"

	"github.com/gamedex/gdb/pkg/config"
)

// TestDatabaseName is the database name used for all integration
// tests, so tests never accidentally run against a production
// database.
const TestDatabaseName = "gamedex_test"

// GetTestConfig returns a configuration suitable for integration
// tests: defaults with the database name forced to TestDatabaseName.
// Connection parameters can be adjusted through the regular GDB_
// environment variables.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	cfg := config.New()

	var opts []config.Option
	if v := os.Getenv("GDB_DATABASE_HOST"); v != "" {
		opts = append(opts, config.OptDatabaseHost(v))
	}
	if v := os.Getenv("GDB_DATABASE_USER"); v != "" {
		opts = append(opts, config.OptDatabaseUser(v))
	}
	if v := os.Getenv("GDB_DATABASE_PASSWORD"); v != "" {
		opts = append(opts, config.OptDatabasePassword(v))
	}
	cfg.Update(opts)

	// Always use the test database for safety.
	cfg.Database.Database = TestDatabaseName
	return cfg
}

// GetTestDatabaseConfig returns only the database configuration.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	return &GetTestConfig().Database
}
