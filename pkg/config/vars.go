package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gdb"
)

const (
	// MinPageSize is the hard floor for roster page size. Smaller pages
	// make the crawl issue one serialized query-service request per
	// handful of rows, which never finishes for large rosters.
	MinPageSize = 100

	// EntityProbeChunk is the maximum number of entity ids per
	// wbgetentities metadata probe.
	EntityProbeChunk = 50
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gdb by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gdb/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
