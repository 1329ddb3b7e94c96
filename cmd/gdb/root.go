package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gamedex/gdb/internal/iofs"
	"github.com/gamedex/gdb/pkg/config"
	"github.com/gamedex/gdb/pkg/gdb"
	"github.com/gamedex/gdb/pkg/logger"
	"github.com/gnames/gn"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: fmt.Sprintf("version: %s\nbuild:   %s", gdb.Version, gdb.Build),
	Use:     "gdb",
	Short:   "GDb builds the GameDex database from Wikidata",
	Long: `GDb is a CLI tool that ingests video-game data from the Wikidata
query service and document API into the GameDex PostgreSQL database.

Each stage is independently re-runnable and resumes where it left off:

  create     create or update the database schema
  platforms  discover platforms, mark majors, enrich platform rows
  roster     crawl per-platform game rosters (cursor-based, resumable)
  games      hydrate game entity documents through the cache
  normalize  derive relational rows from cached claim documents
  relations  re-derive cross-game relations only
  scores     recompute popularity and coverage scores
  coverage   export the SQLite coverage artifact

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (GDB_*)
  3. Config file (~/.config/gdb/config.yaml)
  4. Built-in defaults`,
	PersistentPreRunE: bootstrap,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	setupLogging(cfg)

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir))

	return nil
}

// setupLogging installs the default logger. Every log line of one
// invocation carries the same run id, so interleaved runs can be told
// apart in aggregated logs.
func setupLogging(cfg *config.Config) {
	l := logger.New(&cfg.Log).With(
		slog.String("run_id", uuid.NewString()),
	)
	slog.SetDefault(l)
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables
	// are allowed. These match the fields included in
	// config.ToOptions(), i.e. persistent configuration that can be
	// stored in config.yaml.
	v.SetEnvPrefix("GDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Database configuration
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.database", "DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	// Fetch configuration
	v.BindEnv("fetch.user_agent", "FETCH_USER_AGENT")
	v.BindEnv("fetch.query_service_url", "FETCH_QUERY_SERVICE_URL")
	v.BindEnv("fetch.api_url", "FETCH_API_URL")
	v.BindEnv("fetch.query_interval_ms", "FETCH_QUERY_INTERVAL_MS")
	v.BindEnv("fetch.max_retries", "FETCH_MAX_RETRIES")
	v.BindEnv("fetch.max_wait_sec", "FETCH_MAX_WAIT_SEC")
	v.BindEnv("fetch.cooldown_sec", "FETCH_COOLDOWN_SEC")

	// Crawl configuration
	v.BindEnv("crawl.page_size", "CRAWL_PAGE_SIZE")
	v.BindEnv("crawl.batch_size", "CRAWL_BATCH_SIZE")

	// Log configuration
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")

	// General configuration
	v.BindEnv("jobs_number", "JOBS_NUMBER")

	v.AutomaticEnv()
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to
// happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Remove the automatic "gdb version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for gdb")

	rootCmd.AddCommand(getCreateCmd())
	rootCmd.AddCommand(getPlatformsCmd())
	rootCmd.AddCommand(getRosterCmd())
	rootCmd.AddCommand(getGamesCmd())
	rootCmd.AddCommand(getNormalizeCmd())
	rootCmd.AddCommand(getRelationsCmd())
	rootCmd.AddCommand(getScoresCmd())
	rootCmd.AddCommand(getCoverageCmd())
}
