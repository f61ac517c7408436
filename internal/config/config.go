/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the complete schema manager configuration
type Config struct {
	// Database connection configuration
	Database DatabaseConfig `yaml:"database"`

	// DDL history journal configuration
	History HistoryConfig `yaml:"history"`

	// Declarative schema definition configuration
	Schema SchemaConfig `yaml:"schema"`

	// Log level for database operations: none, info, debug, trace
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`     // Database host (default: localhost)
	Port     int    `yaml:"port"`     // Database port (default: 5432)
	Database string `yaml:"database"` // Database name (default: postgres)
	User     string `yaml:"user"`     // Database user (required unless a connection string is given)
	Password string `yaml:"password"` // Database password (optional, falls back to PGEDGE_SCHEMA_DB_PASSWORD or .pgpass)
	SSLMode  string `yaml:"sslmode"`  // SSL mode: disable, require, verify-ca, verify-full (default: prefer)

	// Connection pool settings
	PoolMaxConns        int    `yaml:"pool_max_conns"`          // Maximum number of connections (default: 4)
	PoolMinConns        int    `yaml:"pool_min_conns"`          // Minimum number of connections (default: 0)
	PoolMaxConnIdleTime string `yaml:"pool_max_conn_idle_time"` // Max idle time before a connection is closed (default: 30m)
}

// HistoryConfig holds DDL history journal settings
type HistoryConfig struct {
	Enabled      bool   `yaml:"enabled"`       // Whether generated DDL batches are journaled (default: true)
	DatabasePath string `yaml:"database_path"` // Path to the SQLite journal (default: ./pgedge-postgis-schema-history.db)
}

// SchemaConfig holds declarative schema definition settings
type SchemaConfig struct {
	File string `yaml:"file"` // Default schema definition file for generate/watch
}

// CLIFlags represents command line flag values and whether they were explicitly set
type CLIFlags struct {
	ConfigFileSet bool
	ConfigFile    string

	// Database flags
	DBHost     string
	DBHostSet  bool
	DBPort     int
	DBPortSet  bool
	DBName     string
	DBNameSet  bool
	DBUser     string
	DBUserSet  bool
	DBPassword string
	DBPassSet  bool
	DBSSLMode  string
	DBSSLSet   bool

	// History flags
	HistoryPath    string
	HistoryPathSet bool

	// Schema definition flags
	SchemaFile    string
	SchemaFileSet bool
}

// LoadConfig loads configuration with proper priority:
// 1. Command line flags (highest priority)
// 2. Environment variables
// 3. Configuration file
// 4. Hard-coded defaults (lowest priority)
func LoadConfig(configPath string, cliFlags CLIFlags) (*Config, error) {
	cfg := defaultConfig()

	if configPath != "" {
		fileCfg, err := loadConfigFile(configPath)
		if err != nil {
			// If the file was explicitly specified, error out; otherwise
			// it simply may not exist and defaults apply
			if cliFlags.ConfigFileSet {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		} else {
			mergeConfig(cfg, fileCfg)
		}
	}

	applyEnvironmentVariables(cfg)
	applyCLIFlags(cfg, cliFlags)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns configuration with hard-coded defaults
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:                "localhost",
			Port:                5432,
			Database:            "postgres",
			User:                "",       // Required - must be provided
			Password:            "",       // Optional - will use env var or .pgpass
			SSLMode:             "prefer", // Default SSL mode
			PoolMaxConns:        4,        // Default max connections
			PoolMinConns:        0,        // Default min connections
			PoolMaxConnIdleTime: "30m",    // Default idle timeout
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "./pgedge-postgis-schema-history.db",
		},
		Schema: SchemaConfig{
			File: "",
		},
		LogLevel: "none",
	}
}

// fileConfig mirrors Config for decoding. The history section uses
// pointer fields so an absent section (or an omitted enabled flag) can be
// told apart from an explicit false, which YAML's zero values cannot.
type fileConfig struct {
	Database DatabaseConfig     `yaml:"database"`
	History  *fileHistoryConfig `yaml:"history"`
	Schema   SchemaConfig       `yaml:"schema"`
	LogLevel string             `yaml:"log_level"`
}

type fileHistoryConfig struct {
	Enabled      *bool  `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
}

// loadConfigFile loads configuration from a YAML file
func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}

// mergeConfig merges file values into dest, only overriding what the file
// actually sets
func mergeConfig(dest *Config, src *fileConfig) {
	// Database
	if src.Database.Host != "" {
		dest.Database.Host = src.Database.Host
	}
	if src.Database.Port != 0 {
		dest.Database.Port = src.Database.Port
	}
	if src.Database.Database != "" {
		dest.Database.Database = src.Database.Database
	}
	if src.Database.User != "" {
		dest.Database.User = src.Database.User
	}
	if src.Database.Password != "" {
		dest.Database.Password = src.Database.Password
	}
	if src.Database.SSLMode != "" {
		dest.Database.SSLMode = src.Database.SSLMode
	}
	if src.Database.PoolMaxConns != 0 {
		dest.Database.PoolMaxConns = src.Database.PoolMaxConns
	}
	if src.Database.PoolMinConns != 0 {
		dest.Database.PoolMinConns = src.Database.PoolMinConns
	}
	if src.Database.PoolMaxConnIdleTime != "" {
		dest.Database.PoolMaxConnIdleTime = src.Database.PoolMaxConnIdleTime
	}

	// History - only an explicitly written enabled flag overrides the
	// default; a file without a history section leaves journaling on
	if src.History != nil {
		if src.History.Enabled != nil {
			dest.History.Enabled = *src.History.Enabled
		}
		if src.History.DatabasePath != "" {
			dest.History.DatabasePath = src.History.DatabasePath
		}
	}

	// Schema
	if src.Schema.File != "" {
		dest.Schema.File = src.Schema.File
	}

	if src.LogLevel != "" {
		dest.LogLevel = src.LogLevel
	}
}

// applyEnvironmentVariables overrides config with environment variables
func applyEnvironmentVariables(cfg *Config) {
	if v := os.Getenv("PGEDGE_SCHEMA_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("PGEDGE_SCHEMA_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("PGEDGE_SCHEMA_DB_NAME"); v != "" {
		cfg.Database.Database = v
	}
	if v := os.Getenv("PGEDGE_SCHEMA_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("PGEDGE_SCHEMA_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("PGEDGE_SCHEMA_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("PGEDGE_SCHEMA_HISTORY_PATH"); v != "" {
		cfg.History.DatabasePath = v
	}
	if v := os.Getenv("PGEDGE_SCHEMA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// applyCLIFlags overrides config with explicitly set command line flags
func applyCLIFlags(cfg *Config, flags CLIFlags) {
	if flags.DBHostSet {
		cfg.Database.Host = flags.DBHost
	}
	if flags.DBPortSet {
		cfg.Database.Port = flags.DBPort
	}
	if flags.DBNameSet {
		cfg.Database.Database = flags.DBName
	}
	if flags.DBUserSet {
		cfg.Database.User = flags.DBUser
	}
	if flags.DBPassSet {
		cfg.Database.Password = flags.DBPassword
	}
	if flags.DBSSLSet {
		cfg.Database.SSLMode = flags.DBSSLMode
	}
	if flags.HistoryPathSet {
		cfg.History.DatabasePath = flags.HistoryPath
	}
	if flags.SchemaFileSet {
		cfg.Schema.File = flags.SchemaFile
	}
}

// validateConfig checks the final configuration for consistency
func validateConfig(cfg *Config) error {
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return fmt.Errorf("database port %d out of range", cfg.Database.Port)
	}

	switch cfg.Database.SSLMode {
	case "", "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("unknown sslmode %q", cfg.Database.SSLMode)
	}

	switch cfg.LogLevel {
	case "", "none", "info", "debug", "trace":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}

	if cfg.History.Enabled && cfg.History.DatabasePath == "" {
		return fmt.Errorf("history is enabled but history.database_path is empty")
	}

	return nil
}

// BuildConnectionString creates a PostgreSQL connection string from DatabaseConfig
// If password is not set, pgx will automatically look it up from .pgpass file
func (cfg *DatabaseConfig) BuildConnectionString() string {
	connStr := fmt.Sprintf("postgres://%s", cfg.User)

	// Add password only if explicitly set
	if cfg.Password != "" {
		connStr += ":" + cfg.Password
	}

	connStr += fmt.Sprintf("@%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)

	if cfg.SSLMode != "" {
		connStr += "?sslmode=" + cfg.SSLMode
	}

	return connStr
}

// ConfigFileExists checks if a config file exists at the given path
func ConfigFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
