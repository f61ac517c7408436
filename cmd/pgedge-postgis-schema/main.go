/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pgedge-postgis-schema/internal/config"
	"pgedge-postgis-schema/internal/database"
	"pgedge-postgis-schema/internal/spatial"
)

var (
	configFile  string
	dbHost      string
	dbPort      int
	dbName      string
	dbUser      string
	dbPassword  string
	dbSSLMode   string
	schemaFile  string
	historyPath string
)

var rootCmd = &cobra.Command{
	Use:   "pgedge-postgis-schema",
	Short: "pgEdge PostGIS Schema Manager - spatially-aware schema DDL for PostgreSQL",
	Long: `pgedge-postgis-schema manages spatially-typed columns and indexes in a
PostGIS-backed database across both PostGIS generations: the legacy
managed-table dialect (explicit AddGeometryColumn registration) and the
modern typmod dialect (type-embedded subtype/dimension/SRID).

It introspects existing spatial columns and indexes from the catalog,
generates dialect-correct DDL from declarative YAML schema definitions,
and journals every generated batch locally.`,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "pgedge-postgis-schema.yaml",
		"Path to configuration file")
	pf.StringVar(&dbHost, "host", "localhost", "Database host")
	pf.IntVar(&dbPort, "port", 5432, "Database port")
	pf.StringVar(&dbName, "dbname", "postgres", "Database name")
	pf.StringVar(&dbUser, "user", "", "Database user")
	pf.StringVar(&dbPassword, "password", "", "Database password")
	pf.StringVar(&dbSSLMode, "sslmode", "prefer", "SSL mode")
	pf.StringVarP(&schemaFile, "schema", "s", "", "Schema definition file")
	pf.StringVar(&historyPath, "history-path", "", "Path to the DDL history journal")

	rootCmd.AddCommand(dialectCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	// Let cobra handle errors and exit codes
	// Usage is shown for flag parse errors, but suppressed for runtime errors
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration from defaults, file,
// environment and explicitly set flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile, cliFlags())
	if err != nil {
		return nil, err
	}
	database.SetLogLevelFromString(cfg.LogLevel)
	return cfg, nil
}

// cliFlags captures which persistent flags were explicitly set, so they
// keep their priority over file and environment values on reload
func cliFlags() config.CLIFlags {
	pf := rootCmd.PersistentFlags()
	return config.CLIFlags{
		ConfigFile:    configFile,
		ConfigFileSet: pf.Changed("config"),

		DBHost:    dbHost,
		DBHostSet: pf.Changed("host"),
		DBPort:    dbPort,
		DBPortSet: pf.Changed("port"),
		DBName:    dbName,
		DBNameSet: pf.Changed("dbname"),
		DBUser:    dbUser,
		DBUserSet: pf.Changed("user"),

		DBPassword: dbPassword,
		DBPassSet:  pf.Changed("password"),
		DBSSLMode:  dbSSLMode,
		DBSSLSet:   pf.Changed("sslmode"),

		HistoryPath:    historyPath,
		HistoryPathSet: pf.Changed("history-path"),
		SchemaFile:     schemaFile,
		SchemaFileSet:  pf.Changed("schema"),
	}
}

// connectRouter connects to the database and binds a spatial router to
// the connection. The caller owns closing the returned client.
func connectRouter(ctx context.Context, cfg *config.Config) (*database.Client, *spatial.Router, error) {
	registry := spatial.NewTypeRegistry()
	client := database.NewClient("", &cfg.Database, registry)
	if err := client.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect: %w", err)
	}

	router := spatial.NewRouter(registry)
	if err := router.Connect(ctx, client, database.NewIntrospector(client)); err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, router, nil
}

var dialectCmd = &cobra.Command{
	Use:   "dialect",
	Short: "Show which PostGIS dialect the connected database runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client, router, err := connectRouter(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		fmt.Printf("PostGIS dialect: %s\n", router.Dialect())
		return nil
	},
}
