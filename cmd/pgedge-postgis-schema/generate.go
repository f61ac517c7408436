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
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"pgedge-postgis-schema/internal/config"
	"pgedge-postgis-schema/internal/database"
	"pgedge-postgis-schema/internal/history"
	"pgedge-postgis-schema/internal/schema"
	"pgedge-postgis-schema/internal/schemafile"
	"pgedge-postgis-schema/internal/spatial"
)

var (
	offlineDialect string
	fromFile       string
)

func init() {
	for _, cmd := range []*cobra.Command{generateCmd, watchCmd} {
		cmd.Flags().StringVar(&offlineDialect, "dialect", "",
			"Generate offline for 'legacy' or 'typmod' without connecting")
		cmd.Flags().StringVar(&fromFile, "from", "",
			"Older schema definition to diff against")
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate dialect-correct DDL from a schema definition file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Schema.File == "" {
			return fmt.Errorf("no schema definition file given, use --schema or schema.file in the configuration")
		}

		return runGenerate(cmd.Context(), cfg, cfg.Schema.File)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate DDL whenever the schema definition file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Schema.File == "" {
			return fmt.Errorf("no schema definition file given, use --schema or schema.file in the configuration")
		}

		path := filepath.Clean(cfg.Schema.File)
		reloadable := config.NewReloadableConfig(cfg, configFile, cliFlags())

		if err := runGenerate(cmd.Context(), cfg, path); err != nil {
			fmt.Printf("-- generation failed: %v\n", err)
		}

		watcher, err := config.NewFileWatcher(path, func() error {
			return runGenerate(context.Background(), reloadable.Get(), path)
		})
		if err != nil {
			return err
		}
		watcher.Start()
		defer watcher.Stop()

		// Pick up edits to the configuration too, e.g. toggling history
		if config.ConfigFileExists(configFile) {
			cfgWatcher, err := config.NewFileWatcher(configFile, reloadable.Reload)
			if err != nil {
				return err
			}
			cfgWatcher.Start()
			defer cfgWatcher.Stop()
		}

		fmt.Printf("Watching %s, press Ctrl-C to stop\n", path)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		return nil
	},
}

// runGenerate loads the schema definition and emits DDL for every table
// in it, journaling each batch when history is enabled
func runGenerate(ctx context.Context, cfg *config.Config, path string) error {
	f, err := schemafile.Load(path)
	if err != nil {
		return err
	}

	var old *schemafile.File
	if fromFile != "" {
		if old, err = schemafile.Load(fromFile); err != nil {
			return err
		}
	}

	router, cleanup, err := routerFor(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var store *history.Store
	if cfg.History.Enabled {
		if store, err = history.NewStore(cfg.History.DatabasePath); err != nil {
			return err
		}
		defer store.Close()
	}

	for _, t := range f.Tables {
		stmts, event, err := generateTable(ctx, router, t, old)
		if err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}

		if len(stmts) == 0 {
			fmt.Printf("-- %s: no spatial DDL required\n", t.Name)
			continue
		}

		fmt.Printf("-- %s\n", t.Name)
		for _, stmt := range stmts {
			fmt.Printf("%s;\n", stmt)
		}

		database.LogGeneratedSQL(event, stmts)
		if store != nil {
			if err := store.Record(event, t.Name, router.Dialect().String(), stmts); err != nil {
				return err
			}
		}
	}

	// Tables present in the older definition but gone from the new one
	// are drops
	if old != nil {
		for _, ot := range old.Tables {
			if _, kept := f.Table(ot.Name); kept {
				continue
			}

			stmts, err := generateDrop(ctx, router, ot)
			if err != nil {
				return fmt.Errorf("table %s: %w", ot.Name, err)
			}

			fmt.Printf("-- %s\n", ot.Name)
			for _, stmt := range stmts {
				fmt.Printf("%s;\n", stmt)
			}

			database.LogGeneratedSQL("drop-table", stmts)
			if store != nil {
				if err := store.Record("drop-table", ot.Name, router.Dialect().String(), stmts); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// routerFor binds a router either to a live connection or, with
// --dialect, to a fixed dialect for offline generation
func routerFor(ctx context.Context, cfg *config.Config) (*spatial.Router, func(), error) {
	if offlineDialect != "" {
		var mode spatial.DialectMode
		switch offlineDialect {
		case "legacy":
			mode = spatial.LegacyManaged
		case "typmod":
			mode = spatial.TypmodBased
		default:
			return nil, nil, fmt.Errorf("unknown dialect %q, want legacy or typmod", offlineDialect)
		}
		router := spatial.NewRouter(nil)
		router.BindDialect(mode)
		return router, func() {}, nil
	}

	client, router, err := connectRouter(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return router, client.Close, nil
}

// generateTable emits either a spatial-aware CREATE TABLE or, when an
// older definition of the table exists, the alteration DDL
func generateTable(ctx context.Context, router *spatial.Router, t schemafile.TableDef, old *schemafile.File) ([]string, string, error) {
	if old != nil {
		if ot, ok := old.Table(t.Name); ok {
			stmts, err := generateAlter(ctx, router, ot, t)
			return stmts, "alter-table", err
		}
	}

	var stmts []string
	if err := collect(router.CreateTable(t.Schema()), &stmts); err != nil {
		return nil, "", err
	}

	d := schema.Diff{Table: t.Name, AddedIndexes: t.Schema().Indexes}
	_, idxRes := router.AlterTableIndexes(d, nil)
	if err := collect(idxRes, &stmts); err != nil {
		return nil, "", err
	}

	return stmts, "create-table", nil
}

// generateDrop emits DDL for a removed table: the managed-drop call when
// the router claims the drop, a plain DROP TABLE otherwise
func generateDrop(ctx context.Context, router *spatial.Router, t schemafile.TableDef) ([]string, error) {
	facts, err := router.Snapshot(ctx, t.Name)
	if err != nil {
		var cfgErr *spatial.ConfigurationError
		if !errors.As(err, &cfgErr) {
			return nil, err
		}
		facts = nil
	}

	res := router.DropTable(t.Schema(), facts)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Action == spatial.ActionReplace {
		return res.SQL, nil
	}
	return []string{"DROP TABLE " + pgx.Identifier{t.Name}.Sanitize()}, nil
}

// generateAlter runs a table diff through the router event by event
func generateAlter(ctx context.Context, router *spatial.Router, old, new schemafile.TableDef) ([]string, error) {
	d := schemafile.DiffTables(old, new)
	if d.IsEmpty() {
		return nil, nil
	}

	// Offline routers have no catalog; the index path tolerates nil facts
	facts, err := router.Snapshot(ctx, d.Table)
	if err != nil {
		var cfgErr *spatial.ConfigurationError
		if !errors.As(err, &cfgErr) {
			return nil, err
		}
		facts = nil
	}

	var stmts []string
	for _, c := range d.AddedColumns {
		if err := collect(router.AddColumn(d.Table, c), &stmts); err != nil {
			return nil, err
		}
	}
	for _, c := range d.RemovedColumns {
		if err := collect(router.RemoveColumn(d.Table, c), &stmts); err != nil {
			return nil, err
		}
	}
	for _, cd := range d.ChangedColumns {
		if err := collect(router.ChangeColumn(d.Table, cd), &stmts); err != nil {
			return nil, err
		}
	}
	for _, rn := range d.RenamedColumns {
		if err := collect(router.RenameColumn(d.Table, rn.Old.Name, rn.New), &stmts); err != nil {
			return nil, err
		}
		// Attribute changes riding along with a rename (e.g. a new SRID)
		// still go through the change-column gate
		if err := collect(router.ChangeColumn(d.Table, schema.ColumnDiff{Old: rn.Old, New: rn.New}), &stmts); err != nil {
			return nil, err
		}
	}

	// Non-spatial entries stay in the returned diff for the generic DDL
	// machinery; only the spatial SQL is ours to emit
	_, idxRes := router.AlterTableIndexes(d, facts)
	if err := collect(idxRes, &stmts); err != nil {
		return nil, err
	}

	return stmts, nil
}

// collect appends a result's SQL, surfacing rejections as errors
func collect(res spatial.Result, stmts *[]string) error {
	if res.Err != nil {
		return res.Err
	}
	*stmts = append(*stmts, res.SQL...)
	return nil
}
