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
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pgedge-postgis-schema/internal/history"
	"pgedge-postgis-schema/internal/schema"
	"pgedge-postgis-schema/internal/spatial"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries to show")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <table>",
	Short: "Show a table's spatial columns and indexes from the catalog",
	Args:  cobra.ExactArgs(1),
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

		facts, err := router.Snapshot(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to snapshot table %s: %w", args[0], err)
		}

		renderFacts(router, facts)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled DDL batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.History.Enabled {
			return fmt.Errorf("history is disabled in the configuration")
		}

		store, err := history.NewStore(cfg.History.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(historyLimit)
		if err != nil {
			return err
		}

		t := newTableWriter()
		t.AppendHeader(table.Row{"ID", "When", "Event", "Table", "Dialect", "Statements"})
		for _, e := range entries {
			t.AppendRow(table.Row{
				e.ID,
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Event,
				e.Table,
				e.Dialect,
				strings.Join(e.Statements, "; "),
			})
		}
		t.Render()
		return nil
	},
}

// renderFacts prints a catalog snapshot as terminal tables. Columns and
// indexes are rebuilt into typed definitions through the router rather
// than dumped raw, so what is shown is what the schema layer would see.
func renderFacts(router *spatial.Router, facts *spatial.TableFacts) {
	if len(facts.GeometryColumns) == 0 && len(facts.GeographyColumns) == 0 && len(facts.SpatialIndexes) == 0 {
		fmt.Printf("Table %s has no spatial columns or indexes\n", facts.Table)
		return
	}

	if len(facts.GeometryColumns) > 0 || len(facts.GeographyColumns) > 0 {
		t := newTableWriter()
		t.AppendHeader(table.Row{"Column", "Kind", "Type", "SRID"})
		for _, name := range sortedNames(facts.GeometryColumns) {
			col, _ := router.DefineColumn(schema.Column{Name: name, Type: "geometry"}, facts)
			t.AppendRow(table.Row{name, "geometry", col.GeometryType, col.SRID})
		}
		for _, name := range sortedNames(facts.GeographyColumns) {
			col, _ := router.DefineColumn(schema.Column{Name: name, Type: "geography"}, facts)
			t.AppendRow(table.Row{name, "geography", col.GeometryType, col.SRID})
		}
		t.Render()
	}

	if len(facts.SpatialIndexes) > 0 {
		t := newTableWriter()
		t.AppendHeader(table.Row{"Index", "Columns", "Unique", "Primary"})
		for _, name := range sortedNames(facts.SpatialIndexes) {
			idx, _ := router.DefineIndex(schema.Index{Name: name}, facts)
			t.AppendRow(table.Row{name, strings.Join(idx.Columns, ", "), idx.Unique, idx.Primary})
		}
		t.Render()
	}
}

// sortedNames returns a map's keys in stable order for rendering
func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newTableWriter builds a writer sized to the terminal when stdout is one
func newTableWriter() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 40 {
			t.SetAllowedRowLength(width)
		}
	}
	return t
}
