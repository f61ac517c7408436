/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package history

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndList(t *testing.T) {
	store := newTestStore(t)

	batches := []struct {
		event string
		table string
		stmts []string
	}{
		{"create-table", "parcels", []string{
			`CREATE TABLE "parcels" ("id" integer NOT NULL, PRIMARY KEY ("id"))`,
			`SELECT AddGeometryColumn('parcels', 'boundary', 4326, 'POLYGON', 2)`,
		}},
		{"alter-table", "parcels", []string{
			`SELECT UpdateGeometrySRID('parcels', 'boundary', 3857)`,
		}},
		{"create-table", "regions", []string{
			`CREATE TABLE "regions" ("area" geography(MULTIPOLYGON,4326))`,
		}},
	}

	for _, b := range batches {
		if err := store.Record(b.event, b.table, "legacy-managed", b.stmts); err != nil {
			t.Fatalf("record %s: %v", b.table, err)
		}
	}

	entries, err := store.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// newest first
	if entries[0].Table != "regions" || entries[2].Table != "parcels" {
		t.Errorf("unexpected order: %s, %s, %s", entries[0].Table, entries[1].Table, entries[2].Table)
	}
	if entries[2].Event != "create-table" || len(entries[2].Statements) != 2 {
		t.Errorf("statements not round-tripped: %+v", entries[2])
	}
	if entries[0].Dialect != "legacy-managed" {
		t.Errorf("dialect = %q", entries[0].Dialect)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("created_at not recorded")
	}
}

func TestStore_ListLimit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		if err := store.Record("alter-table", "parcels", "typmod-based", []string{"SELECT 1"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := store.List(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestStore_ListForTable(t *testing.T) {
	store := newTestStore(t)

	if err := store.Record("create-table", "parcels", "typmod-based", []string{"SELECT 1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record("create-table", "regions", "typmod-based", []string{"SELECT 2"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := store.ListForTable("parcels", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Table != "parcels" {
		t.Errorf("expected only parcels entries, got %+v", entries)
	}
}

func TestStore_EmptyList(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open store with nested path: %v", err)
	}
	defer store.Close()

	if store.Path() != path {
		t.Errorf("path = %q, want %q", store.Path(), path)
	}
}
