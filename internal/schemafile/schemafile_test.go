/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package schemafile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSchemaFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write schema file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeSchemaFile(t, `
tables:
  - name: parcels
    columns:
      - name: id
        type: integer
        not_null: true
      - name: boundary
        type: geometry
        geometry_type: POLYGONZM
        srid: 4326
        not_null: true
    primary_key: [id]
    indexes:
      - name: idx_parcels_boundary
        columns: [boundary]
        spatial: true
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(f.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(f.Tables))
	}

	tab, ok := f.Table("parcels")
	if !ok {
		t.Fatal("table parcels not found")
	}
	if len(tab.Columns) != 2 {
		t.Errorf("expected 2 columns, got %d", len(tab.Columns))
	}
	if tab.Columns[1].GeometryType != "POLYGONZM" || tab.Columns[1].SRID != 4326 {
		t.Errorf("spatial options not parsed: %+v", tab.Columns[1])
	}
	if !tab.Indexes[0].Spatial {
		t.Error("spatial index marker not parsed")
	}

	st := tab.Schema()
	if st.Name != "parcels" || len(st.Columns) != 2 || !st.IsPrimaryKey("id") {
		t.Errorf("schema conversion mismatch: %+v", st)
	}
	if !st.Indexes[0].Spatial {
		t.Error("schema conversion lost the spatial marker")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no tables",
			content: `tables: []`,
			wantErr: "no tables defined",
		},
		{
			name: "unnamed table",
			content: `
tables:
  - columns:
      - name: id
        type: integer
`,
			wantErr: "empty name",
		},
		{
			name: "column without type",
			content: `
tables:
  - name: parcels
    columns:
      - name: id
`,
			wantErr: "name and type",
		},
		{
			name: "duplicate column",
			content: `
tables:
  - name: parcels
    columns:
      - name: id
        type: integer
      - name: id
        type: bigint
`,
			wantErr: "duplicate column id",
		},
		{
			name: "index references unknown column",
			content: `
tables:
  - name: parcels
    columns:
      - name: id
        type: integer
    indexes:
      - name: idx_boundary
        columns: [boundary]
`,
			wantErr: "unknown column boundary",
		},
	}

	for _, tt := range tests {
		path := writeSchemaFile(t, tt.content)
		_, err := Load(path)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.wantErr)
		}
	}
}
