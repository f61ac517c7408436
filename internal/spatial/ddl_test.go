/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package spatial

import (
	"strings"
	"testing"

	"pgedge-postgis-schema/internal/schema"
)

func parcelsTable() schema.Table {
	return schema.Table{
		Name: "parcels",
		Columns: []schema.Column{
			{Name: "id", Type: "integer", NotNull: true},
			{Name: "boundary", Type: "geometry", GeometryType: "POLYGONZM", SRID: 4326, NotNull: true},
		},
		PrimaryKey: []string{"id"},
	}
}

func TestCreateTableSQL_Legacy(t *testing.T) {
	stmts := CreateTableSQL(LegacyManaged, parcelsTable())

	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d: %v", len(stmts), stmts)
	}

	if stmts[0] != `CREATE TABLE "parcels" ("id" integer NOT NULL, PRIMARY KEY ("id"))` {
		t.Errorf("unexpected CREATE TABLE: %s", stmts[0])
	}
	if strings.Contains(stmts[0], "boundary") {
		t.Errorf("legacy CREATE TABLE must not declare the geometry column inline: %s", stmts[0])
	}
	if stmts[1] != `SELECT AddGeometryColumn('parcels', 'boundary', 4326, 'POLYGON', 4)` {
		t.Errorf("unexpected registration call: %s", stmts[1])
	}
	if stmts[2] != `ALTER TABLE "parcels" ALTER "boundary" SET NOT NULL` {
		t.Errorf("unexpected NOT NULL alteration: %s", stmts[2])
	}
}

func TestCreateTableSQL_Typmod(t *testing.T) {
	stmts := CreateTableSQL(TypmodBased, parcelsTable())

	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d: %v", len(stmts), stmts)
	}
	want := `CREATE TABLE "parcels" ("id" integer NOT NULL, "boundary" geometry(POLYGONZM,4326) NOT NULL, PRIMARY KEY ("id"))`
	if stmts[0] != want {
		t.Errorf("unexpected CREATE TABLE:\n got %s\nwant %s", stmts[0], want)
	}
}

func TestCreateTableSQL_GeographyInlineBothDialects(t *testing.T) {
	table := schema.Table{
		Name: "regions",
		Columns: []schema.Column{
			{Name: "area", Type: "geography", GeometryType: "MultiPolygon", SRID: 4326},
		},
	}

	for _, mode := range []DialectMode{LegacyManaged, TypmodBased} {
		stmts := CreateTableSQL(mode, table)
		if len(stmts) != 1 {
			t.Fatalf("%s: expected 1 statement, got %d", mode, len(stmts))
		}
		if !strings.Contains(stmts[0], `"area" geography(MULTIPOLYGON,4326)`) {
			t.Errorf("%s: geography column not declared inline: %s", mode, stmts[0])
		}
	}
}

func TestCreateTableSQL_LegacyUndefinedSRID(t *testing.T) {
	table := schema.Table{
		Name: "sketches",
		Columns: []schema.Column{
			{Name: "shape", Type: "geometry", GeometryType: "POINT", SRID: 0},
		},
	}

	stmts := CreateTableSQL(LegacyManaged, table)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if stmts[1] != `SELECT AddGeometryColumn('sketches', 'shape', -1, 'POINT', 2)` {
		t.Errorf("legacy undefined SRID must canonicalize to -1: %s", stmts[1])
	}
}

func TestCreateTableSQL_TypmodSRIDPassthrough(t *testing.T) {
	table := schema.Table{
		Name: "sketches",
		Columns: []schema.Column{
			{Name: "shape", Type: "geometry", GeometryType: "POINT", SRID: 0},
		},
	}

	stmts := CreateTableSQL(TypmodBased, table)
	if !strings.Contains(stmts[0], "geometry(POINT,0)") {
		t.Errorf("typmod SRID must pass through unchanged: %s", stmts[0])
	}
}

func TestCreateTableSQL_ColumnComment(t *testing.T) {
	table := schema.Table{
		Name: "parcels",
		Columns: []schema.Column{
			{Name: "id", Type: "integer", Comment: "parcel number"},
		},
	}

	stmts := CreateTableSQL(TypmodBased, table)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if stmts[1] != `COMMENT ON COLUMN "parcels"."id" IS 'parcel number'` {
		t.Errorf("unexpected comment statement: %s", stmts[1])
	}
}

func TestSpatialIndexSQL(t *testing.T) {
	got := SpatialIndexSQL(IndexDescriptor{
		Name:    "idx_parcels_boundary",
		Table:   "parcels",
		Columns: []string{"boundary"},
	})
	want := `CREATE INDEX "idx_parcels_boundary" ON "parcels" USING gist ("boundary")`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSpatialIndexSQL_Unique(t *testing.T) {
	got := SpatialIndexSQL(IndexDescriptor{
		Name:    "idx_one",
		Table:   "parcels",
		Columns: []string{"a", "b"},
		Unique:  true,
	})
	want := `CREATE UNIQUE INDEX "idx_one" ON "parcels" USING gist ("a", "b")`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestDropGeometryColumnSQL(t *testing.T) {
	stmts := DropGeometryColumnSQL("parcels", "boundary", true)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if stmts[0] != `ALTER TABLE "parcels" ALTER "boundary" DROP NOT NULL` {
		t.Errorf("unexpected relaxation: %s", stmts[0])
	}
	if stmts[1] != `SELECT DropGeometryColumn('parcels', 'boundary')` {
		t.Errorf("unexpected unregister call: %s", stmts[1])
	}

	stmts = DropGeometryColumnSQL("parcels", "boundary", false)
	if len(stmts) != 1 {
		t.Fatalf("nullable column should skip the relaxation, got %v", stmts)
	}
}

func TestUpdateSRIDSQL(t *testing.T) {
	got := UpdateSRIDSQL(TypmodBased, "parcels", "boundary", 3857)
	want := `SELECT UpdateGeometrySRID('parcels', 'boundary', 3857)`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	got = UpdateSRIDSQL(LegacyManaged, "parcels", "boundary", 0)
	if got != `SELECT UpdateGeometrySRID('parcels', 'boundary', -1)` {
		t.Errorf("legacy undefined SRID must canonicalize to -1: %s", got)
	}
}

func TestQuoteLiteral_EscapesQuotes(t *testing.T) {
	if got := quoteLiteral("it's"); got != "'it''s'" {
		t.Errorf("got %s", got)
	}
}
