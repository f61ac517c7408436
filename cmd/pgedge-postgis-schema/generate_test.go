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
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"pgedge-postgis-schema/internal/schemafile"
	"pgedge-postgis-schema/internal/spatial"
)

type stubConnection struct{}

func (stubConnection) Pool() *pgxpool.Pool { return nil }

type stubCatalog struct {
	mode  spatial.DialectMode
	facts *spatial.TableFacts
}

func (s *stubCatalog) DetectDialect(ctx context.Context) (spatial.DialectMode, error) {
	return s.mode, nil
}

func (s *stubCatalog) SnapshotTable(ctx context.Context, table string) (*spatial.TableFacts, error) {
	return s.facts, nil
}

func offlineRouter(mode spatial.DialectMode) *spatial.Router {
	r := spatial.NewRouter(nil)
	r.BindDialect(mode)
	return r
}

func TestGenerateAlter_RenameCarriesSRIDChange(t *testing.T) {
	old := schemafile.TableDef{
		Name: "parcels",
		Columns: []schemafile.ColumnDef{
			{Name: "boundary", Type: "geometry", GeometryType: "POLYGON", SRID: 4326},
		},
	}
	new := schemafile.TableDef{
		Name: "parcels",
		Columns: []schemafile.ColumnDef{
			{Name: "outline", Type: "geometry", GeometryType: "POLYGON", SRID: 3857, RenamedFrom: "boundary"},
		},
	}

	stmts, err := generateAlter(context.Background(), offlineRouter(spatial.TypmodBased), old, new)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %v", stmts)
	}
	if stmts[0] != `SELECT UpdateGeometrySRID('parcels', 'outline', 3857)` {
		t.Errorf("unexpected SRID update: %s", stmts[0])
	}
}

func TestGenerateAlter_RenameRejectedUnderLegacy(t *testing.T) {
	old := schemafile.TableDef{
		Name: "parcels",
		Columns: []schemafile.ColumnDef{
			{Name: "boundary", Type: "geometry", GeometryType: "POLYGON", SRID: 4326},
		},
	}
	new := schemafile.TableDef{
		Name: "parcels",
		Columns: []schemafile.ColumnDef{
			{Name: "outline", Type: "geometry", GeometryType: "POLYGON", SRID: 4326, RenamedFrom: "boundary"},
		},
	}

	_, err := generateAlter(context.Background(), offlineRouter(spatial.LegacyManaged), old, new)
	var mutErr *spatial.UnsupportedMutationError
	if !errors.As(err, &mutErr) {
		t.Fatalf("expected UnsupportedMutationError, got %v", err)
	}
}

func TestGenerateDrop_Offline(t *testing.T) {
	def := schemafile.TableDef{
		Name: "parcels",
		Columns: []schemafile.ColumnDef{
			{Name: "boundary", Type: "geometry", GeometryType: "POLYGON", SRID: 4326},
		},
	}

	stmts, err := generateDrop(context.Background(), offlineRouter(spatial.TypmodBased), def)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(stmts) != 1 || stmts[0] != `DROP TABLE "parcels"` {
		t.Errorf("expected plain drop, got %v", stmts)
	}
}

func TestGenerateDrop_LegacyManagedTable(t *testing.T) {
	cat := &stubCatalog{
		mode: spatial.LegacyManaged,
		facts: &spatial.TableFacts{
			Table: "parcels",
			GeometryColumns: map[string]spatial.ColumnFacts{
				"boundary": {GeometryType: "POLYGON", Dimension: 2, SRID: 4326},
			},
		},
	}
	router := spatial.NewRouter(nil)
	if err := router.Connect(context.Background(), stubConnection{}, cat); err != nil {
		t.Fatalf("connect: %v", err)
	}

	def := schemafile.TableDef{
		Name: "parcels",
		Columns: []schemafile.ColumnDef{
			{Name: "boundary", Type: "geometry", GeometryType: "POLYGON", SRID: 4326},
		},
	}

	stmts, err := generateDrop(context.Background(), router, def)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(stmts) != 1 || stmts[0] != `SELECT DropGeometryTable('parcels')` {
		t.Errorf("expected managed drop, got %v", stmts)
	}
}
