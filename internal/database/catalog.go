/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pgedge-postgis-schema/internal/spatial"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Introspector answers the spatial router's catalog questions with
// read-only queries. It implements spatial.Catalog.
type Introspector struct {
	client *Client
}

// NewIntrospector creates an introspector over a connected client.
func NewIntrospector(client *Client) *Introspector {
	return &Introspector{client: client}
}

// DetectDialect determines which PostGIS generation the database runs by
// checking what geometry_columns is: the legacy dialect keeps it as a
// real table maintained by the registration procedures, the typmod
// dialect derives it as a view over the type catalogs.
func (in *Introspector) DetectDialect(ctx context.Context) (spatial.DialectMode, error) {
	startTime := time.Now()

	query := `
		SELECT c.relkind::text
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relname = 'geometry_columns'
		LIMIT 1
	`

	var relkind string
	err := in.client.Pool().QueryRow(ctx, query).Scan(&relkind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("geometry_columns not found: PostGIS does not appear to be installed")
		}
		LogDialectProbe("", time.Since(startTime), err)
		return spatial.DialectUnknown, err
	}

	var mode spatial.DialectMode
	switch relkind {
	case "r":
		mode = spatial.LegacyManaged
	case "v", "m":
		mode = spatial.TypmodBased
	default:
		err := fmt.Errorf("unexpected relkind %q for geometry_columns", relkind)
		LogDialectProbe("", time.Since(startTime), err)
		return spatial.DialectUnknown, err
	}

	LogDialectProbe(mode.String(), time.Since(startTime), nil)
	return mode, nil
}

// SnapshotTable captures the spatial catalog metadata for one table. A
// table with no spatial registrations yields an empty snapshot; missing
// metadata is the normal "not spatial" signal, never an error.
func (in *Introspector) SnapshotTable(ctx context.Context, table string) (*spatial.TableFacts, error) {
	startTime := time.Now()

	facts := &spatial.TableFacts{
		Table:            table,
		GeometryColumns:  make(map[string]spatial.ColumnFacts),
		GeographyColumns: make(map[string]spatial.ColumnFacts),
		SpatialIndexes:   make(map[string]spatial.IndexFacts),
	}

	if err := in.loadColumnFacts(ctx, geometryColumnsQuery, table, facts.GeometryColumns); err != nil {
		return nil, fmt.Errorf("failed to query geometry_columns: %w", err)
	}
	if err := in.loadColumnFacts(ctx, geographyColumnsQuery, table, facts.GeographyColumns); err != nil {
		return nil, fmt.Errorf("failed to query geography_columns: %w", err)
	}
	if err := in.loadSpatialIndexes(ctx, table, facts.SpatialIndexes); err != nil {
		return nil, fmt.Errorf("failed to query spatial indexes: %w", err)
	}

	LogCatalogSnapshot(table, len(facts.GeometryColumns), len(facts.GeographyColumns),
		len(facts.SpatialIndexes), time.Since(startTime))

	return facts, nil
}

const geometryColumnsQuery = `
	SELECT f_geometry_column, type, coord_dimension, srid
	FROM geometry_columns
	WHERE f_table_name = $1
`

const geographyColumnsQuery = `
	SELECT f_geography_column, type, coord_dimension, srid
	FROM geography_columns
	WHERE f_table_name = $1
`

// loadColumnFacts scans one of the two *_columns registries into a facts
// map. The geography_columns view predates some legacy installations;
// its absence means no geography columns, not a fault.
func (in *Introspector) loadColumnFacts(ctx context.Context, query, table string, dest map[string]spatial.ColumnFacts) error {
	rows, err := in.client.Pool().Query(ctx, query, table)
	if err != nil {
		if isUndefinedTable(err) {
			return nil
		}
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var column, typ string
		var dimension, srid int
		if err := rows.Scan(&column, &typ, &dimension, &srid); err != nil {
			return err
		}

		// Catalog type strings carry suffixes inconsistently across
		// versions; canonicalize and let coord_dimension win when set
		name, parsedDim := spatial.ParseGeometryType(typ)
		if dimension == 0 {
			dimension = parsedDim
		}

		dest[column] = spatial.ColumnFacts{
			GeometryType: name,
			Dimension:    dimension,
			SRID:         srid,
		}
	}
	return rows.Err()
}

// loadSpatialIndexes lists the table's indexes that use a spatial access
// method. Index method is the spatial marker: the generic index model
// has no such concept, so this is where the flag is recovered.
func (in *Introspector) loadSpatialIndexes(ctx context.Context, table string, dest map[string]spatial.IndexFacts) error {
	query := `
		SELECT ci.relname,
		       i.indisunique,
		       i.indisprimary,
		       array_agg(a.attname ORDER BY k.ord) AS columns
		FROM pg_index i
		JOIN pg_class ci ON ci.oid = i.indexrelid
		JOIN pg_class ct ON ct.oid = i.indrelid
		JOIN pg_am am ON am.oid = ci.relam
		JOIN LATERAL unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_attribute a ON a.attrelid = ct.oid AND a.attnum = k.attnum
		WHERE ct.relname = $1
		  AND am.amname IN ('gist', 'spgist')
		GROUP BY ci.relname, i.indisunique, i.indisprimary
	`

	rows, err := in.client.Pool().Query(ctx, query, table)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var unique, primary bool
		var columns []string
		if err := rows.Scan(&name, &unique, &primary, &columns); err != nil {
			return err
		}
		dest[name] = spatial.IndexFacts{
			Columns: columns,
			Unique:  unique,
			Primary: primary,
		}
	}
	return rows.Err()
}

// isUndefinedTable reports whether an error is Postgres "relation does
// not exist" (SQLSTATE 42P01).
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
