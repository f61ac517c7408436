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
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"pgedge-postgis-schema/internal/schema"
)

// CreateTableSQL emits the full CREATE TABLE for a table that may carry
// spatial columns. Under the legacy dialect geometry columns are omitted
// from the column list and added afterwards through AddGeometryColumn
// registration calls; under the typmod dialect they are declared inline.
// Geography and raster columns are native types in both dialects.
func CreateTableSQL(mode DialectMode, t schema.Table) []string {
	var defs []string
	var post []string

	for _, col := range t.Columns {
		desc, spatial := NormalizeColumn(col)
		if spatial && desc.Kind == KindGeometry && mode == LegacyManaged {
			post = append(post, SpatialColumnSQL(t.Name, desc)...)
			continue
		}

		def := quoteIdent(col.Name) + " " + columnTypeSQL(mode, col, desc, spatial)
		if col.Default != "" {
			def += " DEFAULT " + col.Default
		}
		if col.NotNull {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	if len(t.PrimaryKey) > 0 {
		defs = append(defs, "PRIMARY KEY ("+quoteIdentList(t.PrimaryKey)+")")
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(t.Name), strings.Join(defs, ", "))}
	stmts = append(stmts, post...)

	for _, col := range t.Columns {
		if col.Comment != "" {
			stmts = append(stmts, fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s",
				quoteIdent(t.Name), quoteIdent(col.Name), quoteLiteral(col.Comment)))
		}
	}

	return stmts
}

// SpatialColumnSQL emits the legacy registration call for one geometry
// column, followed by a NOT NULL alteration when the column is declared
// non-nullable. AddGeometryColumn cannot encode nullability itself.
func SpatialColumnSQL(table string, desc ColumnDescriptor) []string {
	stmts := []string{fmt.Sprintf("SELECT AddGeometryColumn(%s, %s, %d, %s, %d)",
		quoteLiteral(table),
		quoteLiteral(desc.Name),
		CanonicalSRID(LegacyManaged, desc.SRID),
		quoteLiteral(desc.GeometryType),
		desc.Dimension)}

	if desc.NotNull {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER %s SET NOT NULL",
			quoteIdent(table), quoteIdent(desc.Name)))
	}
	return stmts
}

// SpatialIndexSQL emits the index-creation statement for a spatial index.
// Primary keys cannot be declared through CREATE INDEX, so the primary
// flag degrades to uniqueness, which the syntax does allow.
func SpatialIndexSQL(idx IndexDescriptor) string {
	unique := ""
	if idx.Unique || idx.Primary {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s USING gist (%s)",
		unique, quoteIdent(idx.Name), quoteIdent(idx.Table), quoteIdentList(idx.Columns))
}

// DropSpatialIndexSQL emits the drop half of a spatial index recreation.
func DropSpatialIndexSQL(name string) string {
	return "DROP INDEX " + quoteIdent(name)
}

// DropGeometryTableSQL emits the legacy managed-drop call, which removes
// both the table and its geometry_columns registrations.
func DropGeometryTableSQL(table string) string {
	return fmt.Sprintf("SELECT DropGeometryTable(%s)", quoteLiteral(table))
}

// DropGeometryColumnSQL emits the legacy unregister call for one geometry
// column, preceded by a constraint relaxation when the column is NOT NULL:
// DropGeometryColumn replaces values with NULL before removal.
func DropGeometryColumnSQL(table, column string, notNull bool) []string {
	var stmts []string
	if notNull {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER %s DROP NOT NULL",
			quoteIdent(table), quoteIdent(column)))
	}
	return append(stmts, fmt.Sprintf("SELECT DropGeometryColumn(%s, %s)",
		quoteLiteral(table), quoteLiteral(column)))
}

// UpdateSRIDSQL emits the SRID-update call. The procedure exists in both
// PostGIS generations, so no dialect branch beyond SRID canonicalization.
func UpdateSRIDSQL(mode DialectMode, table, column string, srid int) string {
	return fmt.Sprintf("SELECT UpdateGeometrySRID(%s, %s, %d)",
		quoteLiteral(table), quoteLiteral(column), CanonicalSRID(mode, srid))
}

// columnTypeSQL renders the declared type for one column definition.
func columnTypeSQL(mode DialectMode, col schema.Column, desc ColumnDescriptor, spatial bool) string {
	if !spatial {
		return col.Type
	}

	switch desc.Kind {
	case KindGeometry:
		// Only reachable under the typmod dialect; legacy geometry
		// columns go through SpatialColumnSQL instead.
		return fmt.Sprintf("geometry(%s,%d)",
			GeometryTypeString(desc.GeometryType, desc.Dimension),
			CanonicalSRID(mode, desc.SRID))
	case KindGeography:
		if desc.SRID > 0 {
			return fmt.Sprintf("geography(%s,%d)",
				GeometryTypeString(desc.GeometryType, desc.Dimension), desc.SRID)
		}
		return fmt.Sprintf("geography(%s)", GeometryTypeString(desc.GeometryType, desc.Dimension))
	default:
		return "raster"
	}
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteIdentList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
