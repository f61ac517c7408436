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

	"pgedge-postgis-schema/internal/schema"
)

// ParseGeometryType normalizes a raw geometry subtype string into its
// canonical catalog form plus the coordinate dimension.
//
// Suffix rules: a trailing "ZM" means 4 dimensions and is stripped; a
// trailing "M" alone means 3 dimensions and is kept (POINTM is its own
// on-disk type name); a trailing "Z" means 3 dimensions and is stripped;
// no suffix means 2 dimensions. An empty string is the generic GEOMETRY.
func ParseGeometryType(raw string) (string, int) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case name == "":
		return "GEOMETRY", 2
	case strings.HasSuffix(name, "ZM"):
		return strings.TrimSuffix(name, "ZM"), 4
	case strings.HasSuffix(name, "M"):
		return name, 3
	case strings.HasSuffix(name, "Z"):
		return strings.TrimSuffix(name, "Z"), 3
	default:
		return name, 2
	}
}

// GeometryTypeString is the inverse of ParseGeometryType: it rebuilds the
// suffixed subtype string from a canonical subtype and dimension.
func GeometryTypeString(name string, dimension int) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	switch dimension {
	case 4:
		return name + "ZM"
	case 3:
		if strings.HasSuffix(name, "M") {
			return name
		}
		return name + "Z"
	default:
		return name
	}
}

// CanonicalSRID maps an SRID to the value a dialect's generated SQL must
// carry. The legacy registration procedures use -1 as their "undefined"
// sentinel; typmod declarations take the value as given.
func CanonicalSRID(mode DialectMode, srid int) int {
	if mode == LegacyManaged && srid <= 0 {
		return -1
	}
	return srid
}

// kindOf maps a declared column type name to its spatial kind.
func kindOf(typeName string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case "geometry":
		return KindGeometry, true
	case "geography":
		return KindGeography, true
	case "raster":
		return KindRaster, true
	}
	return "", false
}

// NormalizeColumn builds the canonical descriptor for a spatially-typed
// column. The second return is false for non-spatial columns.
func NormalizeColumn(col schema.Column) (ColumnDescriptor, bool) {
	kind, ok := kindOf(col.Type)
	if !ok {
		return ColumnDescriptor{}, false
	}

	name, dim := ParseGeometryType(col.GeometryType)
	return ColumnDescriptor{
		Name:         col.Name,
		Kind:         kind,
		GeometryType: name,
		Dimension:    dim,
		SRID:         col.SRID,
		NotNull:      col.NotNull,
		Default:      filterDefault(col.Default),
		Comment:      col.Comment,
	}, true
}

// DenormalizeColumn rebuilds the schema-layer column from a descriptor.
// NormalizeColumn(DenormalizeColumn(d)) round-trips for any valid
// descriptor.
func DenormalizeColumn(desc ColumnDescriptor) schema.Column {
	return schema.Column{
		Name:         desc.Name,
		Type:         string(desc.Kind),
		GeometryType: GeometryTypeString(desc.GeometryType, desc.Dimension),
		SRID:         desc.SRID,
		NotNull:      desc.NotNull,
		Default:      desc.Default,
		Comment:      desc.Comment,
	}
}

// filterDefault drops the database-generated NULL cast sentinel
// (e.g. "NULL::geometry") that catalog introspection reports for
// defaultless spatial columns.
func filterDefault(def string) string {
	if strings.HasPrefix(strings.ToUpper(def), "NULL::") {
		return ""
	}
	return def
}
