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

// Kind identifies which PostGIS-provided type backs a spatial column.
type Kind string

const (
	KindGeometry  Kind = "geometry"
	KindGeography Kind = "geography"
	KindRaster    Kind = "raster"
)

// ColumnDescriptor is the normalized description of a spatial column:
// the canonical geometry subtype (suffix rules already applied), the
// coordinate dimension and the SRID as declared. SRID 0 means
// "unspecified"; canonicalization to a dialect sentinel happens at SQL
// generation time, never here.
type ColumnDescriptor struct {
	Name         string
	Kind         Kind
	GeometryType string // canonical subtype, e.g. "POINT", "POINTM"
	Dimension    int    // 2, 3 or 4
	SRID         int
	NotNull      bool
	Default      string
	Comment      string
}

// IndexDescriptor describes an index destined for spatial DDL emission.
type IndexDescriptor struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
	Primary bool
}

// ColumnFacts is what the catalog knows about one registered spatial
// column.
type ColumnFacts struct {
	GeometryType string // as stored in the catalog, e.g. "POINTM"
	Dimension    int
	SRID         int
}

// IndexFacts is what the catalog knows about one spatial index.
type IndexFacts struct {
	Columns []string
	Unique  bool
	Primary bool
}

// TableFacts is an immutable snapshot of the catalog's spatial metadata
// for one table, taken once per schema event. Generators and the router
// read it instead of issuing live queries mid-generation.
type TableFacts struct {
	Table            string
	GeometryColumns  map[string]ColumnFacts
	GeographyColumns map[string]ColumnFacts
	SpatialIndexes   map[string]IndexFacts
}

// GeometryColumn returns the catalog facts for a registered geometry
// column. Absence is the normal "not a spatial column" signal.
func (f *TableFacts) GeometryColumn(name string) (ColumnFacts, bool) {
	if f == nil {
		return ColumnFacts{}, false
	}
	c, ok := f.GeometryColumns[name]
	return c, ok
}

// GeographyColumn returns the catalog facts for a geography column.
func (f *TableFacts) GeographyColumn(name string) (ColumnFacts, bool) {
	if f == nil {
		return ColumnFacts{}, false
	}
	c, ok := f.GeographyColumns[name]
	return c, ok
}

// SpatialIndex returns the catalog facts for a spatial index.
func (f *TableFacts) SpatialIndex(name string) (IndexFacts, bool) {
	if f == nil {
		return IndexFacts{}, false
	}
	i, ok := f.SpatialIndexes[name]
	return i, ok
}

// HasGeometryColumns reports whether the table has at least one
// registered geometry column.
func (f *TableFacts) HasGeometryColumns() bool {
	return f != nil && len(f.GeometryColumns) > 0
}
