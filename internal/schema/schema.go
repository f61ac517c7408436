/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package schema

import "strings"

// Table describes a table as the schema layer sees it: the declared
// columns, the primary key and any secondary indexes.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
	Indexes    []Index
}

// Column describes a single column. For spatially-typed columns the
// declared type name is one of "geometry", "geography" or "raster" and
// GeometryType/SRID carry the raw spatial options as written by the user
// (e.g. "PolygonZM", 4326). Non-spatial columns leave those zero.
type Column struct {
	Name         string
	Type         string // declared type name, e.g. "integer", "geometry"
	GeometryType string // raw geometry subtype option, suffix not yet parsed
	SRID         int    // 0 means unspecified
	NotNull      bool
	Default      string
	Comment      string
}

// Index describes a secondary index. Spatial is the marker flag recovered
// from catalog introspection; the generic index model has no native notion
// of an index method, so the flag is how spatial indexes are told apart.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
	Primary bool
	Spatial bool
}

// ColumnDiff pairs the old and new definition of a column whose
// declaration changed.
type ColumnDiff struct {
	Old Column
	New Column
}

// ColumnRename records a column rename together with the column's full
// old and new definitions, since a rename may carry attribute changes
// (e.g. a new SRID) that still need their own handling.
type ColumnRename struct {
	Old Column
	New Column
}

// IndexDiff pairs the old and new definition of a changed index.
type IndexDiff struct {
	Old Index
	New Index
}

// Diff is the set of column and index mutations proposed against one table.
type Diff struct {
	Table          string
	AddedColumns   []Column
	RemovedColumns []Column
	ChangedColumns []ColumnDiff
	RenamedColumns []ColumnRename
	AddedIndexes   []Index
	RemovedIndexes []Index
	ChangedIndexes []IndexDiff
}

// IsEmpty reports whether the diff proposes no mutations at all.
func (d Diff) IsEmpty() bool {
	return len(d.AddedColumns) == 0 &&
		len(d.RemovedColumns) == 0 &&
		len(d.ChangedColumns) == 0 &&
		len(d.RenamedColumns) == 0 &&
		len(d.AddedIndexes) == 0 &&
		len(d.RemovedIndexes) == 0 &&
		len(d.ChangedIndexes) == 0
}

// IsSpatial reports whether the column's declared type is one of the
// PostGIS-provided types.
func (c Column) IsSpatial() bool {
	switch strings.ToLower(c.Type) {
	case "geometry", "geography", "raster":
		return true
	}
	return false
}

// Column returns the named column, if the table declares it.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// SpatialColumns returns the table's spatially-typed columns in
// declaration order.
func (t Table) SpatialColumns() []Column {
	var cols []Column
	for _, c := range t.Columns {
		if c.IsSpatial() {
			cols = append(cols, c)
		}
	}
	return cols
}

// IsPrimaryKey reports whether the named column is part of the primary key.
func (t Table) IsPrimaryKey(column string) bool {
	for _, c := range t.PrimaryKey {
		if c == column {
			return true
		}
	}
	return false
}
