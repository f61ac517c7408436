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

import "pgedge-postgis-schema/internal/schema"

// DiffTables computes the mutations that turn the old table definition
// into the new one. A new column carrying renamed_from that matches an
// old column becomes a rename; everything else falls out of name-based
// matching.
func DiffTables(old, new TableDef) schema.Diff {
	d := schema.Diff{Table: new.Name}

	oldCols := make(map[string]ColumnDef)
	for _, c := range old.Columns {
		oldCols[c.Name] = c
	}

	renamedAway := make(map[string]bool)
	seen := make(map[string]bool)

	for _, c := range new.Columns {
		if c.RenamedFrom != "" {
			if oc, ok := oldCols[c.RenamedFrom]; ok {
				d.RenamedColumns = append(d.RenamedColumns, schema.ColumnRename{
					Old: oc.Schema(),
					New: c.Schema(),
				})
				renamedAway[c.RenamedFrom] = true
				continue
			}
		}

		oc, ok := oldCols[c.Name]
		if !ok {
			d.AddedColumns = append(d.AddedColumns, c.Schema())
			continue
		}
		seen[c.Name] = true
		if !columnsEqual(oc, c) {
			d.ChangedColumns = append(d.ChangedColumns, schema.ColumnDiff{
				Old: oc.Schema(),
				New: c.Schema(),
			})
		}
	}

	for _, c := range old.Columns {
		if !seen[c.Name] && !renamedAway[c.Name] {
			d.RemovedColumns = append(d.RemovedColumns, c.Schema())
		}
	}

	oldIdx := make(map[string]IndexDef)
	for _, idx := range old.Indexes {
		oldIdx[idx.Name] = idx
	}
	seenIdx := make(map[string]bool)

	for _, idx := range new.Indexes {
		oi, ok := oldIdx[idx.Name]
		if !ok {
			d.AddedIndexes = append(d.AddedIndexes, indexSchema(idx))
			continue
		}
		seenIdx[idx.Name] = true
		if !indexesEqual(oi, idx) {
			d.ChangedIndexes = append(d.ChangedIndexes, schema.IndexDiff{
				Old: indexSchema(oi),
				New: indexSchema(idx),
			})
		}
	}

	for _, idx := range old.Indexes {
		if !seenIdx[idx.Name] {
			d.RemovedIndexes = append(d.RemovedIndexes, indexSchema(idx))
		}
	}

	return d
}

func columnsEqual(a, b ColumnDef) bool {
	return a.Type == b.Type &&
		a.GeometryType == b.GeometryType &&
		a.SRID == b.SRID &&
		a.NotNull == b.NotNull &&
		a.Default == b.Default &&
		a.Comment == b.Comment
}

func indexesEqual(a, b IndexDef) bool {
	if a.Unique != b.Unique || a.Spatial != b.Spatial || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}

func indexSchema(idx IndexDef) schema.Index {
	return schema.Index{
		Name:    idx.Name,
		Columns: idx.Columns,
		Unique:  idx.Unique,
		Spatial: idx.Spatial,
	}
}
