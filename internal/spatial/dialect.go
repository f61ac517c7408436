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

import "context"

// DialectMode selects between the two incompatible PostGIS generations.
// It is resolved once per connection and is immutable for the lifetime of
// the bound connection object.
type DialectMode int

const (
	DialectUnknown DialectMode = iota

	// LegacyManaged is the PostGIS 1.x style: geometry_columns is a real
	// table maintained through AddGeometryColumn and friends, and every
	// geometry column must be registered and unregistered explicitly.
	LegacyManaged

	// TypmodBased is the modern style: the declared column type itself
	// encodes subtype, dimension and SRID, and geometry_columns is a view
	// derived from the typmod catalogs.
	TypmodBased
)

func (m DialectMode) String() string {
	switch m {
	case LegacyManaged:
		return "legacy-managed"
	case TypmodBased:
		return "typmod-based"
	default:
		return "unknown"
	}
}

// Catalog answers the router's existing-state questions. Implementations
// issue read-only catalog queries; results are returned as immutable
// snapshots so generation logic never interleaves with live queries.
type Catalog interface {
	// DetectDialect determines which PostGIS generation the connected
	// database runs.
	DetectDialect(ctx context.Context) (DialectMode, error)

	// SnapshotTable captures the spatial catalog metadata for one table.
	// A table with no spatial registrations yields an empty snapshot,
	// never an error.
	SnapshotTable(ctx context.Context, table string) (*TableFacts, error)
}
