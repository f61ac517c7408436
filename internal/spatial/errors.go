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

import "fmt"

// ConfigurationError reports a wiring mistake: the same router bound to
// two distinct live connections. It is fatal and surfaced immediately.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "spatial schema configuration error: " + e.Reason
}

// UnsupportedMutationError reports a schema change that cannot be
// expressed as an in-place ALTER without risking silent data corruption:
// changing a spatial column's base type or geometry subtype, or renaming
// a spatial column under the legacy dialect. The caller must drop and
// recreate the column instead.
type UnsupportedMutationError struct {
	Table    string
	Column   string
	Mutation string // "type", "geometry type" or "rename"
	Old      string
	New      string
}

func (e *UnsupportedMutationError) Error() string {
	return fmt.Sprintf("unsupported mutation on %s.%s: cannot change %s from %q to %q, drop and recreate the column instead",
		e.Table, e.Column, e.Mutation, e.Old, e.New)
}
