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
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"pgedge-postgis-schema/internal/schema"
)

// Action tells the schema layer what to do with its default DDL for one
// event.
type Action int

const (
	// ActionContinue leaves the default DDL untouched.
	ActionContinue Action = iota
	// ActionAugment appends extra SQL after the default DDL.
	ActionAugment
	// ActionReplace suppresses the default DDL and uses the result's SQL
	// instead.
	ActionReplace
	// ActionReject aborts the whole schema operation.
	ActionReject
)

// Result is the router's answer to one schema event. It is a plain value:
// the router never mutates the event it was handed.
type Result struct {
	Action Action
	SQL    []string
	Err    error
}

// Continue leaves the default behavior in place.
func Continue() Result { return Result{Action: ActionContinue} }

// Augment appends SQL after the default DDL.
func Augment(sql ...string) Result { return Result{Action: ActionAugment, SQL: sql} }

// Replace suppresses the default DDL in favor of the given statements.
func Replace(sql ...string) Result { return Result{Action: ActionReplace, SQL: sql} }

// Reject aborts the schema operation.
func Reject(err error) Result { return Result{Action: ActionReject, Err: err} }

// Connection is the bound database handle. Identity (pointer equality)
// is what the router uses to detect illegal rebinding.
type Connection interface {
	Pool() *pgxpool.Pool
}

// TypeRegistrar performs the one-time spatial type registration on
// connect.
type TypeRegistrar interface {
	Register(ctx context.Context, pool *pgxpool.Pool) error
}

// Router receives schema-change events and decides per event whether to
// pass through, augment the default DDL, replace it with spatial SQL, or
// reject the change outright.
//
// A router serves exactly one live connection. The dialect and the bound
// connection identity are written once during Connect and read-only
// afterwards; every event method is a pure function over its inputs.
type Router struct {
	registry TypeRegistrar
	conn     Connection
	catalog  Catalog
	dialect  DialectMode
}

// NewRouter creates an unbound router. The registry may be nil when no
// type registration is wanted (e.g. DDL generation without a live
// database).
func NewRouter(registry TypeRegistrar) *Router {
	return &Router{registry: registry}
}

// Connect binds the router to a connection: it resolves the PostGIS
// dialect and registers the spatial value types, both exactly once.
// Reconnecting with the identical connection object is an idempotent
// no-op. Binding to a different connection while already bound is a fatal
// configuration error; call Release first after a connection swap.
func (r *Router) Connect(ctx context.Context, conn Connection, cat Catalog) error {
	if r.conn != nil {
		if r.conn == conn {
			return nil
		}
		return &ConfigurationError{
			Reason: "router is already bound to a different live connection, call Release before rebinding",
		}
	}

	mode, err := cat.DetectDialect(ctx)
	if err != nil {
		return fmt.Errorf("failed to detect PostGIS dialect: %w", err)
	}

	if r.registry != nil {
		if err := r.registry.Register(ctx, conn.Pool()); err != nil {
			return fmt.Errorf("failed to register spatial types: %w", err)
		}
	}

	r.conn = conn
	r.catalog = cat
	r.dialect = mode
	return nil
}

// BindDialect fixes the dialect without a live connection, for offline
// DDL generation. Snapshot is unavailable in this mode.
func (r *Router) BindDialect(mode DialectMode) {
	r.dialect = mode
}

// Release unbinds the router so it can be attached to a replacement
// connection after a failover or role switch.
func (r *Router) Release() {
	r.conn = nil
	r.catalog = nil
	r.dialect = DialectUnknown
}

// Dialect returns the resolved dialect, or DialectUnknown before Connect.
func (r *Router) Dialect() DialectMode {
	return r.dialect
}

// Snapshot captures the catalog's spatial metadata for one table through
// the bound catalog.
func (r *Router) Snapshot(ctx context.Context, table string) (*TableFacts, error) {
	if r.catalog == nil {
		return nil, &ConfigurationError{Reason: "router is not bound to a connection"}
	}
	return r.catalog.SnapshotTable(ctx, table)
}

func (r *Router) ready() error {
	if r.dialect == DialectUnknown {
		return &ConfigurationError{Reason: "router is not bound to a connection"}
	}
	return nil
}

// CreateTable replaces the default CREATE TABLE with the spatial-aware
// generator in both dialects.
func (r *Router) CreateTable(t schema.Table) Result {
	if err := r.ready(); err != nil {
		return Reject(err)
	}
	return Replace(CreateTableSQL(r.dialect, t)...)
}

// DropTable replaces the default DROP TABLE with the managed-drop call
// when the legacy dialect still holds geometry registrations for the
// table. Typmod tables have nothing to unregister.
func (r *Router) DropTable(t schema.Table, facts *TableFacts) Result {
	if err := r.ready(); err != nil {
		return Reject(err)
	}
	if r.dialect == LegacyManaged && facts.HasGeometryColumns() {
		return Replace(DropGeometryTableSQL(t.Name))
	}
	return Continue()
}

// AddColumn replaces the default ADD COLUMN with a registration call for
// legacy geometry columns. Geography and raster columns are native types
// and need no registration; typmod columns are always native.
func (r *Router) AddColumn(table string, col schema.Column) Result {
	if err := r.ready(); err != nil {
		return Reject(err)
	}
	desc, spatial := NormalizeColumn(col)
	if !spatial || desc.Kind != KindGeometry || r.dialect != LegacyManaged {
		return Continue()
	}
	return Replace(SpatialColumnSQL(table, desc)...)
}

// RemoveColumn replaces the default DROP COLUMN with the legacy
// unregister sequence for geometry columns. Everything else passes
// through.
func (r *Router) RemoveColumn(table string, col schema.Column) Result {
	if err := r.ready(); err != nil {
		return Reject(err)
	}
	desc, spatial := NormalizeColumn(col)
	if !spatial || desc.Kind != KindGeometry || r.dialect != LegacyManaged {
		return Continue()
	}
	return Replace(DropGeometryColumnSQL(table, desc.Name, desc.NotNull)...)
}

// ChangeColumn forbids changing a spatial column's base type or geometry
// subtype: both are physically encoded by the registration or typmod
// declaration and an in-place ALTER would corrupt data silently. An SRID
// change emits the SRID-update call, valid in both dialects. All other
// attribute changes pass through to the generic machinery.
func (r *Router) ChangeColumn(table string, d schema.ColumnDiff) Result {
	if err := r.ready(); err != nil {
		return Reject(err)
	}
	if !d.Old.IsSpatial() && !d.New.IsSpatial() {
		return Continue()
	}

	if !strings.EqualFold(d.Old.Type, d.New.Type) {
		return Reject(&UnsupportedMutationError{
			Table:    table,
			Column:   d.Old.Name,
			Mutation: "type",
			Old:      d.Old.Type,
			New:      d.New.Type,
		})
	}

	oldType, oldDim := ParseGeometryType(d.Old.GeometryType)
	newType, newDim := ParseGeometryType(d.New.GeometryType)
	if oldType != newType || oldDim != newDim {
		return Reject(&UnsupportedMutationError{
			Table:    table,
			Column:   d.Old.Name,
			Mutation: "geometry type",
			Old:      GeometryTypeString(oldType, oldDim),
			New:      GeometryTypeString(newType, newDim),
		})
	}

	if d.Old.SRID != d.New.SRID {
		return Augment(UpdateSRIDSQL(r.dialect, table, d.New.Name, d.New.SRID))
	}
	return Continue()
}

// RenameColumn forbids renaming spatial columns under the legacy dialect:
// the geometry_columns registration records the column name and RENAME
// COLUMN would leave it stale. Typmod columns rename freely.
func (r *Router) RenameColumn(table, oldName string, col schema.Column) Result {
	if err := r.ready(); err != nil {
		return Reject(err)
	}
	if !col.IsSpatial() || r.dialect != LegacyManaged {
		return Continue()
	}
	return Reject(&UnsupportedMutationError{
		Table:    table,
		Column:   oldName,
		Mutation: "rename",
		Old:      oldName,
		New:      col.Name,
	})
}

// AlterTableIndexes partitions spatial indexes out of a diff's added and
// changed lists and emits dedicated SQL for them; a changed spatial index
// is dropped and recreated. The returned diff, with spatial entries
// removed, goes on to the generic index machinery.
func (r *Router) AlterTableIndexes(d schema.Diff, facts *TableFacts) (schema.Diff, Result) {
	if err := r.ready(); err != nil {
		return d, Reject(err)
	}

	rest := d
	rest.AddedIndexes = nil
	rest.ChangedIndexes = nil
	var sql []string

	for _, idx := range d.AddedIndexes {
		if !idx.Spatial {
			rest.AddedIndexes = append(rest.AddedIndexes, idx)
			continue
		}
		sql = append(sql, SpatialIndexSQL(indexDescriptor(d.Table, idx)))
	}

	for _, diff := range d.ChangedIndexes {
		_, known := facts.SpatialIndex(diff.Old.Name)
		if !diff.New.Spatial && !known {
			rest.ChangedIndexes = append(rest.ChangedIndexes, diff)
			continue
		}
		sql = append(sql,
			DropSpatialIndexSQL(diff.Old.Name),
			SpatialIndexSQL(indexDescriptor(d.Table, diff.New)))
	}

	if len(sql) == 0 {
		return rest, Continue()
	}
	return rest, Augment(sql...)
}

// DefineColumn rebuilds a typed column from catalog facts during
// introspection. Only geometry and geography raw type names are handled;
// raster and unrecognized types pass through untouched (second return
// false).
func (r *Router) DefineColumn(col schema.Column, facts *TableFacts) (schema.Column, bool) {
	var cf ColumnFacts
	var ok bool

	switch strings.ToLower(col.Type) {
	case "geometry":
		cf, ok = facts.GeometryColumn(col.Name)
	case "geography":
		cf, ok = facts.GeographyColumn(col.Name)
	}
	if !ok {
		return col, false
	}

	col.GeometryType = GeometryTypeString(cf.GeometryType, cf.Dimension)
	col.SRID = cf.SRID
	col.Default = filterDefault(col.Default)
	return col, true
}

// DefineIndex rebuilds an index with the spatial marker flag when the
// table's spatial-index catalog listing contains it. Unknown indexes pass
// through untouched.
func (r *Router) DefineIndex(idx schema.Index, facts *TableFacts) (schema.Index, bool) {
	fi, ok := facts.SpatialIndex(idx.Name)
	if !ok {
		return idx, false
	}

	rebuilt := schema.Index{
		Name:    idx.Name,
		Columns: fi.Columns,
		Unique:  fi.Unique,
		Primary: fi.Primary,
		Spatial: true,
	}
	if len(rebuilt.Columns) == 0 {
		rebuilt.Columns = idx.Columns
	}
	return rebuilt, true
}

func indexDescriptor(table string, idx schema.Index) IndexDescriptor {
	return IndexDescriptor{
		Name:    idx.Name,
		Table:   table,
		Columns: idx.Columns,
		Unique:  idx.Unique,
		Primary: idx.Primary,
	}
}
