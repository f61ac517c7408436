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
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TypeRegistry resolves the geometry, geography and raster type OIDs from
// the connected database and registers them on connection type maps so
// WKT/EWKT text payloads scan and encode cleanly. Construct one at
// startup and hand it to the router and the database client; nothing here
// is a lazily-mutated global.
type TypeRegistry struct {
	mu        sync.Mutex
	typeNames []string
}

// NewTypeRegistry creates a registry covering the three PostGIS types.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{typeNames: []string{"geometry", "geography", "raster"}}
}

// Register resolves and registers the spatial types over one pooled
// connection. The router calls this once per bound connection.
func (tr *TypeRegistry) Register(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for type registration: %w", err)
	}
	defer conn.Release()

	return tr.RegisterConn(ctx, conn.Conn())
}

// RegisterConn registers the spatial types on a single connection's type
// map. Suitable as a pgxpool AfterConnect hook so every pooled connection
// gets the types. Safe to call repeatedly; re-registration overwrites in
// place.
func (tr *TypeRegistry) RegisterConn(ctx context.Context, conn *pgx.Conn) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	for _, name := range tr.typeNames {
		t, err := conn.LoadType(ctx, name)
		if err != nil {
			// raster ships in a separate extension and may be absent
			if name == "raster" {
				continue
			}
			return fmt.Errorf("failed to load type %s: %w", name, err)
		}
		conn.TypeMap().RegisterType(t)
	}
	return nil
}
