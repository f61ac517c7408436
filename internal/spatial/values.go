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

// Geometry is a WKT geometry value passed through to the driver as text.
// No parsing or validation happens here; the database is the authority.
type Geometry struct {
	WKT  string
	SRID int
}

// NewGeometry wraps a WKT string.
func NewGeometry(wkt string) Geometry {
	return Geometry{WKT: wkt}
}

// NewGeometryWithSRID wraps a WKT string with an explicit SRID, rendered
// as EWKT.
func NewGeometryWithSRID(wkt string, srid int) Geometry {
	return Geometry{WKT: wkt, SRID: srid}
}

// String renders the value as EWKT when an SRID is set, plain WKT
// otherwise.
func (g Geometry) String() string {
	if g.SRID > 0 {
		return fmt.Sprintf("SRID=%d;%s", g.SRID, g.WKT)
	}
	return g.WKT
}

// Geography is a WKT geography value passed through to the driver as
// text.
type Geography struct {
	WKT  string
	SRID int
}

// NewGeography wraps a WKT string.
func NewGeography(wkt string) Geography {
	return Geography{WKT: wkt}
}

func (g Geography) String() string {
	if g.SRID > 0 {
		return fmt.Sprintf("SRID=%d;%s", g.SRID, g.WKT)
	}
	return g.WKT
}
