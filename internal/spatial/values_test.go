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

import "testing"

func TestGeometry_String(t *testing.T) {
	g := NewGeometry("POINT(1 2)")
	if g.String() != "POINT(1 2)" {
		t.Errorf("plain WKT = %q", g.String())
	}

	g = NewGeometryWithSRID("POINT(1 2)", 4326)
	if g.String() != "SRID=4326;POINT(1 2)" {
		t.Errorf("EWKT = %q", g.String())
	}
}

func TestGeography_String(t *testing.T) {
	g := NewGeography("POINT(1 2)")
	if g.String() != "POINT(1 2)" {
		t.Errorf("plain WKT = %q", g.String())
	}

	g.SRID = 4326
	if g.String() != "SRID=4326;POINT(1 2)" {
		t.Errorf("EWKT = %q", g.String())
	}
}
