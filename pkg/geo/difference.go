package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/peterstace/simplefeatures/geom"
)

// Subtract removes every cut from poly and returns the polygons left over.
// Cuts whose bound misses poly are skipped. The result is empty when the cuts
// cover poly entirely.
func Subtract(poly orb.Polygon, cuts ...orb.Polygon) (orb.MultiPolygon, error) {
	if len(poly) == 0 {
		return nil, nil
	}
	acc, err := toGeom(poly)
	if err != nil {
		return nil, err
	}
	b := poly.Bound()
	for i, c := range cuts {
		if len(c) == 0 || !c.Bound().Intersects(b) {
			continue
		}
		cut, err := toGeom(c)
		if err != nil {
			return nil, fmt.Errorf("cut %d: %w", i, err)
		}
		if acc, err = geom.Difference(acc, cut); err != nil {
			return nil, fmt.Errorf("subtract cut %d: %w", i, err)
		}
	}

	var out orb.MultiPolygon
	for _, part := range acc.Dump() {
		p, ok := part.AsPolygon()
		if !ok || p.IsEmpty() {
			continue
		}
		out = append(out, fromPolygon(p))
	}
	return out, nil
}

// Within reports whether every vertex of inner lies in outer. This is exact
// when outer is convex, as circles are.
func Within(inner, outer orb.Polygon) bool {
	if len(inner) == 0 || len(outer) == 0 {
		return false
	}
	for _, p := range inner[0] {
		if !Contains(outer, p) {
			return false
		}
	}
	return true
}

func toGeom(p orb.Polygon) (geom.Geometry, error) {
	g, err := geom.UnmarshalWKT(wkt.MarshalString(p))
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("invalid polygon: %w", err)
	}
	return g, nil
}

func fromPolygon(p geom.Polygon) orb.Polygon {
	out := orb.Polygon{fromRing(p.ExteriorRing())}
	for i := 0; i < p.NumInteriorRings(); i++ {
		out = append(out, fromRing(p.InteriorRingN(i)))
	}
	return out
}

func fromRing(ls geom.LineString) orb.Ring {
	seq := ls.Coordinates()
	ring := make(orb.Ring, seq.Length())
	for i := range ring {
		xy := seq.GetXY(i)
		ring[i] = orb.Point{xy.X, xy.Y}
	}
	return ring
}
