package blocking

import (
	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/errors"
	"github.com/heralds-project/heralds/pkg/geo"
)

// Zones holds the per-scenario polygons the blocking decision is made
// against. They are read-only for the duration of a run.
type Zones struct {
	// Perimeter is the safety boundary around the patient.
	Perimeter orb.Polygon
	// Danger is the no-entrance zone near the patient. May be empty.
	Danger orb.Polygon
	// Villages are built-up areas outside the perimeter where intruders
	// may come from.
	Villages []orb.Polygon
	// MapEdge is the buffered boundary of the mapped area. May be empty.
	MapEdge orb.Polygon
}

// Validate checks that the perimeter is present and every ring of every
// polygon is closed with at least four points.
func (z Zones) Validate() error {
	if len(z.Perimeter) == 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "perimeter polygon is empty")
	}
	if err := validPolygon("perimeter", z.Perimeter); err != nil {
		return err
	}
	if err := validPolygon("danger", z.Danger); err != nil {
		return err
	}
	if err := validPolygon("map edge", z.MapEdge); err != nil {
		return err
	}
	for _, v := range z.Villages {
		if err := validPolygon("village", v); err != nil {
			return err
		}
	}
	return nil
}

func validPolygon(name string, p orb.Polygon) error {
	for i, ring := range p {
		if len(ring) < 4 {
			return errors.New(errors.ErrCodeInvalidGeometry, "%s ring %d has %d points, need at least 4", name, i, len(ring))
		}
		if !ring.Closed() {
			return errors.New(errors.ErrCodeInvalidGeometry, "%s ring %d is not closed", name, i)
		}
	}
	return nil
}

// Inside reports whether p lies inside the perimeter.
func (z Zones) Inside(p orb.Point) bool { return geo.Contains(z.Perimeter, p) }

// TouchesDanger reports whether ls meets the danger zone.
func (z Zones) TouchesDanger(ls orb.LineString) bool {
	return geo.LineIntersectsPolygon(ls, z.Danger)
}

// TouchesOutside reports whether ls meets a village or the map edge.
func (z Zones) TouchesOutside(ls orb.LineString) bool {
	return geo.LineIntersectsPolygon(ls, z.MapEdge) || geo.LineIntersectsAny(ls, z.Villages...)
}
