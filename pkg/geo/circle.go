package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DefaultCircleResolution is the number of vertices used for circle polygons.
const DefaultCircleResolution = 60

// Circle returns a polygon approximating the geodesic circle of the given
// radius in meters around center, using n vertices. center is an orb point
// (longitude, latitude).
func Circle(center orb.Point, radius float64, n int) orb.Polygon {
	if n < 3 {
		n = DefaultCircleResolution
	}
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		bearing := 360 * float64(i) / float64(n)
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radius))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}
