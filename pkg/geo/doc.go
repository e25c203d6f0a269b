// Package geo provides the planar geometry used to turn raw road polylines
// into a planar network and to relate that network to safety polygons.
//
// All geometries are [github.com/paulmach/orb] values. Points are stored as
// orb points, so X is the longitude and Y the latitude; predicates treat the
// coordinates as a plane, which is what the road network algorithms assume.
//
// # Intersections
//
// [IntersectLines] computes the intersection of two polylines and returns it
// as an [Intersection], a tagged variant over the kinds
//
//   - [KindEmpty]: no shared points
//   - [KindPoint] and [KindMultiPoint]: isolated crossing or touching points
//   - [KindLine] and [KindMultiLine]: collinear overlaps
//   - [KindMixed]: isolated points together with overlaps
//
// [Intersection.Representatives] reduces a result to the points a polyline
// is split at. The computation is symmetric: intersecting a with b and b with
// a yields bit-identical coordinates, so both roads are split at exactly the
// same junction.
//
// # Polygons
//
// [Contains], [LineIntersectsPolygon], [InsideParts] and [BoundaryCrossings]
// answer the questions the perimeter labeler and connectivity auditor ask:
// is a junction inside the perimeter, does a road reach the danger zone, which
// part of a road lies inside, and where does a road cross the boundary.
//
// [Circle] builds a geodesic circle polygon around a coordinate, [MapEdge]
// builds the buffered bounding-box boundary, and [LargestPolygon] collapses
// multipart areas to their largest member.
package geo
