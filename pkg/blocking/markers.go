package blocking

import (
	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/geo"
	"github.com/heralds-project/heralds/pkg/network"
)

// Marker is a blockade moved off a junction onto the perimeter boundary.
type Marker struct {
	ID       network.NodeID
	Point    orb.Point
	Label    network.NodeLabel
	Junction network.NodeID  // Junction the marker replaces
	Edge     network.EdgeKey // Crossing edge the marker sits on, (inner, outer)
}

// NodeLabels derives junction labels from the active crossings of g. The
// inner end of a safe crossing is [network.SafeMarked] and the outer end of
// a danger crossing is [network.DangerMarked]; danger wins when both apply.
func NodeLabels(g *network.Graph) map[network.NodeID]network.NodeLabel {
	labels := make(map[network.NodeID]network.NodeLabel)
	all := g.Labels()
	for k, l := range all {
		if l == network.SafeCrossing {
			labels[k.A] = network.SafeMarked
		}
	}
	for k, l := range all {
		if l == network.DangerCrossing {
			labels[k.B] = network.DangerMarked
		}
	}
	return labels
}

// MarkerReport summarizes a [PlaceMarkers] run.
type MarkerReport struct {
	Anchored  int // Danger junctions kept in place
	Relocated int // Danger junctions replaced by markers
	Markers   int // Markers created
}

// PlaceMarkers derives junction labels and relocates danger markers.
//
// A danger-marked junction with at least one filtered incident edge keeps
// its marker. Otherwise each active crossing edge ending at the junction
// gets a marker, with a fresh node id, at the first point where its path
// meets the perimeter boundary. The junction and its edges stay in g;
// [NewPlan] drops the junction from the plan's nodes. Relocated junctions
// are handled in ascending id order and their edges in ascending inner id
// order.
func PlaceMarkers(g *network.Graph, z Zones) ([]Marker, MarkerReport, error) {
	var report MarkerReport
	if err := z.Validate(); err != nil {
		return nil, report, err
	}

	labels := NodeLabels(g)
	var markers []Marker
	for _, n := range g.Nodes() {
		if labels[n.ID] != network.DangerMarked {
			continue
		}

		var crossings []network.Edge
		anchored := false
		for _, e := range g.IncidentEdges(n.ID) {
			if e.Label == network.Filtered {
				anchored = true
				break
			}
			if e.Label.IsCrossing() && e.Key.B == n.ID {
				crossings = append(crossings, e)
			}
		}
		if anchored {
			report.Anchored++
			continue
		}

		var placed []Marker
		for _, e := range crossings {
			pts := geo.BoundaryCrossings(e.Path, z.Perimeter)
			if len(pts) == 0 {
				continue
			}
			placed = append(placed, Marker{
				Point:    pts[0],
				Label:    network.DangerMarked,
				Junction: n.ID,
				Edge:     e.Key,
			})
		}
		if len(placed) == 0 {
			report.Anchored++
			continue
		}

		for i := range placed {
			placed[i].ID = g.AddNode(placed[i].Point)
		}
		markers = append(markers, placed...)
		report.Relocated++
		report.Markers += len(placed)
	}
	return markers, report, nil
}
