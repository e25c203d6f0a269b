package blocking

import (
	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/geo"
	"github.com/heralds-project/heralds/pkg/network"
)

// LabelReport counts the labels assigned by [Label].
type LabelReport struct {
	Contained int
	Safe      int
	Danger    int
	Outside   int
}

// Crossings returns the number of crossing edges.
func (r LabelReport) Crossings() int { return r.Safe + r.Danger }

// Label assigns an initial label to every edge of g:
//
//   - both endpoints inside the perimeter: [network.Contained]
//   - both outside: [network.Unlabeled]
//   - exactly one inside: a crossing. The edge is reoriented to
//     (inner, outer) and the longest part of its path inside the perimeter
//     decides the label: [network.DangerCrossing] if that part meets the
//     danger zone, [network.SafeCrossing] otherwise.
//
// Previous labels are overwritten, so labeling is a pure function of the
// graph geometry and the zones.
func Label(g *network.Graph, z Zones) (LabelReport, error) {
	var report LabelReport
	if err := z.Validate(); err != nil {
		return report, err
	}

	inside := make(map[network.NodeID]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		inside[n.ID] = z.Inside(n.Point)
	}

	for _, e := range g.Edges() {
		a, b := e.Key.A, e.Key.B
		var label network.EdgeLabel
		switch {
		case inside[a] && inside[b]:
			label = network.Contained
			report.Contained++
		case !inside[a] && !inside[b]:
			label = network.Unlabeled
			report.Outside++
		default:
			inner, outer := a, b
			if !inside[a] {
				inner, outer = b, a
			}
			if err := g.Orient(inner, outer); err != nil {
				return report, err
			}
			oriented, err := g.LookupEdge(inner, outer)
			if err != nil {
				return report, err
			}
			label = network.SafeCrossing
			if z.TouchesDanger(crossingLine(oriented, z)) {
				label = network.DangerCrossing
				report.Danger++
			} else {
				report.Safe++
			}
		}
		if err := g.SetLabel(a, b, label); err != nil {
			return report, err
		}
	}
	return report, nil
}

// crossingLine returns the longest part of e's path inside the perimeter.
// A path whose clipped parts vanish, as when it only grazes the boundary,
// stands for itself.
func crossingLine(e network.Edge, z Zones) orb.LineString {
	if part, ok := geo.LongestPart(geo.InsideParts(e.Path, z.Perimeter)); ok {
		return part
	}
	return e.Path
}
