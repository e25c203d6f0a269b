package blocking

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/network"
)

// Plan is the outcome of a blocking run: the final junctions and markers
// with their labels, and every remaining edge with its label and path.
type Plan struct {
	Nodes      map[network.NodeID]orb.Point
	NodeLabels map[network.NodeID]network.NodeLabel
	EdgeLabels map[network.EdgeKey]network.EdgeLabel
	Paths      map[network.EdgeKey]orb.LineString
	Markers    []Marker
}

// Report gathers the per-stage reports of a run.
type Report struct {
	Label   LabelReport
	Audit   AuditReport
	Markers MarkerReport
}

// NewPlan snapshots g into a plan. Node labels are derived from the active
// crossings and overlaid with the marker labels. Junctions replaced by a
// marker are left out of the nodes, but their edges are kept under the
// original pair.
func NewPlan(g *network.Graph, markers []Marker) *Plan {
	p := &Plan{
		Nodes:      make(map[network.NodeID]orb.Point, g.NodeCount()),
		NodeLabels: NodeLabels(g),
		EdgeLabels: make(map[network.EdgeKey]network.EdgeLabel, g.EdgeCount()),
		Paths:      make(map[network.EdgeKey]orb.LineString, g.EdgeCount()),
		Markers:    markers,
	}
	for _, n := range g.Nodes() {
		p.Nodes[n.ID] = n.Point
	}
	for _, e := range g.Edges() {
		p.EdgeLabels[e.Key] = e.Label
		p.Paths[e.Key] = e.Path
	}
	for _, m := range markers {
		delete(p.Nodes, m.Junction)
		delete(p.NodeLabels, m.Junction)
	}
	for _, m := range markers {
		p.NodeLabels[m.ID] = m.Label
	}
	return p
}

// Counts returns the number of edges per label.
func (p *Plan) Counts() map[network.EdgeLabel]int {
	out := make(map[network.EdgeLabel]int)
	for _, l := range p.EdgeLabels {
		out[l]++
	}
	return out
}

// Run labels, audits and places markers on g, in that order, and returns
// the resulting plan. g is consumed by the run.
func Run(ctx context.Context, g *network.Graph, z Zones) (*Plan, Report, error) {
	var report Report
	var err error
	if report.Label, err = Label(g, z); err != nil {
		return nil, report, fmt.Errorf("label: %w", err)
	}
	if report.Audit, err = Audit(ctx, g, z); err != nil {
		return nil, report, fmt.Errorf("audit: %w", err)
	}
	markers, mr, err := PlaceMarkers(g, z)
	report.Markers = mr
	if err != nil {
		return nil, report, fmt.Errorf("markers: %w", err)
	}
	return NewPlan(g, markers), report, nil
}
