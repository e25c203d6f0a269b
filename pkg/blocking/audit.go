package blocking

import (
	"context"
	"slices"

	"github.com/heralds-project/heralds/pkg/network"
)

// Reason explains an [Audit] decision.
type Reason string

const (
	// ReasonKept marks a crossing that needs a blockade.
	ReasonKept Reason = "kept"
	// ReasonNoDangerPath marks a crossing from which no unguarded route
	// inside the perimeter reaches the danger zone.
	ReasonNoDangerPath Reason = "no-danger-path"
	// ReasonUnreachableOutside marks a crossing whose outer side connects
	// to neither a village nor the map edge.
	ReasonUnreachableOutside Reason = "unreachable-outside"
)

// Decision records the audit of one crossing edge.
type Decision struct {
	Edge    network.EdgeKey   // (inner, outer)
	Label   network.EdgeLabel // Label before the audit
	Inward  bool              // Some route from the inner node reaches danger first
	Outward bool              // The outer side reaches a village or the map edge
	Leaves  int               // Leaves of the inner component
	Reason  Reason
}

// Filtered reports whether the edge was downgraded.
func (d Decision) Filtered() bool { return d.Reason != ReasonKept }

// AuditReport lists the decisions of an [Audit] run in processing order.
type AuditReport struct {
	Decisions []Decision
	Kept      int
	Filtered  int
}

// Audit downgrades to [network.Filtered] every crossing edge that is not
// needed to stop an outsider from reaching the danger zone. Crossings are
// processed in ascending (inner, outer) order, and each one is judged
// against the crossings still active at that moment. An edge is kept only
// if both hold:
//
//   - inward: with every crossing edge removed, the component of the inner
//     node has a leaf whose shortest path from the inner node traverses an
//     edge touching the danger zone before passing any node marked by an
//     active crossing. Marked nodes are the inner ends of safe crossings and
//     the outer ends of danger crossings.
//   - outward: with every crossing edge and the inner component removed, but
//     the edge itself restored, the component of the outer node touches a
//     village or the map edge.
//
// Labels only ever move from a crossing label to Filtered. Running Audit
// twice gives the same labels.
func Audit(ctx context.Context, g *network.Graph, z Zones) (AuditReport, error) {
	var report AuditReport
	if err := z.Validate(); err != nil {
		return report, err
	}

	var candidates []network.Edge
	for _, e := range g.Edges() {
		if e.Label.IsCrossing() {
			candidates = append(candidates, e)
		}
	}
	slices.SortFunc(candidates, func(a, b network.Edge) int { return a.Key.Compare(b.Key) })

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		d, err := auditEdge(g, z, c)
		if err != nil {
			return report, err
		}
		if d.Filtered() {
			if err := g.SetLabel(c.Key.A, c.Key.B, network.Filtered); err != nil {
				return report, err
			}
			report.Filtered++
		} else {
			report.Kept++
		}
		report.Decisions = append(report.Decisions, d)
	}
	return report, nil
}

func auditEdge(g *network.Graph, z Zones, c network.Edge) (Decision, error) {
	inner, outer := c.Key.A, c.Key.B
	d := Decision{Edge: c.Key, Label: c.Label}

	interior := g.Component(inner, func(e *network.Edge) bool { return !e.Label.WasCrossing() })
	leaves := interior.Leaves()
	d.Leaves = len(leaves)

	inward, err := reachesDanger(g, z, interior, inner, leaves, markedNodes(g))
	if err != nil {
		return d, err
	}
	d.Inward = inward

	candidate := c.Key.Canonical()
	exterior := g.Component(outer, func(e *network.Edge) bool {
		if e.Key.Canonical() == candidate {
			return true
		}
		return !e.Label.WasCrossing() && !interior.HasEdge(e.Key.A, e.Key.B)
	})
	for _, k := range exterior.Edges() {
		e, err := g.LookupEdge(k.A, k.B)
		if err != nil {
			return d, err
		}
		if z.TouchesOutside(e.Path) {
			d.Outward = true
			break
		}
	}

	switch {
	case !d.Inward:
		d.Reason = ReasonNoDangerPath
	case !d.Outward:
		d.Reason = ReasonUnreachableOutside
	default:
		d.Reason = ReasonKept
	}
	return d, nil
}

// reachesDanger walks the shortest path from inner to each leaf and reports
// whether one of them touches the danger zone before the first edge whose
// far node is marked. An empty leaf set never reaches danger.
func reachesDanger(g *network.Graph, z Zones, interior *network.Subgraph, inner network.NodeID,
	leaves []network.NodeID, marked map[network.NodeID]bool,
) (bool, error) {
	tree := interior.ShortestPaths(inner)
	for _, leaf := range leaves {
		path, ok := tree.PathTo(leaf)
		if !ok {
			continue
		}
		for i := 0; i+1 < len(path); i++ {
			e, err := g.LookupEdge(path[i], path[i+1])
			if err != nil {
				return false, err
			}
			if z.TouchesDanger(e.Path) {
				return true, nil
			}
			if marked[path[i+1]] {
				break
			}
		}
	}
	return false, nil
}

// markedNodes returns the nodes guarded by active crossings.
func markedNodes(g *network.Graph) map[network.NodeID]bool {
	marked := make(map[network.NodeID]bool)
	for k, l := range g.Labels() {
		switch l {
		case network.SafeCrossing:
			marked[k.A] = true
		case network.DangerCrossing:
			marked[k.B] = true
		}
	}
	return marked
}
