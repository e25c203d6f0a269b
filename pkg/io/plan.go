package io

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/blocking"
	"github.com/heralds-project/heralds/pkg/network"
)

// PlanDocument is the serialized form of a [blocking.Plan].
type PlanDocument struct {
	Nodes   []PlanNode   `json:"nodes" bson:"nodes"`
	Edges   []PlanEdge   `json:"edges" bson:"edges"`
	Markers []PlanMarker `json:"markers" bson:"markers"`
}

// PlanNode is a junction or marker. Label is empty for unmarked junctions.
type PlanNode struct {
	ID    network.NodeID `json:"id" bson:"id"`
	Point orb.Point      `json:"point" bson:"point"`
	Label string         `json:"label,omitempty" bson:"label,omitempty"`
}

// PlanEdge is a road edge in (A, B) storage orientation; crossing edges
// are (inner, outer).
type PlanEdge struct {
	A     network.NodeID `json:"a" bson:"a"`
	B     network.NodeID `json:"b" bson:"b"`
	Label string         `json:"label" bson:"label"`
	Path  orb.LineString `json:"path" bson:"path"`
}

// PlanMarker is a marker moved onto the perimeter boundary.
type PlanMarker struct {
	ID       network.NodeID `json:"id" bson:"id"`
	Point    orb.Point      `json:"point" bson:"point"`
	Label    string         `json:"label" bson:"label"`
	Junction network.NodeID `json:"junction" bson:"junction"`
	EdgeA    network.NodeID `json:"edge_a" bson:"edge_a"`
	EdgeB    network.NodeID `json:"edge_b" bson:"edge_b"`
}

// NewPlanDocument flattens p, sorting nodes by id and edges by key.
func NewPlanDocument(p *blocking.Plan) PlanDocument {
	doc := PlanDocument{
		Nodes:   make([]PlanNode, 0, len(p.Nodes)),
		Edges:   make([]PlanEdge, 0, len(p.EdgeLabels)),
		Markers: make([]PlanMarker, 0, len(p.Markers)),
	}
	for id, pt := range p.Nodes {
		n := PlanNode{ID: id, Point: pt}
		if l, ok := p.NodeLabels[id]; ok {
			n.Label = l.String()
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	slices.SortFunc(doc.Nodes, func(a, b PlanNode) int { return cmp.Compare(a.ID, b.ID) })

	for k, l := range p.EdgeLabels {
		doc.Edges = append(doc.Edges, PlanEdge{A: k.A, B: k.B, Label: l.String(), Path: p.Paths[k]})
	}
	slices.SortFunc(doc.Edges, func(a, b PlanEdge) int {
		return network.EdgeKey{A: a.A, B: a.B}.Compare(network.EdgeKey{A: b.A, B: b.B})
	})

	for _, m := range p.Markers {
		doc.Markers = append(doc.Markers, PlanMarker{
			ID:       m.ID,
			Point:    m.Point,
			Label:    m.Label.String(),
			Junction: m.Junction,
			EdgeA:    m.Edge.A,
			EdgeB:    m.Edge.B,
		})
	}
	return doc
}

// Plan rebuilds the plan the document was made from.
func (d PlanDocument) Plan() (*blocking.Plan, error) {
	p := &blocking.Plan{
		Nodes:      make(map[network.NodeID]orb.Point, len(d.Nodes)),
		NodeLabels: make(map[network.NodeID]network.NodeLabel),
		EdgeLabels: make(map[network.EdgeKey]network.EdgeLabel, len(d.Edges)),
		Paths:      make(map[network.EdgeKey]orb.LineString, len(d.Edges)),
	}
	for _, n := range d.Nodes {
		p.Nodes[n.ID] = n.Point
		if n.Label == "" {
			continue
		}
		var l network.NodeLabel
		if err := l.UnmarshalText([]byte(n.Label)); err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		p.NodeLabels[n.ID] = l
	}
	for _, e := range d.Edges {
		var l network.EdgeLabel
		if err := l.UnmarshalText([]byte(e.Label)); err != nil {
			return nil, fmt.Errorf("edge (%d, %d): %w", e.A, e.B, err)
		}
		k := network.EdgeKey{A: e.A, B: e.B}
		p.EdgeLabels[k] = l
		p.Paths[k] = e.Path
	}
	for _, m := range d.Markers {
		var l network.NodeLabel
		if err := l.UnmarshalText([]byte(m.Label)); err != nil {
			return nil, fmt.Errorf("marker %d: %w", m.ID, err)
		}
		p.Markers = append(p.Markers, blocking.Marker{
			ID:       m.ID,
			Point:    m.Point,
			Label:    l,
			Junction: m.Junction,
			Edge:     network.EdgeKey{A: m.EdgeA, B: m.EdgeB},
		})
	}
	return p, nil
}

// WritePlanJSON encodes p as an indented plan document.
func WritePlanJSON(p *blocking.Plan, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewPlanDocument(p)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadPlanJSON decodes a plan document from r.
func ReadPlanJSON(r io.Reader) (*blocking.Plan, error) {
	var doc PlanDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.Plan()
}
