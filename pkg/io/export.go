package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/network"
)

type graphDoc struct {
	Next  network.NodeID `json:"next"`
	Nodes []nodeDoc      `json:"nodes"`
	Edges []edgeDoc      `json:"edges"`
}

type nodeDoc struct {
	ID    network.NodeID `json:"id"`
	Point orb.Point      `json:"point"`
}

type edgeDoc struct {
	A     network.NodeID    `json:"a"`
	B     network.NodeID    `json:"b"`
	Label network.EdgeLabel `json:"label,omitempty"`
	Path  orb.LineString    `json:"path"`
}

// WriteJSON encodes g as network JSON and writes it to w.
func WriteJSON(g *network.Graph, w io.Writer) error {
	nodes := g.Nodes()
	edges := g.Edges()
	out := graphDoc{
		Next:  g.NextID(),
		Nodes: make([]nodeDoc, len(nodes)),
		Edges: make([]edgeDoc, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeDoc{ID: n.ID, Point: n.Point}
	}
	for i, e := range edges {
		out.Edges[i] = edgeDoc{A: e.Key.A, B: e.Key.B, Label: e.Label, Path: e.Path}
	}

	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a network JSON file at path.
func ExportJSON(g *network.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
