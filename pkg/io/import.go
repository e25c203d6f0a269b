package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/heralds-project/heralds/pkg/network"
)

// ReadJSON decodes network JSON from r.
//
// Nodes are inserted in ascending id order and edges in their stored
// orientation, then the allocator watermark is restored. ReadJSON returns
// an error if the JSON is malformed, a node id repeats, or an edge names
// an unknown node, loops, repeats, or has fewer than two path points.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*network.Graph, error) {
	var data graphDoc
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	slices.SortFunc(data.Nodes, func(a, b nodeDoc) int { return int(a.ID - b.ID) })

	g := network.New()
	for _, n := range data.Nodes {
		if err := g.InsertNode(n.ID, n.Point); err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(e.A, e.B, e.Path); err != nil {
			return nil, fmt.Errorf("edge (%d, %d): %w", e.A, e.B, err)
		}
		if e.Label != network.Unlabeled {
			if err := g.SetLabel(e.A, e.B, e.Label); err != nil {
				return nil, fmt.Errorf("edge (%d, %d): %w", e.A, e.B, err)
			}
		}
	}
	g.Reserve(data.Next)
	return g, nil
}

// ImportJSON reads the network JSON file at path.
func ImportJSON(path string) (*network.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
