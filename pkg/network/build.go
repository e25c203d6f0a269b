package network

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// BuildStats counts the pieces [Build] could not turn into edges.
type BuildStats struct {
	Pieces     int // Pieces offered
	Loops      int // Pieces whose two ends are the same junction
	Duplicates int // Pieces joining an already joined pair; the first wins
	Short      int // Pieces with fewer than two points
}

// Build assembles atomic road pieces into a graph. Every distinct endpoint
// coordinate becomes one node, numbered densely in order of first
// appearance (start before end), and every piece becomes one edge carrying
// the piece as its path. Endpoints are matched by exact coordinate equality.
//
// Loops and duplicate pairs are counted and skipped. Any other error from
// [Graph.AddEdge] stops the build.
func Build(pieces []orb.LineString) (*Graph, BuildStats, error) {
	g := New()
	stats := BuildStats{Pieces: len(pieces)}
	ids := make(map[orb.Point]NodeID)

	node := func(p orb.Point) NodeID {
		if id, ok := ids[p]; ok {
			return id
		}
		id := g.AddNode(p)
		ids[p] = id
		return id
	}

	for i, piece := range pieces {
		if len(piece) < 2 {
			stats.Short++
			continue
		}
		a := node(piece[0])
		b := node(piece[len(piece)-1])
		err := g.AddEdge(a, b, piece)
		switch {
		case err == nil:
		case errors.Is(err, ErrSelfLoop):
			stats.Loops++
		case errors.Is(err, ErrDuplicateEdge):
			stats.Duplicates++
		default:
			return nil, stats, fmt.Errorf("piece %d: %w", i, err)
		}
	}
	return g, stats, nil
}
