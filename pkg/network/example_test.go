package network_test

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/network"
)

func ExampleBuild() {
	g, _, err := network.Build([]orb.LineString{
		{{0, 0}, {1, 0}},
		{{1, 0}, {1, 1}},
		{{1, 0}, {2, 0}},
	})
	if err != nil {
		panic(err)
	}

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Neighbors of 1:", g.Neighbors(1))
	// Output:
	// Nodes: 4
	// Edges: 3
	// Neighbors of 1: [0 2 3]
}

func ExampleGraph_Component() {
	g, _, err := network.Build([]orb.LineString{
		{{0, 0}, {1, 0}},
		{{1, 0}, {2, 0}},
		{{2, 0}, {3, 0}},
	})
	if err != nil {
		panic(err)
	}
	_ = g.SetLabel(1, 2, network.SafeCrossing)

	inner := g.Component(0, func(e *network.Edge) bool { return !e.Label.WasCrossing() })
	fmt.Println("Inner nodes:", inner.Nodes())
	fmt.Println("Leaves:", inner.Leaves())
	// Output:
	// Inner nodes: [0 1]
	// Leaves: [0 1]
}
