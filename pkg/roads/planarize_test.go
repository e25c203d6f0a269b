package roads

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heralds-project/heralds/pkg/geo"
	"github.com/heralds-project/heralds/pkg/network"
)

func TestPlanarizeCrossingCreatesJunction(t *testing.T) {
	roads := []orb.LineString{
		{{0, 0}, {2, 2}},
		{{0, 2}, {2, 0}},
	}
	pieces, report, err := Planarize(context.Background(), roads, PlanarizeOptions{})
	require.NoError(t, err)
	require.Len(t, pieces, 4)
	assert.Equal(t, 1, report.Intersecting)

	g, _, err := network.Build(pieces)
	require.NoError(t, err)
	assert.Equal(t, 5, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())

	var hub network.NodeID = -1
	for _, n := range g.Nodes() {
		if n.Point == (orb.Point{1, 1}) {
			hub = n.ID
		}
	}
	require.NotEqual(t, network.NodeID(-1), hub, "crossing point must become a node")
	assert.Equal(t, 4, g.Degree(hub))
}

func TestPlanarizePassesThroughIsolatedRoad(t *testing.T) {
	roads := []orb.LineString{
		{{0, 0}, {1, 0}, {1, 1}},
		{{10, 10}, {11, 10}},
	}
	pieces, report, err := Planarize(context.Background(), roads, PlanarizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, roads, pieces)
	assert.Equal(t, 2, report.Unsplit)
	assert.Zero(t, report.Candidates)
}

func TestPlanarizeOverlapSplitsAtMidpoint(t *testing.T) {
	roads := []orb.LineString{
		{{0, 0}, {4, 0}},
		{{1, 0}, {3, 0}},
	}
	pieces, _, err := Planarize(context.Background(), roads, PlanarizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []orb.LineString{
		{{0, 0}, {2, 0}},
		{{2, 0}, {4, 0}},
		{{1, 0}, {2, 0}},
		{{2, 0}, {3, 0}},
	}, pieces)
}

func TestPlanarizeDeduplicatesEndpointPairs(t *testing.T) {
	roads := []orb.LineString{
		{{0, 0}, {1, 0}},
		{{1, 0}, {0.5, 0.5}, {0, 0}},
		{{3, 3}, {3.5, 3.5}, {3, 3}},
	}
	pieces, report, err := Planarize(context.Background(), roads, PlanarizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []orb.LineString{{{0, 0}, {1, 0}}}, pieces)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Degenerate)
}

func TestPlanarizeGridIsPlanar(t *testing.T) {
	var roads []orb.LineString
	for _, v := range []float64{0, 1, 2} {
		roads = append(roads,
			orb.LineString{{-0.5, v}, {2.5, v}},
			orb.LineString{{v, -0.5}, {v, 2.5}},
		)
	}
	pieces, _, err := Planarize(context.Background(), roads, PlanarizeOptions{})
	require.NoError(t, err)

	g, stats, err := network.Build(pieces)
	require.NoError(t, err)
	assert.Zero(t, stats.Duplicates)
	assert.Equal(t, 21, g.NodeCount())
	assert.Equal(t, 24, g.EdgeCount())
	assertPlanar(t, g)
}

func TestPlanarizeNearbyFactorLimitsSearch(t *testing.T) {
	// Short road crossing the far end of a long one: the short road's own
	// radius misses the long road's centre, but the long road finds it.
	roads := []orb.LineString{
		{{0, 0}, {10, 0}},
		{{9, -0.1}, {9, 0.1}},
	}
	pieces, report, err := Planarize(context.Background(), roads, PlanarizeOptions{NearbyFactor: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Candidates)
	assert.Len(t, pieces, 4)

	// Far apart relative to both lengths: never tested.
	roads = []orb.LineString{
		{{0, 0}, {1, 0}},
		{{100, 0}, {101, 0}},
	}
	_, report, err = Planarize(context.Background(), roads, PlanarizeOptions{})
	require.NoError(t, err)
	assert.Zero(t, report.Candidates)
}

func TestPlanarizeRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Planarize(ctx, []orb.LineString{{{0, 0}, {1, 1}}, {{0, 1}, {1, 0}}}, PlanarizeOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

// assertPlanar checks that edges sharing no node have disjoint paths.
func assertPlanar(t *testing.T, g *network.Graph) {
	t.Helper()
	edges := g.Edges()
	for i := range edges {
		for j := i + 1; j < len(edges); j++ {
			a, b := edges[i], edges[j]
			if a.Key.Has(b.Key.A) || a.Key.Has(b.Key.B) {
				continue
			}
			if x := geo.IntersectLines(a.Path, b.Path); !x.IsEmpty() {
				t.Errorf("edges %v and %v intersect: %s", a.Key, b.Key, x.WKT())
			}
		}
	}
}
