package blocking

import (
	"context"
	"slices"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heralds-project/heralds/pkg/geo"
	"github.com/heralds-project/heralds/pkg/network"
)

// lattice builds a 5x5 street grid spanning [-2, 2] on both axes with an
// off-centre perimeter, so crossings of both kinds occur on every side.
func lattice(t *testing.T) (*network.Graph, Zones) {
	t.Helper()
	var pieces []orb.LineString
	for i := -2; i <= 2; i++ {
		for j := -2; j < 2; j++ {
			x, y := float64(i), float64(j)
			pieces = append(pieces,
				orb.LineString{{x, y}, {x, y + 1}},
				orb.LineString{{y, x}, {y + 1, x}},
			)
		}
	}
	g := build(t, pieces...)
	z := Zones{
		Perimeter: disc(0.3, 0.2, 1.7),
		Danger:    disc(0.3, 0.2, 0.6),
		MapEdge:   geo.MapEdge(orb.Bound{Min: orb.Point{-2, -2}, Max: orb.Point{2, 2}}, 0.3),
	}
	return g, z
}

func TestLabelContainmentAndOrdering(t *testing.T) {
	g, z := lattice(t)
	report, err := Label(g, z)
	require.NoError(t, err)
	require.Positive(t, report.Crossings())

	for _, e := range g.Edges() {
		a, _ := g.Node(e.Key.A)
		b, _ := g.Node(e.Key.B)
		switch e.Label {
		case network.Contained:
			assert.True(t, z.Inside(a) && z.Inside(b), "contained edge %v", e.Key)
		case network.SafeCrossing, network.DangerCrossing:
			assert.True(t, z.Inside(a), "crossing %v must start inside", e.Key)
			assert.False(t, z.Inside(b), "crossing %v must end outside", e.Key)
			assert.Equal(t, a, e.Path[0])
		case network.Unlabeled:
			assert.False(t, z.Inside(a) || z.Inside(b), "unlabeled edge %v", e.Key)
		}
	}
}

func TestLabelIsIdempotent(t *testing.T) {
	g, z := lattice(t)
	first, err := Label(g, z)
	require.NoError(t, err)

	again := g.Clone()
	second, err := Label(again, z)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, g.Edges(), again.Edges())
}

func TestAuditIsMonotonicAndStable(t *testing.T) {
	g, z := lattice(t)
	_, err := Label(g, z)
	require.NoError(t, err)
	before := g.Labels()

	report, err := Audit(context.Background(), g, z)
	require.NoError(t, err)
	require.Equal(t, len(report.Decisions), report.Kept+report.Filtered)

	after := g.Labels()
	for k, was := range before {
		now := after[k]
		if was.IsCrossing() {
			assert.Contains(t, []network.EdgeLabel{was, network.Filtered}, now, "edge %v", k)
		} else {
			assert.Equal(t, was, now, "non-crossing edge %v changed", k)
		}
	}

	keys := make([]network.EdgeKey, len(report.Decisions))
	for i, d := range report.Decisions {
		keys[i] = d.Edge
	}
	assert.True(t, slices.IsSortedFunc(keys, network.EdgeKey.Compare), "decisions out of canonical order: %v", keys)

	second, err := Audit(context.Background(), g, z)
	require.NoError(t, err)
	assert.Zero(t, second.Filtered)
	assert.Equal(t, after, g.Labels())
}
