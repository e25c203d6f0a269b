package roads

import (
	"fmt"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Linkage selects how the distance between two clusters is derived from the
// distances between their members.
type Linkage string

const (
	// LinkageWard minimizes the growth of within-cluster variance.
	LinkageWard Linkage = "ward"
	// LinkageSingle uses the closest pair of members.
	LinkageSingle Linkage = "single"
	// LinkageComplete uses the farthest pair of members.
	LinkageComplete Linkage = "complete"
	// LinkageAverage uses the mean distance over all member pairs.
	LinkageAverage Linkage = "average"
)

// DefaultLinkage is the linkage used when none is configured.
const DefaultLinkage = LinkageWard

// ParseLinkage validates a linkage name. The empty string selects
// [DefaultLinkage].
func ParseLinkage(s string) (Linkage, error) {
	switch l := Linkage(s); l {
	case "":
		return DefaultLinkage, nil
	case LinkageWard, LinkageSingle, LinkageComplete, LinkageAverage:
		return l, nil
	}
	return "", fmt.Errorf("unknown linkage %q (must be one of: ward, single, complete, average)", s)
}

// update returns the distance from cluster k to the union of clusters i and
// j, following the Lance-Williams recurrence for the linkage.
func (l Linkage) update(dki, dkj, dij float64, ni, nj, nk int) float64 {
	switch l {
	case LinkageSingle:
		return math.Min(dki, dkj)
	case LinkageComplete:
		return math.Max(dki, dkj)
	case LinkageAverage:
		return (float64(ni)*dki + float64(nj)*dkj) / float64(ni+nj)
	}
	fi, fj, fk := float64(ni), float64(nj), float64(nk)
	v := ((fk+fi)*dki*dki + (fk+fj)*dkj*dkj - fk*dij*dij) / (fk + fi + fj)
	return math.Sqrt(math.Max(v, 0))
}

// agglomerate clusters pts bottom-up, merging the closest pair of clusters
// while their linkage distance is below threshold. Ties go to the pair with
// the lowest indices, and a merged cluster takes the lower index. The result
// lists each cluster's member indices in ascending order.
func agglomerate(pts []orb.Point, threshold float64, linkage Linkage) [][]int {
	n := len(pts)
	members := make([][]int, n)
	for i := range members {
		members[i] = []int{i}
	}
	if n < 2 {
		return members
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range i {
			d := planar.Distance(pts[i], pts[j])
			dist[i][j], dist[j][i] = d, d
		}
	}

	active := make([]bool, n)
	for i := range active {
		active[i] = true
	}
	for {
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && dist[i][j] < best {
					bi, bj, best = i, j, dist[i][j]
				}
			}
		}
		if bi < 0 || best >= threshold {
			break
		}

		ni, nj := len(members[bi]), len(members[bj])
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			d := linkage.update(dist[k][bi], dist[k][bj], best, ni, nj, len(members[k]))
			dist[k][bi], dist[bi][k] = d, d
		}
		members[bi] = append(members[bi], members[bj]...)
		slices.Sort(members[bi])
		members[bj] = nil
		active[bj] = false
	}

	var out [][]int
	for i, m := range members {
		if active[i] {
			out = append(out, m)
		}
	}
	return out
}

// neighbourhoods partitions pts into the connected components of the graph
// joining points closer than threshold. Points are bucketed on a grid of
// threshold-sized cells, so only adjacent cells are compared. Components are
// returned in order of their smallest index, members ascending.
func neighbourhoods(pts []orb.Point, threshold float64) [][]int {
	parent := make([]int, len(pts))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		switch {
		case ra < rb:
			parent[rb] = ra
		case rb < ra:
			parent[ra] = rb
		}
	}

	if threshold > 0 {
		type cell struct{ x, y int64 }
		cellOf := func(p orb.Point) cell {
			return cell{int64(math.Floor(p[0] / threshold)), int64(math.Floor(p[1] / threshold))}
		}
		grid := make(map[cell][]int)
		for i, p := range pts {
			c := cellOf(p)
			for dx := int64(-1); dx <= 1; dx++ {
				for dy := int64(-1); dy <= 1; dy++ {
					for _, j := range grid[cell{c.x + dx, c.y + dy}] {
						if planar.Distance(p, pts[j]) < threshold {
							union(i, j)
						}
					}
				}
			}
			grid[c] = append(grid[c], i)
		}
	}

	byRoot := make(map[int][]int)
	var roots []int
	for i := range pts {
		r := find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], i)
	}
	out := make([][]int, len(roots))
	for i, r := range roots {
		out[i] = byRoot[r]
	}
	return out
}
