package network

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/paulmach/orb"

	herrors "github.com/heralds-project/heralds/pkg/errors"
)

var (
	// ErrUnknownNode is returned by [Graph.AddEdge] when an endpoint does
	// not exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateNode is returned by [Graph.InsertNode] when the id is
	// already taken or was retired earlier in the run.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrSelfLoop is returned by [Graph.AddEdge] when both endpoints are the
	// same node. Road pieces whose ends meet are not representable.
	ErrSelfLoop = errors.New("edge endpoints must differ")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when the two nodes are
	// already joined, in either orientation.
	ErrDuplicateEdge = errors.New("nodes already joined by an edge")

	// ErrShortPath is returned by [Graph.AddEdge] when the path geometry has
	// fewer than two points.
	ErrShortPath = errors.New("edge path needs at least two points")
)

// NodeID identifies a junction within one graph.
type NodeID int

// EdgeKey is an ordered pair of node ids. The edge it names is undirected;
// the order only records how the edge is currently stored.
type EdgeKey struct {
	A, B NodeID
}

// Reverse returns the key with its endpoints swapped.
func (k EdgeKey) Reverse() EdgeKey { return EdgeKey{k.B, k.A} }

// Canonical returns the key with the smaller id first.
func (k EdgeKey) Canonical() EdgeKey {
	if k.B < k.A {
		return k.Reverse()
	}
	return k
}

// Other returns the endpoint opposite id.
func (k EdgeKey) Other(id NodeID) NodeID {
	if k.A == id {
		return k.B
	}
	return k.A
}

// Has reports whether id is one of the endpoints.
func (k EdgeKey) Has(id NodeID) bool { return k.A == id || k.B == id }

// String formats the key as "(a, b)".
func (k EdgeKey) String() string { return fmt.Sprintf("(%d, %d)", k.A, k.B) }

// Compare orders keys by A then B.
func (k EdgeKey) Compare(o EdgeKey) int {
	if k.A != o.A {
		return int(k.A - o.A)
	}
	return int(k.B - o.B)
}

// Node is a junction and its coordinate.
type Node struct {
	ID    NodeID
	Point orb.Point
}

// Edge is a road piece between two junctions. Path runs from the point of
// Key.A to the point of Key.B.
type Edge struct {
	Key   EdgeKey
	Path  orb.LineString
	Label EdgeLabel
}

// Graph is an undirected road graph with at most one edge per node pair.
//
// The zero value is not usable; use [New] or [Build].
type Graph struct {
	nodes map[NodeID]orb.Point
	edges map[EdgeKey]*Edge
	adj   map[NodeID]map[NodeID]struct{}
	next  NodeID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[NodeID]orb.Point),
		edges: make(map[EdgeKey]*Edge),
		adj:   make(map[NodeID]map[NodeID]struct{}),
	}
}

// AddNode allocates a fresh id for a junction at p and returns it.
func (g *Graph) AddNode(p orb.Point) NodeID {
	id := g.next
	g.next++
	g.nodes[id] = p
	g.adj[id] = make(map[NodeID]struct{})
	return id
}

// InsertNode adds a junction with a caller-chosen id, as when restoring a
// serialized graph. Ids below the allocator watermark are rejected even when
// free, because they may have been retired.
func (g *Graph) InsertNode(id NodeID, p orb.Point) error {
	if id < 0 || id < g.next {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	g.nodes[id] = p
	g.adj[id] = make(map[NodeID]struct{})
	g.next = id + 1
	return nil
}

// NextID returns the id the next [Graph.AddNode] call will hand out.
func (g *Graph) NextID() NodeID { return g.next }

// Reserve raises the allocator watermark to next, retiring every id below
// it that is not in use. Lowering the watermark is a no-op.
func (g *Graph) Reserve(next NodeID) {
	if next > g.next {
		g.next = next
	}
}

// AddEdge joins a and b with an edge carrying path, stored in (a, b)
// orientation with label [Unlabeled].
func (g *Graph) AddEdge(a, b NodeID, path orb.LineString) error {
	if _, ok := g.nodes[a]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, a)
	}
	if _, ok := g.nodes[b]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, b)
	}
	if a == b {
		return fmt.Errorf("%w: %d", ErrSelfLoop, a)
	}
	if len(path) < 2 {
		return ErrShortPath
	}
	if _, ok := g.adj[a][b]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, EdgeKey{a, b})
	}
	key := EdgeKey{a, b}
	g.edges[key] = &Edge{Key: key, Path: slices.Clone(path)}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
	return nil
}

// Node returns the coordinate of id.
func (g *Graph) Node(id NodeID) (orb.Point, bool) {
	p, ok := g.nodes[id]
	return p, ok
}

// HasNode reports whether id is a live node.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes sorted by id.
func (g *Graph) Nodes() []Node {
	ids := slices.Sorted(maps.Keys(g.nodes))
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{ID: id, Point: g.nodes[id]}
	}
	return out
}

// Edges returns copies of all edges, in their stored orientation, sorted by
// their canonical key. Modifying the result does not affect the graph.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, Edge{Key: e.Key, Path: slices.Clone(e.Path), Label: e.Label})
	}
	slices.SortFunc(out, func(x, y Edge) int { return x.Key.Canonical().Compare(y.Key.Canonical()) })
	return out
}

// Labels returns the label of every edge, keyed in stored orientation.
func (g *Graph) Labels() map[EdgeKey]EdgeLabel {
	out := make(map[EdgeKey]EdgeLabel, len(g.edges))
	for k, e := range g.edges {
		out[k] = e.Label
	}
	return out
}

// Edge returns the edge joining a and b, trying (a, b) first and then
// (b, a). The returned value is a copy.
func (g *Graph) Edge(a, b NodeID) (Edge, bool) {
	e := g.find(a, b)
	if e == nil {
		return Edge{}, false
	}
	return Edge{Key: e.Key, Path: slices.Clone(e.Path), Label: e.Label}, true
}

// LookupEdge is [Graph.Edge] for callers that hold a pair they know must be
// joined. A miss in both orientations means the graph was built wrong, and
// is reported as a MISSING_EDGE error.
func (g *Graph) LookupEdge(a, b NodeID) (Edge, error) {
	e, ok := g.Edge(a, b)
	if !ok {
		return Edge{}, herrors.New(herrors.ErrCodeMissingEdge, "no edge between %d and %d in either orientation", a, b)
	}
	return e, nil
}

// SetLabel updates the label of the edge joining a and b.
func (g *Graph) SetLabel(a, b NodeID, label EdgeLabel) error {
	e := g.find(a, b)
	if e == nil {
		return herrors.New(herrors.ErrCodeMissingEdge, "no edge between %d and %d in either orientation", a, b)
	}
	e.Label = label
	return nil
}

// Orient stores the edge joining first and second as (first, second),
// reversing its path if needed so the path still starts at first.
func (g *Graph) Orient(first, second NodeID) error {
	e := g.find(first, second)
	if e == nil {
		return herrors.New(herrors.ErrCodeMissingEdge, "no edge between %d and %d in either orientation", first, second)
	}
	if e.Key.A == first {
		return nil
	}
	delete(g.edges, e.Key)
	e.Key = e.Key.Reverse()
	e.Path = slices.Clone(e.Path)
	e.Path.Reverse()
	g.edges[e.Key] = e
	return nil
}

// Neighbors returns the ids adjacent to id in ascending order.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	return slices.Sorted(maps.Keys(g.adj[id]))
}

// IncidentEdges returns copies of the edges touching id, ordered by the
// neighbour id.
func (g *Graph) IncidentEdges(id NodeID) []Edge {
	var out []Edge
	for _, n := range g.Neighbors(id) {
		if e, ok := g.Edge(id, n); ok {
			out = append(out, e)
		}
	}
	return out
}

// Degree returns the number of edges touching id.
func (g *Graph) Degree(id NodeID) int { return len(g.adj[id]) }

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Clone returns a deep copy of g, including the allocator watermark.
func (g *Graph) Clone() *Graph {
	c := New()
	c.next = g.next
	maps.Copy(c.nodes, g.nodes)
	for id, ns := range g.adj {
		c.adj[id] = maps.Clone(ns)
	}
	for k, e := range g.edges {
		c.edges[k] = &Edge{Key: e.Key, Path: slices.Clone(e.Path), Label: e.Label}
	}
	return c
}

func (g *Graph) find(a, b NodeID) *Edge {
	if e, ok := g.edges[EdgeKey{a, b}]; ok {
		return e
	}
	if e, ok := g.edges[EdgeKey{b, a}]; ok {
		return e
	}
	return nil
}
