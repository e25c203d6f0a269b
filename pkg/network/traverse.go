package network

import (
	"maps"
	"slices"
)

// EdgeFilter decides whether a traversal may use an edge.
type EdgeFilter func(e *Edge) bool

// AllEdges accepts every edge.
func AllEdges(*Edge) bool { return true }

// Subgraph is a connected component of a [Graph] restricted to the edges a
// filter accepted. It is a snapshot: later changes to the graph are not
// reflected.
type Subgraph struct {
	root  NodeID
	adj   map[NodeID][]NodeID
	edges map[EdgeKey]EdgeKey
}

// Component returns the component containing start over the edges accepted
// by keep. A start id that is not in the graph yields an empty subgraph.
func (g *Graph) Component(start NodeID, keep EdgeFilter) *Subgraph {
	s := &Subgraph{
		root:  start,
		adj:   make(map[NodeID][]NodeID),
		edges: make(map[EdgeKey]EdgeKey),
	}
	if !g.HasNode(start) {
		return s
	}
	if keep == nil {
		keep = AllEdges
	}

	s.adj[start] = nil
	queue := []NodeID{start}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.Neighbors(u) {
			e := g.find(u, v)
			if e == nil || !keep(e) {
				continue
			}
			c := e.Key.Canonical()
			if _, seen := s.edges[c]; seen {
				continue
			}
			s.edges[c] = e.Key
			s.adj[u] = append(s.adj[u], v)
			if _, seen := s.adj[v]; !seen {
				s.adj[v] = nil
				queue = append(queue, v)
			}
			s.adj[v] = append(s.adj[v], u)
		}
	}
	for id := range s.adj {
		slices.Sort(s.adj[id])
	}
	return s
}

// Root returns the node the component was grown from.
func (s *Subgraph) Root() NodeID { return s.root }

// Nodes returns the component's node ids in ascending order.
func (s *Subgraph) Nodes() []NodeID { return slices.Sorted(maps.Keys(s.adj)) }

// Edges returns the component's edge keys, in the orientation the graph
// stored them, sorted canonically.
func (s *Subgraph) Edges() []EdgeKey {
	keys := slices.SortedFunc(maps.Keys(s.edges), EdgeKey.Compare)
	out := make([]EdgeKey, len(keys))
	for i, k := range keys {
		out[i] = s.edges[k]
	}
	return out
}

// Contains reports whether id is in the component.
func (s *Subgraph) Contains(id NodeID) bool {
	_, ok := s.adj[id]
	return ok
}

// HasEdge reports whether the edge joining a and b is in the component.
func (s *Subgraph) HasEdge(a, b NodeID) bool {
	_, ok := s.edges[EdgeKey{a, b}.Canonical()]
	return ok
}

// Degree returns the number of component edges touching id.
func (s *Subgraph) Degree(id NodeID) int { return len(s.adj[id]) }

// Leaves returns the ids with exactly one component edge, ascending.
func (s *Subgraph) Leaves() []NodeID {
	var out []NodeID
	for _, id := range s.Nodes() {
		if len(s.adj[id]) == 1 {
			out = append(out, id)
		}
	}
	return out
}

// PathTree holds breadth-first shortest paths from one node.
type PathTree struct {
	from   NodeID
	parent map[NodeID]NodeID
}

// ShortestPaths runs a breadth-first search from from, visiting neighbours
// in ascending id order. Paths are shortest by edge count; among equal
// length paths the one through smaller ids wins.
func (s *Subgraph) ShortestPaths(from NodeID) *PathTree {
	t := &PathTree{from: from, parent: make(map[NodeID]NodeID)}
	if !s.Contains(from) {
		return t
	}
	t.parent[from] = from
	queue := []NodeID{from}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range s.adj[u] {
			if _, seen := t.parent[v]; seen {
				continue
			}
			t.parent[v] = u
			queue = append(queue, v)
		}
	}
	return t
}

// PathTo returns the node sequence from the tree's origin to id, both
// included, or false if id is unreachable.
func (t *PathTree) PathTo(id NodeID) ([]NodeID, bool) {
	if _, ok := t.parent[id]; !ok {
		return nil, false
	}
	path := []NodeID{id}
	for id != t.from {
		id = t.parent[id]
		path = append(path, id)
	}
	slices.Reverse(path)
	return path, true
}
