// Package network provides the undirected road graph used by the blocking
// planner.
//
// # Overview
//
// A [Graph] has one node per road junction and one edge per atomic road
// piece. Every edge carries the full path geometry of the piece and a mutable
// [EdgeLabel]. Two junctions are joined by at most one edge.
//
// Edges are identified by an unordered pair of node ids but stored with an
// orientation. Lookups through [Graph.Edge] and [Graph.LookupEdge] try the
// requested orientation first and then the reverse, so callers never need to
// know how an edge is stored. [Graph.Orient] changes the stored orientation;
// the perimeter labeler uses it to put crossing edges in (inner, outer) order.
//
// # Node Ids
//
// Node ids come from an arena allocator. [Graph.AddNode] hands out the next
// id, and ids below a watermark raised by [Graph.Reserve] are never reused
// within the same graph. [Build] assigns dense ids 0..N-1 in order of first endpoint
// appearance.
//
// # Traversal
//
// [Graph.Component] collects the connected component of a node over the
// edges accepted by an [EdgeFilter]. The resulting [Subgraph] answers degree
// and leaf queries and computes breadth-first shortest paths with neighbours
// visited in ascending id order, so path choice is deterministic.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. A graph is owned by one
// pipeline run at a time and passed from stage to stage.
package network
