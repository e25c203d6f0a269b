// Package roads turns raw road polylines into atomic road pieces.
//
// Two steps run in order before the road graph is built:
//
//  1. [Reconcile] merges road endpoints that lie closer than a threshold,
//     so junctions encoded with small coordinate noise by different source
//     roads become exact matches.
//  2. [Planarize] splits every road at its intersections with nearby roads,
//     so the only meeting points of the resulting pieces are their endpoints.
//
// Both functions are pure: input slices are never modified, and identical
// inputs give identical outputs.
package roads
