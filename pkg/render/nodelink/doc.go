// Package nodelink renders plans as node-link diagrams.
//
// # Usage
//
//	dot := nodelink.ToDOT(plan, nodelink.Options{Width: 12})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Layout
//
// Positions are not computed: each junction is pinned (pos="x,y!") at its
// coordinate, scaled uniformly so the network spans Width inches, and the
// neato engine only routes the edges. The drawing therefore matches the map.
//
// # Styling
//
//   - contained edges are grey, safe crossings green, danger crossings red
//   - filtered crossings are dashed light grey
//   - marked junctions are filled circles in their label color
//   - relocated markers are diamonds
//
// # Dependencies
//
// SVG rendering uses [github.com/goccy/go-graphviz], which runs Graphviz
// as WebAssembly, so no system Graphviz is needed.
package nodelink
