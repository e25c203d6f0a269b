// Package render draws labeled road networks.
//
// The [nodelink] subpackage turns a plan into Graphviz DOT with every
// junction pinned at its map position, and renders that to SVG in-process
// with go-graphviz. Edges are colored by label so the blocked crossings
// stand out:
//
//	dot := nodelink.ToDOT(plan, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/heralds-project/heralds/pkg/render/nodelink
package render
