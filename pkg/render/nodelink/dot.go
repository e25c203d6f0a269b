package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/blocking"
	"github.com/heralds-project/heralds/pkg/network"
)

// DefaultWidth is the drawing width in inches.
const DefaultWidth = 12.0

// Options configures node-link rendering.
type Options struct {
	// Width is the span of the longer side of the network, in inches.
	Width float64
	// ShowIDs labels marked junctions and markers with their ids.
	ShowIDs bool
}

var edgeStyles = map[network.EdgeLabel]string{
	network.Unlabeled:      `color="black"`,
	network.Contained:      `color="grey50"`,
	network.SafeCrossing:   `color="forestgreen", penwidth=3`,
	network.DangerCrossing: `color="red3", penwidth=3`,
	network.Filtered:       `color="grey80", style="dashed"`,
}

var nodeColors = map[network.NodeLabel]string{
	network.SafeMarked:   "forestgreen",
	network.DangerMarked: "red3",
}

// ToDOT converts a plan to Graphviz DOT with pinned node positions.
func ToDOT(p *blocking.Plan, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	place := projector(p.Nodes, opts.Width)

	markers := make(map[network.NodeID]bool, len(p.Markers))
	for _, m := range p.Markers {
		markers[m.ID] = true
	}

	var buf bytes.Buffer
	buf.WriteString("graph plan {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=point, width=0.04, color=\"grey40\", label=\"\"];\n")
	buf.WriteString("  edge [penwidth=1.2];\n")
	buf.WriteString("\n")

	for _, id := range slices.Sorted(maps.Keys(p.Nodes)) {
		attrs := []string{place(p.Nodes[id])}
		if l, ok := p.NodeLabels[id]; ok {
			attrs = append(attrs, nodeAttrs(id, l, markers[id], opts.ShowIDs)...)
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", id, strings.Join(attrs, ", "))
	}

	// Relocated junctions keep their edges; pin them, hidden, at the road end.
	hidden := make(map[network.NodeID]orb.Point)
	for k, path := range p.Paths {
		if len(path) == 0 {
			continue
		}
		if _, ok := p.Nodes[k.A]; !ok {
			hidden[k.A] = path[0]
		}
		if _, ok := p.Nodes[k.B]; !ok {
			hidden[k.B] = path[len(path)-1]
		}
	}
	for _, id := range slices.Sorted(maps.Keys(hidden)) {
		fmt.Fprintf(&buf, "  %d [%s, style=invis];\n", id, place(hidden[id]))
	}

	buf.WriteString("\n")
	keys := slices.SortedFunc(maps.Keys(p.EdgeLabels), func(a, b network.EdgeKey) int { return a.Compare(b) })
	for _, k := range keys {
		fmt.Fprintf(&buf, "  %d -- %d [%s];\n", k.A, k.B, edgeStyles[p.EdgeLabels[k]])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(id network.NodeID, l network.NodeLabel, marker, showID bool) []string {
	color := nodeColors[l]
	attrs := []string{
		fmt.Sprintf("color=%q", color),
		fmt.Sprintf("fillcolor=%q", color),
		"style=filled",
	}
	if marker {
		attrs = append(attrs, "shape=diamond", "width=0.14", "height=0.14")
	} else {
		attrs = append(attrs, "shape=circle", "width=0.1")
	}
	if showID {
		attrs = append(attrs, fmt.Sprintf("xlabel=%q", strconv.Itoa(int(id))))
	}
	return attrs
}

// projector maps coordinates into a box of the given width in inches,
// keeping the aspect ratio.
func projector(nodes map[network.NodeID]orb.Point, width float64) func(orb.Point) string {
	var b orb.Bound
	first := true
	for _, p := range nodes {
		if first {
			b, first = p.Bound(), false
			continue
		}
		b = b.Extend(p)
	}
	span := max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	scale := 1.0
	if span > 0 {
		scale = width / span
	}
	return func(p orb.Point) string {
		x := (p[0] - b.Min[0]) * scale
		y := (p[1] - b.Min[1]) * scale
		return fmt.Sprintf("pos=\"%.4f,%.4f!\"", x, y)
	}
}

// RenderSVG renders DOT to SVG with the neato engine, honoring pinned
// positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg tag with one that scales to its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// Legend returns the edge counts per label in label order, for captions.
func Legend(p *blocking.Plan) []string {
	counts := p.Counts()
	labels := slices.SortedFunc(maps.Keys(counts), func(a, b network.EdgeLabel) int { return cmp.Compare(a, b) })
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, fmt.Sprintf("%s: %d", l, counts[l]))
	}
	return out
}
