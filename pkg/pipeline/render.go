package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/heralds-project/heralds/pkg/blocking"
	pkgio "github.com/heralds-project/heralds/pkg/io"
	"github.com/heralds-project/heralds/pkg/render/nodelink"
)

// Render produces the artifacts in opts.Formats for a finished plan.
func Render(ctx context.Context, p *blocking.Plan, z *blocking.Zones, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string

	for _, format := range opts.Formats {
		var buf bytes.Buffer
		var err error

		switch format {
		case FormatJSON:
			err = pkgio.WritePlanJSON(p, &buf)
		case FormatGeoJSON:
			err = pkgio.WriteGeoJSON(pkgio.PlanFeatures(p, z), &buf)
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = nodelink.ToDOT(p, nodelink.Options{ShowIDs: opts.ShowIDs})
			}
			if format == FormatDOT {
				buf.WriteString(dot)
				break
			}
			var svg []byte
			svg, err = nodelink.RenderSVG(ctx, dot)
			buf.Write(svg)
		default:
			err = fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = buf.Bytes()
	}
	return artifacts, nil
}
