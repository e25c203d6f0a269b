package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heralds-project/heralds/pkg/pipeline"
	"github.com/heralds-project/heralds/pkg/store"
)

// exportOpts holds options for the export command.
type exportOpts struct {
	output  string
	formats string
	showIDs bool
}

// exportCommand creates the export command for archived plans.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{}

	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write an archived plan to disk",
		Long: `Write an archived plan to disk in any output format.

The plan is read from the configured archive by the run id printed by plan
and batch. Archived plans carry no zones, so GeoJSON output holds the roads,
junctions and markers only.`,
		Example: `  heralds export 1b4e28ba-2fa1-11d2-883f-0016d3cca427 -f svg,geojson`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: <scenario>-<run-id prefix>)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: geojson, json, dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&opts.showIDs, "show-ids", false, "label marked junctions in dot and svg output")

	return cmd
}

// runExport renders an archived record.
func (c *CLI) runExport(ctx context.Context, id string, opts exportOpts) error {
	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	s, err := c.openArchive(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("no archive configured (set archive.backend to file or mongo)")
	}
	defer s.Close()

	rec, err := s.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no archived plan with id %s", id)
	}
	if err != nil {
		return err
	}

	plan, err := rec.Plan.Plan()
	if err != nil {
		return fmt.Errorf("decode archived plan: %w", err)
	}
	artifacts, err := pipeline.Render(ctx, plan, nil, pipeline.Options{Formats: formats, ShowIDs: opts.showIDs})
	if err != nil {
		return err
	}

	base := opts.output
	if base == "" {
		base = fmt.Sprintf("%s-%s", rec.Scenario, shortID(rec.ID))
	} else {
		base = basePath(base, "")
	}
	paths, err := writeArtifacts(&pipeline.Result{Artifacts: artifacts}, formats, base)
	if err != nil {
		return err
	}

	printSuccess("Exported %s", rec.Scenario)
	printKeyValue("Created", rec.CreatedAt.Local().Format("2006-01-02 15:04"))
	printKeyValue("Blockades", fmt.Sprintf("%d kept, %d filtered", rec.Summary.Kept, rec.Summary.Filtered))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// shortID returns the first block of a run id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
