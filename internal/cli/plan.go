package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/heralds-project/heralds/pkg/pipeline"
	"github.com/heralds-project/heralds/pkg/scenario"
	"github.com/heralds-project/heralds/pkg/store"
)

// planOpts holds options for the plan command.
type planOpts struct {
	output  string
	formats string
	showIDs bool
	refresh bool
}

// planCommand creates the plan command for planning one scenario.
func (c *CLI) planCommand() *cobra.Command {
	opts := planOpts{}

	cmd := &cobra.Command{
		Use:   "plan <manifest>",
		Short: "Plan the blockades of a scenario",
		Long: `Plan the blockades of a scenario.

The road network is built (or read from the cache), every road is classified
against the safety perimeter around the patient, crossings that need no
blockade are filtered, and danger markers are moved onto the perimeter.

Artifacts are written next to the manifest unless --output is given. When an
archive is configured the plan is stored under its run id.`,
		Example: `  # GeoJSON plan next to the manifest
  heralds plan benchmarks/benchmark_north.yaml

  # Several formats under a chosen base name
  heralds plan site.toml -f geojson,json,svg -o out/site`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: manifest path without extension)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: geojson, json, dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&opts.showIDs, "show-ids", false, "label marked junctions in dot and svg output")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached networks and plans")

	return cmd
}

// runPlan executes one scenario and writes its artifacts.
func (c *CLI) runPlan(ctx context.Context, path string, opts planOpts) error {
	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	sc, err := scenario.Load(path, c.settings().Planner)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Planning %s...", sc.Name))
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Scenario: sc,
		Formats:  formats,
		Refresh:  opts.refresh,
		ShowIDs:  opts.showIDs,
		Logger:   c.Logger,
	})
	if err != nil {
		spinner.Stop()
		return err
	}

	spinner.Update("Writing artifacts...")
	paths, err := writeArtifacts(result, formats, basePath(opts.output, path))
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Planned %s", sc.Name))
	printPlanStats(result)
	for _, p := range paths {
		printFile(p)
	}

	if err := c.archive(ctx, result); err != nil {
		return err
	}
	return nil
}

// writeArtifacts writes each rendered format to base.<format> and returns
// the written paths in format order.
func writeArtifacts(result *pipeline.Result, formats []string, base string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		p := base + "." + f
		if err := os.WriteFile(p, result.Artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// archive stores the run when an archive is configured.
func (c *CLI) archive(ctx context.Context, result *pipeline.Result) error {
	s, err := c.openArchive(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	defer s.Close()

	if err := s.Put(ctx, store.NewRecord(result)); err != nil {
		return fmt.Errorf("archive plan: %w", err)
	}
	printKeyValue("Run", result.RunID)
	printNextStep("Export later with", fmt.Sprintf("%s export %s", appName, result.RunID))
	return nil
}
