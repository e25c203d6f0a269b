package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/heralds-project/heralds/pkg/io"
	"github.com/heralds-project/heralds/pkg/pipeline"
	"github.com/heralds-project/heralds/pkg/scenario"
)

// networkOpts holds options for the network command.
type networkOpts struct {
	output  string
	format  string
	refresh bool
}

// networkCommand creates the network command for building a road network.
func (c *CLI) networkCommand() *cobra.Command {
	opts := networkOpts{}

	cmd := &cobra.Command{
		Use:   "network <manifest>",
		Short: "Build the planar road network of a scenario",
		Long: `Build the road network of a scenario and write it as JSON or GeoJSON.

Road endpoints closer than the junction merge threshold are merged, roads are
split where they cross, and every atomic piece becomes an edge.`,
		Example: `  # Build and write the graph next to the manifest
  heralds network benchmarks/benchmark_north.yaml

  # Write GeoJSON for a map viewer
  heralds network site.toml -f geojson -o site-roads.geojson`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNetwork(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <manifest>.network.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatJSON, "output format: json, geojson")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even if the network is cached")

	return cmd
}

// runNetwork builds the network and writes it to disk.
func (c *CLI) runNetwork(cmd *cobra.Command, path string, opts networkOpts) error {
	ctx := cmd.Context()
	if opts.format != pipeline.FormatJSON && opts.format != pipeline.FormatGeoJSON {
		return fmt.Errorf("invalid network format %q (must be json or geojson)", opts.format)
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

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building network for %s...", sc.Name))
	spinner.Start()
	g, report, _, cached, err := runner.NetworkWithCacheInfo(ctx, pipeline.Options{
		Scenario: sc,
		Refresh:  opts.refresh,
		Logger:   c.Logger,
	})
	if err != nil {
		spinner.Stop()
		return err
	}

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".network." + opts.format
	}
	if opts.format == pipeline.FormatGeoJSON {
		err = pkgio.ExportGeoJSON(pkgio.NetworkFeatures(g), out)
	} else {
		err = pkgio.ExportJSON(g, out)
	}
	if err != nil {
		spinner.Stop()
		return fmt.Errorf("write network: %w", err)
	}

	spinner.StopWithSuccess(fmt.Sprintf("Built network for %s", sc.Name))
	printNetworkStats(g.NodeCount(), g.EdgeCount(), report.Planarize.SplitPoints, cached)
	printFile(out)
	return nil
}
