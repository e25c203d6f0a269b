package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/heralds-project/heralds/pkg/pipeline"
	"github.com/heralds-project/heralds/pkg/scenario"
)

// batchOpts holds options for the batch command.
type batchOpts struct {
	outDir  string
	formats string
	jobs    int
	refresh bool
	plain   bool
}

// batchCommand creates the batch command for planning many scenarios.
func (c *CLI) batchCommand() *cobra.Command {
	opts := batchOpts{}

	cmd := &cobra.Command{
		Use:   "batch <manifest>...",
		Short: "Plan many scenarios concurrently",
		Long: `Plan many scenarios concurrently.

Every manifest is loaded first; a manifest that fails to load stops the batch
before anything runs. Scenarios then run on up to --jobs workers, sharing the
cache, and a failed scenario never stops the others.`,
		Example: `  # Every benchmark of a directory, artifacts under out/
  heralds batch benchmarks/*.yaml -o out -f geojson,json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBatch(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "", "output directory (default: next to each manifest)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: geojson, json, dot, svg (comma-separated)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "concurrent scenarios (default: number of CPUs)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached networks and plans")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "log progress instead of the interactive view")

	return cmd
}

// runBatch loads, plans and writes every scenario.
func (c *CLI) runBatch(ctx context.Context, paths []string, opts batchOpts) error {
	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	scenarios := make([]*scenario.Scenario, len(paths))
	for i, p := range paths {
		sc, err := scenario.Load(p, c.settings().Planner)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		scenarios[i] = sc
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bopts := pipeline.BatchOptions{
		Template: pipeline.Options{Formats: formats, Refresh: opts.refresh, Logger: c.Logger},
		Jobs:     opts.jobs,
	}

	prog := newProgress(c.Logger)
	var items []pipeline.BatchItem
	if opts.plain || !isatty.IsTerminal(os.Stdout.Fd()) {
		bopts.Progress = func(done, total int, it pipeline.BatchItem) {
			if it.Err != nil {
				c.Logger.Warn("scenario failed", "scenario", it.Scenario, "done", done, "total", total, "err", it.Err)
				return
			}
			c.Logger.Debug("scenario planned", "scenario", it.Scenario, "done", done, "total", total)
		}
		items, err = runner.ExecuteBatch(ctx, scenarios, bopts)
	} else {
		items, err = runBatchTUI(ctx, cancel, runner, scenarios, bopts)
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Planned %d scenarios", len(items)))

	fmt.Println(batchTable(items).Render())

	for i, it := range items {
		if it.Err != nil {
			continue
		}
		base := basePath("", paths[i])
		if opts.outDir != "" {
			base = filepath.Join(opts.outDir, scenarios[i].Name)
		}
		written, err := writeArtifacts(it.Result, formats, base)
		if err != nil {
			return err
		}
		for _, p := range written {
			printFile(p)
		}
		if err := c.archive(ctx, it.Result); err != nil {
			return err
		}
	}

	if failed := pipeline.Failed(items); len(failed) > 0 {
		return fmt.Errorf("%d of %d scenarios failed", len(failed), len(items))
	}
	printSuccess("All %d scenarios planned", len(items))
	return nil
}

// runBatchTUI runs the batch behind the interactive progress view.
// Quitting the view cancels the remaining scenarios.
func runBatchTUI(ctx context.Context, cancel context.CancelFunc, runner *pipeline.Runner, scenarios []*scenario.Scenario, opts pipeline.BatchOptions) ([]pipeline.BatchItem, error) {
	p := tea.NewProgram(NewBatchModel(len(scenarios)), tea.WithContext(ctx))
	opts.Progress = func(done, total int, it pipeline.BatchItem) {
		p.Send(batchProgressMsg{Done: done, Total: total, Item: it})
	}

	type outcome struct {
		items []pipeline.BatchItem
		err   error
	}
	finished := make(chan outcome, 1)
	go func() {
		items, err := runner.ExecuteBatch(ctx, scenarios, opts)
		p.Send(batchDoneMsg{})
		finished <- outcome{items, err}
	}()

	final, err := p.Run()
	if m, ok := final.(BatchModel); err != nil || (ok && m.Aborted) {
		cancel()
	}
	out := <-finished
	return out.items, out.err
}
