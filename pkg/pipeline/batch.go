package pipeline

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heralds-project/heralds/pkg/scenario"
)

// BatchItem is the outcome of one scenario in a batch.
type BatchItem struct {
	Scenario string
	Result   *Result
	Err      error
	Duration time.Duration
}

// BatchOptions configures [Runner.ExecuteBatch].
type BatchOptions struct {
	// Template supplies the formats, refresh and logging of every run. Its
	// Scenario is ignored.
	Template Options

	// Jobs bounds the number of concurrent runs. Zero means GOMAXPROCS.
	Jobs int

	// Progress, if set, is called after each run completes. Calls are
	// serialized.
	Progress func(done, total int, item BatchItem)
}

// ExecuteBatch runs every scenario concurrently. Items are returned in
// input order. A failed scenario is recorded in its item and never stops
// the others; the returned error is only the context's.
func (r *Runner) ExecuteBatch(ctx context.Context, scenarios []*scenario.Scenario, opts BatchOptions) ([]BatchItem, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	items := make([]BatchItem, len(scenarios))
	done := make(chan int)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		n := 0
		for i := range done {
			n++
			if opts.Progress != nil {
				opts.Progress(n, len(scenarios), items[i])
			}
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(jobs)
	for i, sc := range scenarios {
		g.Go(func() error {
			item := BatchItem{Scenario: sc.Name}
			start := time.Now()
			if err := ctx.Err(); err != nil {
				item.Err = err
			} else {
				runOpts := opts.Template
				runOpts.Scenario = sc
				runOpts.Formats = append([]string(nil), opts.Template.Formats...)
				runOpts.validated = false
				item.Result, item.Err = r.Execute(ctx, runOpts)
			}
			item.Duration = time.Since(start)
			items[i] = item
			done <- i
			return nil
		})
	}
	_ = g.Wait()
	close(done)
	<-progressDone

	return items, ctx.Err()
}

// Failed returns the items that ended in an error.
func Failed(items []BatchItem) []BatchItem {
	var out []BatchItem
	for _, it := range items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}
