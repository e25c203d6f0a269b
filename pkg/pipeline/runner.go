package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/heralds-project/heralds/pkg/blocking"
	"github.com/heralds-project/heralds/pkg/cache"
	pkgio "github.com/heralds-project/heralds/pkg/io"
	"github.com/heralds-project/heralds/pkg/network"
	"github.com/heralds-project/heralds/pkg/observability"
)

// Runner executes runs with caching. It holds no per-run state, so one
// Runner may serve many goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// NetworkTTL and PlanTTL bound how long cache entries live.
	NetworkTTL time.Duration
	PlanTTL    time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means the default keyer, and a nil logger means the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		NetworkTTL: cache.TTLNetwork,
		PlanTTL:    cache.TTLPlan,
	}
}

// cachedNetwork is the cache entry of the network stage.
type cachedNetwork struct {
	Report NetworkReport   `json:"report"`
	Graph  json.RawMessage `json:"graph"`
}

// cachedPlan is the cache entry of the label, audit and markers stages.
type cachedPlan struct {
	Report blocking.Report    `json:"report"`
	Plan   pkgio.PlanDocument `json:"plan"`
}

// Execute runs every stage for opts.Scenario.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	sc := opts.Scenario
	zones, err := sc.Zones()
	if err != nil {
		return nil, fmt.Errorf("zones: %w", err)
	}
	result := &Result{
		RunID:    uuid.NewString(),
		Scenario: sc.Name,
		Zones:    zones,
	}
	logger := opts.Logger.With("scenario", sc.Name, "run", result.RunID[:8])
	result.Stats.Roads = len(sc.Roads)

	if err := result.Zones.Validate(); err != nil {
		return nil, fmt.Errorf("zones: %w", err)
	}

	// Stage 1: Network
	var g *network.Graph
	result.Stats.NetworkTime, err = r.stage(ctx, sc.Name, StageNetwork, func() error {
		var e error
		g, result.Report.Network, result.NetworkHash, result.CacheInfo.NetworkHit, e = r.NetworkWithCacheInfo(ctx, opts)
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}
	result.Network = g.Clone()
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	logger.Info("built network",
		"junctions", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", result.CacheInfo.NetworkHit,
		"duration", result.Stats.NetworkTime)

	// Stages 2-4: Label, audit, markers
	if err := r.plan(ctx, g, opts, result); err != nil {
		return nil, err
	}
	result.Stats.Kept = result.Report.Blocking.Audit.Kept
	result.Stats.Filtered = result.Report.Blocking.Audit.Filtered
	result.Stats.Markers = len(result.Plan.Markers)
	observability.Pipeline().OnPlanComplete(ctx, sc.Name, result.Stats.Kept, result.Stats.Filtered, result.Stats.Markers)
	logger.Info("planned blockades",
		"kept", result.Stats.Kept,
		"filtered", result.Stats.Filtered,
		"markers", result.Stats.Markers,
		"cached", result.CacheInfo.PlanHit)

	// Stage 5: Render
	if len(opts.Formats) > 0 {
		result.Stats.RenderTime, err = r.stage(ctx, sc.Name, StageRender, func() error {
			var e error
			result.Artifacts, e = Render(ctx, result.Plan, &result.Zones, opts)
			return e
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("rendered outputs", "formats", opts.Formats, "duration", result.Stats.RenderTime)
	}
	return result, nil
}

// plan runs or restores the label, audit and markers stages, consuming g.
func (r *Runner) plan(ctx context.Context, g *network.Graph, opts Options, result *Result) error {
	name := opts.Scenario.Name
	zonesHash, err := cache.HashJSON(result.Zones)
	if err != nil {
		return fmt.Errorf("hash zones: %w", err)
	}
	key := r.Keyer.PlanKey(result.NetworkHash, zonesHash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cp cachedPlan
			if err := json.Unmarshal(data, &cp); err == nil {
				if p, err := cp.Plan.Plan(); err == nil {
					observability.Cache().OnCacheHit(ctx, "plan")
					result.Plan, result.Report.Blocking = p, cp.Report
					result.CacheInfo.PlanHit = true
					return nil
				}
			}
		} else if err != nil {
			opts.Logger.Warn("plan cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "plan")
	}

	rep := &result.Report.Blocking
	result.Stats.LabelTime, err = r.stage(ctx, name, StageLabel, func() error {
		var e error
		rep.Label, e = blocking.Label(g, result.Zones)
		return e
	})
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}

	result.Stats.AuditTime, err = r.stage(ctx, name, StageAudit, func() error {
		var e error
		rep.Audit, e = blocking.Audit(ctx, g, result.Zones)
		return e
	})
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}

	var markers []blocking.Marker
	result.Stats.MarkerTime, err = r.stage(ctx, name, StageMarkers, func() error {
		var e error
		markers, rep.Markers, e = blocking.PlaceMarkers(g, result.Zones)
		return e
	})
	if err != nil {
		return fmt.Errorf("markers: %w", err)
	}
	result.Plan = blocking.NewPlan(g, markers)

	if data, err := json.Marshal(cachedPlan{Report: *rep, Plan: pkgio.NewPlanDocument(result.Plan)}); err == nil {
		r.store(ctx, "plan", key, data, r.PlanTTL, opts.Logger)
	}
	return nil
}

// NetworkWithCacheInfo builds the scenario's road network, or restores it
// from the cache. It also returns the hash of the encoded network and
// whether it came from the cache.
func (r *Runner) NetworkWithCacheInfo(ctx context.Context, opts Options) (*network.Graph, NetworkReport, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, NetworkReport{}, "", false, err
	}

	roadsHash, err := cache.HashJSON(opts.Scenario.Roads)
	if err != nil {
		return nil, NetworkReport{}, "", false, fmt.Errorf("hash roads: %w", err)
	}
	key := r.Keyer.NetworkKey(roadsHash, opts.NetworkKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cn cachedNetwork
			if err := json.Unmarshal(data, &cn); err == nil {
				if g, err := pkgio.ReadJSON(bytes.NewReader(cn.Graph)); err == nil {
					observability.Cache().OnCacheHit(ctx, "network")
					return g, cn.Report, cache.Hash(cn.Graph), true, nil
				}
			}
			// Undecodable entries fall through to a rebuild.
		} else if err != nil {
			opts.Logger.Warn("network cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "network")
	}

	g, report, err := BuildNetwork(ctx, opts.Scenario.Roads, opts.Scenario.Planner, opts.Logger)
	if err != nil {
		return nil, report, "", false, err
	}

	var buf, compact bytes.Buffer
	if err := pkgio.WriteJSON(g, &buf); err != nil {
		return nil, report, "", false, fmt.Errorf("encode network: %w", err)
	}
	// The cache stores the compact form, so hits and misses hash alike.
	if err := json.Compact(&compact, buf.Bytes()); err != nil {
		return nil, report, "", false, fmt.Errorf("encode network: %w", err)
	}
	graphData := compact.Bytes()
	if data, err := json.Marshal(cachedNetwork{Report: report, Graph: graphData}); err == nil {
		r.store(ctx, "network", key, data, r.NetworkTTL, opts.Logger)
	}
	return g, report, cache.Hash(graphData), false, nil
}

// Network is NetworkWithCacheInfo without the cache details.
func (r *Runner) Network(ctx context.Context, opts Options) (*network.Graph, error) {
	g, _, _, _, err := r.NetworkWithCacheInfo(ctx, opts)
	return g, err
}

// stage times fn and reports it to the pipeline hooks.
func (r *Runner) stage(ctx context.Context, scenario, name string, fn func() error) (time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, scenario, name)
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	hooks.OnStageComplete(ctx, scenario, name, elapsed, err)
	return elapsed, err
}

// store writes a cache entry. Cache failures never fail a run.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration, logger *log.Logger) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
