// Package pipeline runs planning scenarios end to end.
//
// This package implements the network → label → audit → markers → render
// sequence that the CLI, the batch command and the HTTP API share, so all
// entry points cache, log and report the same way.
//
// # Architecture
//
// A run consists of these stages:
//
//  1. Network: reconcile junctions, planarize and build the road graph
//     (cached by road content and the parameters that shape the graph)
//  2. Label: classify every edge against the safety perimeter
//  3. Audit: downgrade crossings that do not need a blockade
//  4. Markers: move danger markers onto the perimeter boundary
//  5. Render: produce the requested artifacts (plan JSON, GeoJSON, DOT, SVG)
//
// Stages 2–4 are cached together as a plan, keyed by the network and the
// scenario's zones. One run owns its graph from the network stage to the
// end; nothing is shared between concurrent runs except the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Scenario: sc,
//	    Formats:  []string{pipeline.FormatGeoJSON},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	geo := result.Artifacts[pipeline.FormatGeoJSON]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/heralds-project/heralds/pkg/blocking"
	"github.com/heralds-project/heralds/pkg/cache"
	"github.com/heralds-project/heralds/pkg/errors"
	"github.com/heralds-project/heralds/pkg/network"
	"github.com/heralds-project/heralds/pkg/scenario"
)

// Stage names, as reported to observability hooks.
const (
	StageNetwork = "network"
	StageLabel   = "label"
	StageAudit   = "audit"
	StageMarkers = "markers"
	StageRender  = "render"
)

// Format constants for output artifacts.
const (
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:    true,
	FormatGeoJSON: true,
	FormatDOT:     true,
	FormatSVG:     true,
}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures one run.
type Options struct {
	// Scenario is the resolved scenario to plan. Required.
	Scenario *scenario.Scenario `json:"-"`

	// Formats lists the artifacts to render. Empty renders nothing.
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses cache reads. Results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// ShowIDs labels marked junctions in DOT and SVG output.
	ShowIDs bool `json:"show_ids,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Scenario == nil {
		return errors.New(errors.ErrCodeInvalidInput, "scenario is required")
	}
	if err := errors.ValidateScenarioName(o.Scenario.Name); err != nil {
		return err
	}
	if err := o.Scenario.Planner.Validate(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// NetworkKeyOpts returns the parameters the network cache key covers.
func (o *Options) NetworkKeyOpts() cache.NetworkKeyOpts {
	p := o.Scenario.Planner
	return cache.NetworkKeyOpts{
		JunctionMergeThreshold: p.JunctionMergeThreshold,
		NearbyFactor:           p.NearbyFactor,
		Linkage:                p.Linkage,
	}
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, geojson, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Result - Run Output
// =============================================================================

// Result contains the outputs of a run.
type Result struct {
	// RunID uniquely identifies the run in logs and the archive.
	RunID    string
	Scenario string

	// Network is the built graph before labeling.
	Network     *network.Graph
	NetworkHash string

	Plan  *blocking.Plan
	Zones blocking.Zones

	Report    Report
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Report gathers the per-stage reports. Stages served from the cache
// report what the original computation reported.
type Report struct {
	Network  NetworkReport   `json:"network"`
	Blocking blocking.Report `json:"blocking"`
}

// Stats contains run statistics.
type Stats struct {
	Roads       int
	NodeCount   int
	EdgeCount   int
	Kept        int
	Filtered    int
	Markers     int
	NetworkTime time.Duration
	LabelTime   time.Duration
	AuditTime   time.Duration
	MarkerTime  time.Duration
	RenderTime  time.Duration
}

// Total returns the summed stage time.
func (s Stats) Total() time.Duration {
	return s.NetworkTime + s.LabelTime + s.AuditTime + s.MarkerTime + s.RenderTime
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	NetworkHit bool // Network came from cache
	PlanHit    bool // Label, audit and markers came from cache
}

func (c CacheInfo) String() string {
	return fmt.Sprintf("network=%v plan=%v", c.NetworkHit, c.PlanHit)
}
