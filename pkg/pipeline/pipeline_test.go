package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/cache"
	"github.com/heralds-project/heralds/pkg/config"
	"github.com/heralds-project/heralds/pkg/observability"
	"github.com/heralds-project/heralds/pkg/scenario"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"geojson", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "geojson"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("missing scenario should fail")
	}

	opts = Options{Scenario: testScenario("ok")}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("valid options: %v", err)
	}
	if opts.Logger == nil {
		t.Error("logger should default to a discard logger")
	}

	bad := testScenario("../escape")
	opts = Options{Scenario: bad}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("traversal in scenario name should fail")
	}

	planner := testScenario("ratio")
	planner.Planner.DangerPolygonRatio = 2
	opts = Options{Scenario: planner}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("invalid planner config should fail")
	}
}

func TestNetworkKeyOpts(t *testing.T) {
	sc := testScenario("keys")
	sc.Planner.Linkage = "single"
	opts := Options{Scenario: sc}
	got := opts.NetworkKeyOpts()
	if got.Linkage != "single" || got.NearbyFactor != sc.Planner.NearbyFactor {
		t.Errorf("NetworkKeyOpts = %+v", got)
	}
}

func TestCacheInfoString(t *testing.T) {
	if got := (CacheInfo{NetworkHit: true}).String(); got != "network=true plan=false" {
		t.Errorf("String = %s", got)
	}
}

// testScenario places a U of roads around the origin of a small box near
// (35, 32), with one road leaving the square perimeter eastward towards a
// village:
//
//	0 (-5,-5) - 1 (5,-5) - 2 (5,5) - 3 (20,5)    in thousandths of a degree
func testScenario(name string) *scenario.Scenario {
	const lon, lat = 35.0, 32.0
	at := func(x, y float64) orb.Point { return orb.Point{lon + x/1000, lat + y/1000} }
	box := func(x0, y0, x1, y1 float64) orb.Polygon {
		return orb.Bound{Min: at(x0, y0), Max: at(x1, y1)}.ToPolygon()
	}

	return &scenario.Scenario{
		Name: name,
		Area: "test",
		Roads: []orb.LineString{
			{at(-5, -5), at(5, -5)},
			{at(5, -5), at(5, 5)},
			{at(5, 5), at(20, 5)},
		},
		Bounds: scenario.Bounds{South: lat - 0.03, West: lon - 0.03, North: lat + 0.03, East: lon + 0.03},
		Patient: scenario.Patient{
			Location:        at(0, 0),
			ContagionRadius: 500,
			EffectiveRadius: 3600,
		},
		Villages:  []orb.Polygon{box(18, 3, 22, 7)},
		Perimeter: box(-10, -10, 10, 10),
		Planner:   config.DefaultPlanner(),
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	stages []string
	plans  int
}

func (h *recordingHooks) OnStageStart(_ context.Context, _, stage string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, stage)
}

func (h *recordingHooks) OnPlanComplete(context.Context, string, int, int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.plans++
}

func TestExecute(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Scenario: testScenario("u-shape"),
		Formats:  []string{FormatJSON, FormatGeoJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.RunID == "" || result.Scenario != "u-shape" {
		t.Errorf("RunID %q, Scenario %q", result.RunID, result.Scenario)
	}
	if result.Network.NodeCount() != 4 || result.Network.EdgeCount() != 3 {
		t.Errorf("network = %d nodes, %d edges, want 4 and 3",
			result.Network.NodeCount(), result.Network.EdgeCount())
	}
	if result.Stats.Roads != 3 {
		t.Errorf("Stats.Roads = %d", result.Stats.Roads)
	}
	if got := result.Report.Blocking.Label.Crossings(); got != 1 {
		t.Errorf("crossings = %d, want 1", got)
	}
	if result.Stats.Kept+result.Stats.Filtered != 1 {
		t.Errorf("kept %d + filtered %d should cover the one crossing", result.Stats.Kept, result.Stats.Filtered)
	}
	if result.CacheInfo.NetworkHit || result.CacheInfo.PlanHit {
		t.Error("null cache should never hit")
	}

	want := []string{StageNetwork, StageLabel, StageAudit, StageMarkers, StageRender}
	if strings.Join(hooks.stages, ",") != strings.Join(want, ",") {
		t.Errorf("stages = %v, want %v", hooks.stages, want)
	}
	if hooks.plans != 1 {
		t.Errorf("OnPlanComplete fired %d times", hooks.plans)
	}

	for _, f := range []string{FormatJSON, FormatGeoJSON, FormatDOT} {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	var fc map[string]any
	if err := json.Unmarshal(result.Artifacts[FormatGeoJSON], &fc); err != nil || fc["type"] != "FeatureCollection" {
		t.Errorf("geojson artifact: %v", err)
	}
	if !strings.HasPrefix(string(result.Artifacts[FormatDOT]), "graph plan {") {
		t.Error("dot artifact should be a Graphviz graph")
	}
}

func TestExecuteNetworkIsPreLabeling(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	result, err := r.Execute(context.Background(), Options{Scenario: testScenario("pre")})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range result.Network.Edges() {
		if e.Label != 0 {
			t.Errorf("edge %v labeled %v in the built network", e.Key, e.Label)
		}
	}
	if len(result.Artifacts) != 0 {
		t.Errorf("no formats should render nothing, got %d artifacts", len(result.Artifacts))
	}
}

func TestExecuteUsesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()
	sc := testScenario("cached")

	first, err := r.Execute(ctx, Options{Scenario: sc})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, Options{Scenario: sc})
	if err != nil {
		t.Fatal(err)
	}

	if !second.CacheInfo.NetworkHit || !second.CacheInfo.PlanHit {
		t.Errorf("second run cache info = %s", second.CacheInfo)
	}
	if first.NetworkHash != second.NetworkHash {
		t.Error("network hash should not depend on the cache")
	}
	if first.RunID == second.RunID {
		t.Error("every run should get its own id")
	}
	if first.Stats.Kept != second.Stats.Kept || first.Stats.Markers != second.Stats.Markers {
		t.Errorf("cached stats differ: %+v vs %+v", first.Stats, second.Stats)
	}
	if len(first.Plan.EdgeLabels) != len(second.Plan.EdgeLabels) {
		t.Errorf("cached plan differs: %d vs %d edges", len(first.Plan.EdgeLabels), len(second.Plan.EdgeLabels))
	}
	if first.Report.Blocking.Audit.Kept != second.Report.Blocking.Audit.Kept {
		t.Error("cached report should match the computed one")
	}

	refreshed, err := r.Execute(ctx, Options{Scenario: sc, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.NetworkHit || refreshed.CacheInfo.PlanHit {
		t.Error("refresh should bypass cache reads")
	}

	changed := testScenario("cached")
	changed.Planner.DangerPolygonRatio = 0.1
	third, err := r.Execute(ctx, Options{Scenario: changed})
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheInfo.NetworkHit || third.CacheInfo.PlanHit {
		t.Errorf("new zones should reuse the network only: %s", third.CacheInfo)
	}
}

func TestExecuteRejectsInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Scenario: testScenario("x"), Formats: []string{"png"}})
	if err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestExecuteBatch(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	scenarios := []*scenario.Scenario{testScenario("a"), testScenario(""), testScenario("c")}

	var mu sync.Mutex
	var calls []int
	items, err := r.ExecuteBatch(context.Background(), scenarios, BatchOptions{
		Jobs: 2,
		Progress: func(done, total int, _ BatchItem) {
			mu.Lock()
			defer mu.Unlock()
			if total != 3 {
				t.Errorf("total = %d", total)
			}
			calls = append(calls, done)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Scenario != "a" || items[2].Scenario != "c" {
		t.Errorf("items out of order: %q, %q", items[0].Scenario, items[2].Scenario)
	}
	if items[0].Err != nil || items[0].Result == nil || items[2].Err != nil {
		t.Errorf("valid scenarios should succeed: %v, %v", items[0].Err, items[2].Err)
	}
	failed := Failed(items)
	if len(failed) != 1 || failed[0].Scenario != "" {
		t.Errorf("Failed = %+v", failed)
	}
	if fmt.Sprint(calls) != "[1 2 3]" {
		t.Errorf("progress calls = %v", calls)
	}
}

func TestExecuteBatchCancelled(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := r.ExecuteBatch(ctx, []*scenario.Scenario{testScenario("a")}, BatchOptions{})
	if err != context.Canceled {
		t.Errorf("err = %v", err)
	}
	if items[0].Err == nil {
		t.Error("cancelled item should record the error")
	}
}

func TestStatsTotal(t *testing.T) {
	s := Stats{NetworkTime: time.Second, AuditTime: 2 * time.Second}
	if s.Total() != 3*time.Second {
		t.Errorf("Total = %v", s.Total())
	}
}
