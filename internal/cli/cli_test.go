package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/heralds-project/heralds/pkg/store"
)

const (
	testManifest = `name: u-shape
roads: roads.json
bounds: bounds.json
patient_location_type: absolute
patient_location_south: 32.0
patient_location_west: 35.0
patient_contagion_radius: 200
patient_effective_radius: 1000
`
	// Legacy layout: [lat, lon] pairs. One road leaves the perimeter.
	testRoads  = `[[[31.995, 34.995], [31.995, 35.005]], [[31.995, 35.005], [32.005, 35.005]], [[32.005, 35.005], [32.005, 35.02]]]`
	testBounds = `{"south": 31.97, "west": 34.97, "north": 32.03, "east": 35.03}`
)

// writeScenario writes a manifest and its data files into a fresh
// directory and returns the manifest path.
func writeScenario(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		name + ".yaml": strings.Replace(testManifest, "u-shape", name, 1),
		"roads.json":   testRoads,
		"bounds.json":  testBounds,
	}
	for f, body := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, name+".yaml")
}

// newTestCLI returns a CLI with an isolated cache and the given config file.
func newTestCLI(t *testing.T, config string) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	var out bytes.Buffer
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.Out = &out
	if config != "" {
		p := filepath.Join(t.TempDir(), "heralds.yaml")
		if err := os.WriteFile(p, []byte(config), 0o644); err != nil {
			t.Fatal(err)
		}
		c.configPath = p
	}
	return c, &out
}

func run(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestNetworkCommand(t *testing.T) {
	c, _ := newTestCLI(t, "")
	manifest := writeScenario(t, "roads")
	out := filepath.Join(filepath.Dir(manifest), "graph.json")

	if err := run(t, c, "network", manifest, "-o", out); err != nil {
		t.Fatalf("network: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode graph: %v", err)
	}
	if len(doc.Nodes) != 4 || len(doc.Edges) != 3 {
		t.Errorf("graph has %d nodes and %d edges, want 4 and 3", len(doc.Nodes), len(doc.Edges))
	}
}

func TestNetworkCommandDefaultOutput(t *testing.T) {
	c, _ := newTestCLI(t, "")
	manifest := writeScenario(t, "site")

	if err := run(t, c, "network", manifest, "-f", "geojson"); err != nil {
		t.Fatalf("network: %v", err)
	}
	want := strings.TrimSuffix(manifest, ".yaml") + ".network.geojson"
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected %s: %v", want, err)
	}
}

func TestNetworkCommandRejectsFormat(t *testing.T) {
	c, _ := newTestCLI(t, "")
	if err := run(t, c, "network", writeScenario(t, "x"), "-f", "svg"); err == nil {
		t.Error("svg is not a network format")
	}
}

func TestPlanCommand(t *testing.T) {
	c, _ := newTestCLI(t, "")
	manifest := writeScenario(t, "plan")
	base := filepath.Join(t.TempDir(), "out", "plan")

	if err := run(t, c, "plan", manifest, "-f", "geojson,json,dot", "-o", base); err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, ext := range []string{"geojson", "json", "dot"} {
		if _, err := os.Stat(base + "." + ext); err != nil {
			t.Errorf("missing %s artifact: %v", ext, err)
		}
	}
}

func TestPlanCommandInvalidFormat(t *testing.T) {
	c, _ := newTestCLI(t, "")
	if err := run(t, c, "plan", writeScenario(t, "bad"), "-f", "png"); err == nil {
		t.Error("png should be rejected")
	}
}

func TestPlanCommandMissingManifest(t *testing.T) {
	c, _ := newTestCLI(t, "")
	if err := run(t, c, "plan", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing manifest should fail")
	}
}

func TestPlanArchiveAndExport(t *testing.T) {
	archiveDir := t.TempDir()
	c, _ := newTestCLI(t, "archive:\n  backend: file\n  dir: "+archiveDir+"\n")
	manifest := writeScenario(t, "archived")

	if err := run(t, c, "plan", manifest, "-o", filepath.Join(t.TempDir(), "p")); err != nil {
		t.Fatalf("plan: %v", err)
	}

	fs, err := store.NewFileStore(archiveDir)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := fs.List(t.Context(), "archived", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("archive holds %d records, want 1", len(recs))
	}

	base := filepath.Join(t.TempDir(), "exported")
	if err := run(t, c, "export", recs[0].ID, "-f", "json,dot", "-o", base); err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, ext := range []string{"json", "dot"} {
		if _, err := os.Stat(base + "." + ext); err != nil {
			t.Errorf("missing exported %s: %v", ext, err)
		}
	}

	if err := run(t, c, "export", "6f1c1f0e-0000-4000-8000-000000000000"); err == nil {
		t.Error("unknown run id should fail")
	}
}

func TestExportWithoutArchive(t *testing.T) {
	c, _ := newTestCLI(t, "")
	if err := run(t, c, "export", "6f1c1f0e-0000-4000-8000-000000000000"); err == nil {
		t.Error("export needs an archive")
	}
}

func TestBatchCommand(t *testing.T) {
	c, _ := newTestCLI(t, "")
	outDir := t.TempDir()
	a := writeScenario(t, "alpha")
	b := writeScenario(t, "beta")

	if err := run(t, c, "batch", a, b, "--plain", "-j", "2", "-o", outDir); err != nil {
		t.Fatalf("batch: %v", err)
	}
	for _, name := range []string{"alpha", "beta"} {
		if _, err := os.Stat(filepath.Join(outDir, name+".geojson")); err != nil {
			t.Errorf("missing artifact for %s: %v", name, err)
		}
	}
}

func TestBatchCommandStopsOnBadManifest(t *testing.T) {
	c, _ := newTestCLI(t, "")
	err := run(t, c, "batch", writeScenario(t, "ok"), filepath.Join(t.TempDir(), "missing.yaml"), "--plain")
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("err = %v, want it to name the bad manifest", err)
	}
}

func TestCacheCommands(t *testing.T) {
	cacheDir := t.TempDir()
	c, out := newTestCLI(t, "cache:\n  dir: "+cacheDir+"\n")

	if err := run(t, c, "plan", writeScenario(t, "cached"), "-o", filepath.Join(t.TempDir(), "p")); err != nil {
		t.Fatalf("plan: %v", err)
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("plan should populate the cache: %v", err)
	}

	if err := run(t, c, "cache", "path"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != cacheDir {
		t.Errorf("cache path = %q, want %q", out.String(), cacheDir)
	}

	if err := run(t, c, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	entries, _ = os.ReadDir(cacheDir)
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestNoCacheFlag(t *testing.T) {
	cacheDir := t.TempDir()
	c, _ := newTestCLI(t, "cache:\n  dir: "+cacheDir+"\n")

	if err := run(t, c, "--no-cache", "plan", writeScenario(t, "nocache"), "-o", filepath.Join(t.TempDir(), "p")); err != nil {
		t.Fatalf("plan: %v", err)
	}
	entries, _ := os.ReadDir(cacheDir)
	if len(entries) != 0 {
		t.Errorf("--no-cache wrote %d cache entries", len(entries))
	}
}

func TestVersionCommand(t *testing.T) {
	c, out := newTestCLI(t, "")
	if err := run(t, c, "version"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "version:") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestInvalidConfig(t *testing.T) {
	c, _ := newTestCLI(t, "cache:\n  backend: tape\n")
	if err := run(t, c, "version"); err == nil {
		t.Error("unknown cache backend should fail config validation")
	}
}
