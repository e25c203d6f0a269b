package scenario

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heralds-project/heralds/pkg/config"
	"github.com/heralds-project/heralds/pkg/errors"
	hgeo "github.com/heralds-project/heralds/pkg/geo"
)

const (
	testRoads  = `[[[32.1, 35.1], [32.2, 35.2]], [[32.2, 35.2], [32.3, 35.1], [32.4, 35.4]]]`
	testBounds = `{"south": 32, "west": 35, "north": 33, "east": 36}`
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func TestLoadBenchmarkYAML(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"benchmarks/benchmark_demo.yaml": `
area_name: north
resources: ..
patient_location_type: relative
patient_location_south: 0.5
patient_location_west: 0.25
patient_contagion_radius: 500
patient_effective_radius: 1500
no_entrance_polygon_ratio: 0.3
intersection_points_distance_threshold: 0.0002
`,
		"roads/roads_north.json":   testRoads,
		"bounds/bounds_north.json": testBounds,
	})

	s, err := Load(filepath.Join(dir, "benchmarks", "benchmark_demo.yaml"), config.DefaultPlanner())
	require.NoError(t, err)

	assert.Equal(t, "demo", s.Name)
	assert.Equal(t, "north", s.Area)
	assert.Equal(t, orb.Point{35.75, 32.5}, s.Patient.Location)
	assert.Equal(t, 1500.0, s.Patient.EffectiveRadius)
	assert.Equal(t, 500.0, s.Patient.ContagionRadius)
	assert.Equal(t, 0.3, s.Planner.DangerPolygonRatio)
	assert.Equal(t, 0.0002, s.Planner.JunctionMergeThreshold)
	assert.Equal(t, config.DefaultMapEdgeBuffer, s.Planner.MapEdgeBuffer)

	require.Len(t, s.Roads, 2)
	assert.Equal(t, orb.LineString{{35.1, 32.1}, {35.2, 32.2}}, s.Roads[0])
	assert.Len(t, s.Roads[1], 3)
	assert.Equal(t, Bounds{South: 32, West: 35, North: 33, East: 36}, s.Bounds)
}

func TestLoadTOMLOverrides(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"site.toml": `
name = "site-7"
roads = "data/roads.geojson"
bounds = "data/bounds.json"
patient_location_type = "absolute"
patient_location_south = 32.4
patient_location_west = 35.6
patient_effective_radius = 800
danger_polygon_ratio = 0.5
linkage = "single"
circle_resolution = 12
`,
		"data/roads.geojson": `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[35.1,32.1],[35.2,32.2]]}},
{"type":"Feature","properties":{},"geometry":{"type":"MultiLineString","coordinates":[[[35.2,32.2],[35.3,32.3]],[[35.3,32.3],[35.4,32.3]]]}},
{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[35.0,32.0]}}]}`,
		"data/bounds.json": testBounds,
	})

	s, err := Load(filepath.Join(dir, "site.toml"), config.DefaultPlanner())
	require.NoError(t, err)

	assert.Equal(t, "site-7", s.Name)
	assert.Equal(t, orb.Point{35.6, 32.4}, s.Patient.Location)
	assert.Equal(t, 0.5, s.Planner.DangerPolygonRatio)
	assert.Equal(t, "single", s.Planner.Linkage)
	assert.Equal(t, 12, s.Planner.CircleResolution)
	assert.Len(t, s.Roads, 3)
}

func TestLoadErrors(t *testing.T) {
	valid := `
patient_location_type: relative
patient_location_south: 0.5
patient_location_west: 0.5
patient_effective_radius: 1000
`
	tests := []struct {
		name  string
		files map[string]string
		code  errors.Code
	}{
		{
			name:  "missing manifest",
			files: map[string]string{},
			code:  errors.ErrCodeFileNotFound,
		},
		{
			name:  "missing roads",
			files: map[string]string{"s.yaml": valid, "bounds/bounds_s.json": testBounds},
			code:  errors.ErrCodeFileNotFound,
		},
		{
			name:  "bad location type",
			files: map[string]string{"s.yaml": "patient_location_type: nearby\npatient_effective_radius: 10\n"},
			code:  errors.ErrCodeInvalidScenario,
		},
		{
			name:  "relative fraction out of range",
			files: map[string]string{"s.yaml": "patient_location_type: relative\npatient_location_south: 1.5\npatient_effective_radius: 10\n"},
			code:  errors.ErrCodeInvalidScenario,
		},
		{
			name:  "zero effective radius",
			files: map[string]string{"s.yaml": "patient_location_type: absolute\n"},
			code:  errors.ErrCodeInvalidScenario,
		},
		{
			name:  "traversal in data path",
			files: map[string]string{"s.yaml": valid + "roads: ../../etc/roads.json\n"},
			code:  errors.ErrCodeInvalidPath,
		},
		{
			name: "inverted bounds",
			files: map[string]string{
				"s.yaml":               valid,
				"roads/roads_s.json":   testRoads,
				"bounds/bounds_s.json": `{"south": 33, "west": 35, "north": 32, "east": 36}`,
			},
			code: errors.ErrCodeInvalidGeometry,
		},
		{
			name: "malformed roads",
			files: map[string]string{
				"s.yaml":               valid,
				"roads/roads_s.json":   `{"roads": []}`,
				"bounds/bounds_s.json": testBounds,
			},
			code: errors.ErrCodeInvalidFormat,
		},
		{
			name: "bad override",
			files: map[string]string{
				"s.yaml":               valid + "danger_polygon_ratio: 2\n",
				"roads/roads_s.json":   testRoads,
				"bounds/bounds_s.json": testBounds,
			},
			code: errors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, tt.files)
			_, err := Load(filepath.Join(dir, "s.yaml"), config.DefaultPlanner())
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), err.Error())
		})
	}
}

func TestZones(t *testing.T) {
	s := &Scenario{
		Name:    "z",
		Bounds:  Bounds{South: 32, West: 35, North: 33, East: 36},
		Patient: Patient{Location: orb.Point{35.5, 32.5}, EffectiveRadius: 2000, ContagionRadius: 300},
		Planner: config.DefaultPlanner(),
	}
	z, err := s.Zones()
	require.NoError(t, err)
	require.NoError(t, z.Validate())

	for _, p := range z.Perimeter[0] {
		assert.InDelta(t, 2000, geo.Distance(s.Patient.Location, p), 1)
	}
	for _, p := range z.Danger[0] {
		assert.InDelta(t, 500, geo.Distance(s.Patient.Location, p), 1)
	}
	assert.Len(t, z.Perimeter[0], config.DefaultCircleResolution+1)
	assert.True(t, z.Inside(s.Patient.Location))

	assert.True(t, hgeo.Contains(z.MapEdge, orb.Point{35, 32.5}), "west edge lies in the map-edge band")
	assert.False(t, hgeo.Contains(z.MapEdge, orb.Point{35.5, 32.5}), "centre is not map edge")

	for _, p := range s.ContagionZone()[0] {
		assert.InDelta(t, 300, geo.Distance(s.Patient.Location, p), 1)
	}
	s.Patient.ContagionRadius = 0
	assert.Nil(t, s.ContagionZone())
}

func TestZonesExplicitPerimeter(t *testing.T) {
	dir := writeFiles(t, map[string]string{"p.geojson": `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{},"geometry":{"type":"MultiPolygon","coordinates":[
[[[35.4,32.4],[35.6,32.4],[35.6,32.6],[35.4,32.6],[35.4,32.4]]],
[[[35.0,32.0],[35.01,32.0],[35.01,32.01],[35.0,32.01],[35.0,32.0]]]]}}]}`})

	p, err := ReadPerimeter(filepath.Join(dir, "p.geojson"))
	require.NoError(t, err)
	assert.Equal(t, orb.Point{35.4, 32.4}, p[0][0], "largest part wins")

	s := &Scenario{
		Bounds:    Bounds{South: 32, West: 35, North: 33, East: 36},
		Patient:   Patient{Location: orb.Point{35.5, 32.5}, EffectiveRadius: 2000},
		Perimeter: p,
		Planner:   config.DefaultPlanner(),
	}
	s.Villages = []orb.Polygon{box(35.55, 32.45, 35.65, 32.55)}
	z, err := s.Zones()
	require.NoError(t, err)
	assert.Equal(t, p, z.Perimeter, "explicit perimeter is not trimmed")
}

func box(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}.ToPolygon()
}

func zonesScenario(villages ...orb.Polygon) *Scenario {
	return &Scenario{
		Name:     "trim",
		Bounds:   Bounds{South: 32, West: 35, North: 33, East: 36},
		Patient:  Patient{Location: orb.Point{35.5, 32.5}, EffectiveRadius: 2000},
		Villages: villages,
		Planner:  config.DefaultPlanner(),
	}
}

func TestZonesTrimsStraddlingVillage(t *testing.T) {
	// The circle reaches about 0.0213 degrees of longitude east of centre.
	straddling := box(35.515, 32.495, 35.53, 32.505)
	inner := box(35.499, 32.499, 35.501, 32.501)
	s := zonesScenario(straddling, inner)

	z, err := s.Zones()
	require.NoError(t, err)
	require.NoError(t, z.Validate())

	assert.False(t, hgeo.Contains(z.Perimeter, orb.Point{35.518, 32.5}), "village part is cut out")
	assert.True(t, hgeo.Contains(z.Perimeter, orb.Point{35.516, 32.507}), "circle beside the village stays")
	assert.True(t, hgeo.Contains(z.Perimeter, s.Patient.Location), "inner village is not subtracted")
	assert.False(t, z.Inside(orb.Point{35.518, 32.5}))
	assert.Len(t, z.Villages, 2)

	circle, err := zonesScenario().Zones()
	require.NoError(t, err)
	assert.Less(t, math.Abs(planar.Area(z.Perimeter)), math.Abs(planar.Area(circle.Perimeter)))
}

func TestZonesKeepsLargestPieceAfterSplit(t *testing.T) {
	band := box(35.51, 32.4, 35.515, 32.6)
	z, err := zonesScenario(band).Zones()
	require.NoError(t, err)

	assert.True(t, hgeo.Contains(z.Perimeter, orb.Point{35.49, 32.5}))
	assert.False(t, hgeo.Contains(z.Perimeter, orb.Point{35.519, 32.5}), "east cap is dropped")
}

func TestZonesVillageCoversPerimeter(t *testing.T) {
	_, err := zonesScenario(box(35.4, 32.4, 35.6, 32.6)).Zones()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScenario))
}

func TestBuildRequiresRoads(t *testing.T) {
	m := &Manifest{Name: "empty", PatientLocationType: LocationAbsolute, PatientEffectiveRadius: 10}
	_, err := Build(m, Data{Bounds: Bounds{South: 0, West: 0, North: 1, East: 1}}, config.DefaultPlanner())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScenario))
}

func TestDecodePolygonsGeoJSON(t *testing.T) {
	polys, err := DecodePolygonsGeoJSON([]byte(`{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"name":"a"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}},
{"type":"Feature","properties":{"name":"road"},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}]}`))
	require.NoError(t, err)
	require.Len(t, polys, 1)
	assert.Len(t, polys[0][0], 4)
}
