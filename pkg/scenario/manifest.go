package scenario

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/heralds-project/heralds/pkg/config"
	"github.com/heralds-project/heralds/pkg/errors"
)

// Patient location types.
const (
	LocationRelative = "relative"
	LocationAbsolute = "absolute"
)

// Manifest describes one scenario: the area it runs on, where the patient
// is, and optional overrides of the planner parameters.
//
// The flat patient_* keys match the benchmark files the planner was first
// run against, so those files load unchanged.
type Manifest struct {
	Name     string `yaml:"name" toml:"name" json:"name,omitempty"`
	AreaName string `yaml:"area_name" toml:"area_name" json:"area_name,omitempty"`

	// Resources is the directory data files are resolved against,
	// relative to the manifest. Defaults to the manifest's directory.
	// Roads and Bounds default to roads/roads_<area>.json and
	// bounds/bounds_<area>.json; Villages and Perimeter are optional
	// GeoJSON files.
	Resources string `yaml:"resources" toml:"resources" json:"resources,omitempty"`
	Roads     string `yaml:"roads" toml:"roads" json:"roads,omitempty"`
	Bounds    string `yaml:"bounds" toml:"bounds" json:"bounds,omitempty"`
	Villages  string `yaml:"villages" toml:"villages" json:"villages,omitempty"`
	Perimeter string `yaml:"perimeter" toml:"perimeter" json:"perimeter,omitempty"`

	PatientLocationType    string  `yaml:"patient_location_type" toml:"patient_location_type" json:"patient_location_type"`
	PatientLocationSouth   float64 `yaml:"patient_location_south" toml:"patient_location_south" json:"patient_location_south"`
	PatientLocationWest    float64 `yaml:"patient_location_west" toml:"patient_location_west" json:"patient_location_west"`
	PatientContagionRadius float64 `yaml:"patient_contagion_radius" toml:"patient_contagion_radius" json:"patient_contagion_radius"`
	PatientEffectiveRadius float64 `yaml:"patient_effective_radius" toml:"patient_effective_radius" json:"patient_effective_radius"`

	JunctionMergeThreshold *float64 `yaml:"junction_merge_threshold" toml:"junction_merge_threshold" json:"junction_merge_threshold,omitempty"`
	DangerPolygonRatio     *float64 `yaml:"danger_polygon_ratio" toml:"danger_polygon_ratio" json:"danger_polygon_ratio,omitempty"`
	NearbyFactor           *float64 `yaml:"nearby_factor" toml:"nearby_factor" json:"nearby_factor,omitempty"`
	MapEdgeBuffer          *float64 `yaml:"map_edge_buffer" toml:"map_edge_buffer" json:"map_edge_buffer,omitempty"`
	Linkage                *string  `yaml:"linkage" toml:"linkage" json:"linkage,omitempty"`
	CircleResolution       *int     `yaml:"circle_resolution" toml:"circle_resolution" json:"circle_resolution,omitempty"`

	// Benchmark spellings of the two scenario-level parameters.
	IntersectionPointsDistanceThreshold *float64 `yaml:"intersection_points_distance_threshold" toml:"intersection_points_distance_threshold" json:"-"`
	NoEntrancePolygonRatio              *float64 `yaml:"no_entrance_polygon_ratio" toml:"no_entrance_polygon_ratio" json:"-"`
}

// LoadManifest reads a manifest from a .yaml, .yml or .toml file. A missing
// name is taken from the file stem with any "benchmark_" prefix removed.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read manifest %s", path)
	}

	m, err := ParseManifest(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse manifest %s", path)
	}
	if m.Name == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		m.Name = strings.TrimPrefix(stem, "benchmark_")
	}
	return m, nil
}

// ParseManifest decodes manifest data. ext selects the format: ".toml" for
// TOML, anything else for YAML.
func ParseManifest(data []byte, ext string) (*Manifest, error) {
	var m Manifest
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// Validate checks the patient description and scenario name.
func (m *Manifest) Validate() error {
	if err := errors.ValidateScenarioName(m.Name); err != nil {
		return err
	}
	switch m.PatientLocationType {
	case LocationRelative:
		if !inUnit(m.PatientLocationSouth) || !inUnit(m.PatientLocationWest) {
			return errors.New(errors.ErrCodeInvalidScenario,
				"relative patient location must be fractions in [0, 1], got (%g, %g)",
				m.PatientLocationSouth, m.PatientLocationWest)
		}
	case LocationAbsolute:
	default:
		return errors.New(errors.ErrCodeInvalidScenario,
			"patient_location_type must be %q or %q, got %q", LocationRelative, LocationAbsolute, m.PatientLocationType)
	}
	if err := errors.ValidatePositive("patient_effective_radius", m.PatientEffectiveRadius); err != nil {
		return errors.New(errors.ErrCodeInvalidScenario, "%s", errors.UserMessage(err))
	}
	if m.PatientContagionRadius < 0 {
		return errors.New(errors.ErrCodeInvalidScenario, "patient_contagion_radius must not be negative, got %g", m.PatientContagionRadius)
	}
	return nil
}

// Planner applies the manifest's overrides to base and validates the result.
func (m *Manifest) Planner(base config.PlannerConfig) (config.PlannerConfig, error) {
	p := base
	setFloat(&p.JunctionMergeThreshold, m.IntersectionPointsDistanceThreshold)
	setFloat(&p.JunctionMergeThreshold, m.JunctionMergeThreshold)
	setFloat(&p.DangerPolygonRatio, m.NoEntrancePolygonRatio)
	setFloat(&p.DangerPolygonRatio, m.DangerPolygonRatio)
	setFloat(&p.NearbyFactor, m.NearbyFactor)
	setFloat(&p.MapEdgeBuffer, m.MapEdgeBuffer)
	if m.Linkage != nil {
		p.Linkage = *m.Linkage
	}
	if m.CircleResolution != nil {
		p.CircleResolution = *m.CircleResolution
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// dataPath resolves a data file reference. An empty ref falls back to def.
func (m *Manifest) dataPath(dir, ref, def string) (string, error) {
	if ref == "" {
		ref = def
	}
	if err := errors.ValidatePath(ref); err != nil {
		return "", err
	}
	return filepath.Join(dir, m.Resources, filepath.FromSlash(ref)), nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }
