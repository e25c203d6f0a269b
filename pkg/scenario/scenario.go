// Package scenario loads planning scenarios and derives their safety zones.
//
// A scenario is a manifest (YAML or TOML) naming an area and a patient, plus
// the data files it refers to: road polylines, the area's bounding box and
// optionally village outlines and an explicit perimeter. [Load] reads all of
// it; [Build] assembles a scenario from data already in memory, as the HTTP
// API does.
//
// Coordinates are held as orb points (longitude, latitude). Radii are in
// meters.
package scenario

import (
	"path/filepath"

	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/blocking"
	"github.com/heralds-project/heralds/pkg/config"
	"github.com/heralds-project/heralds/pkg/errors"
	"github.com/heralds-project/heralds/pkg/geo"
)

// Patient is the centre of a scenario.
type Patient struct {
	Location        orb.Point
	ContagionRadius float64
	EffectiveRadius float64
}

// Data is the geographic input of a scenario.
type Data struct {
	Roads     []orb.LineString
	Bounds    Bounds
	Villages  []orb.Polygon
	Perimeter orb.Polygon // optional; replaces the effective-radius circle
}

// Scenario is a fully resolved planning problem.
type Scenario struct {
	Name      string
	Area      string
	Roads     []orb.LineString
	Bounds    Bounds
	Patient   Patient
	Villages  []orb.Polygon
	Perimeter orb.Polygon
	Planner   config.PlannerConfig
}

// Load reads the manifest at path and the data files it references.
// base supplies planner parameters the manifest does not override.
func Load(path string, base config.PlannerConfig) (*Scenario, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data, err := m.ReadData(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return Build(m, data, base)
}

// ReadData reads the files the manifest references, resolved against dir.
func (m *Manifest) ReadData(dir string) (Data, error) {
	var d Data
	area := m.AreaName
	if area == "" {
		area = m.Name
	}

	p, err := m.dataPath(dir, m.Roads, "roads/roads_"+area+".json")
	if err != nil {
		return d, err
	}
	if d.Roads, err = ReadRoads(p); err != nil {
		return d, err
	}

	if p, err = m.dataPath(dir, m.Bounds, "bounds/bounds_"+area+".json"); err != nil {
		return d, err
	}
	if d.Bounds, err = ReadBounds(p); err != nil {
		return d, err
	}

	if m.Villages != "" {
		if p, err = m.dataPath(dir, m.Villages, ""); err != nil {
			return d, err
		}
		if d.Villages, err = ReadPolygons(p); err != nil {
			return d, err
		}
	}

	if m.Perimeter != "" {
		if p, err = m.dataPath(dir, m.Perimeter, ""); err != nil {
			return d, err
		}
		if d.Perimeter, err = ReadPerimeter(p); err != nil {
			return d, err
		}
	}
	return d, nil
}

// Build assembles a scenario from a manifest and its data.
func Build(m *Manifest, d Data, base config.PlannerConfig) (*Scenario, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := d.Bounds.Validate(); err != nil {
		return nil, err
	}
	if len(d.Roads) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidScenario, "scenario %s has no roads", m.Name)
	}
	planner, err := m.Planner(base)
	if err != nil {
		return nil, err
	}

	area := m.AreaName
	if area == "" {
		area = m.Name
	}
	return &Scenario{
		Name:   m.Name,
		Area:   area,
		Roads:  d.Roads,
		Bounds: d.Bounds,
		Patient: Patient{
			Location:        m.location(d.Bounds),
			ContagionRadius: m.PatientContagionRadius,
			EffectiveRadius: m.PatientEffectiveRadius,
		},
		Villages:  d.Villages,
		Perimeter: d.Perimeter,
		Planner:   planner,
	}, nil
}

// location places the patient. A relative location weights the southern
// and western edges of the box by the given fractions, so (1, 1) is the
// south-west corner and (0, 0) the north-east one.
func (m *Manifest) location(b Bounds) orb.Point {
	if m.PatientLocationType == LocationAbsolute {
		return orb.Point{m.PatientLocationWest, m.PatientLocationSouth}
	}
	ps, pw := m.PatientLocationSouth, m.PatientLocationWest
	lat := b.South*ps + b.North*(1-ps)
	lon := b.West*pw + b.East*(1-pw)
	return orb.Point{lon, lat}
}

// Zones derives the polygons the blocking engine decides against: the
// perimeter, the danger zone (a circle of DangerPolygonRatio times the
// effective radius), the villages, and the buffered map boundary.
//
// An explicit perimeter is used as given. Otherwise the perimeter is the
// effective-radius circle minus every village not wholly inside it, and the
// largest remaining piece is kept.
func (s *Scenario) Zones() (blocking.Zones, error) {
	res := s.Planner.CircleResolution
	perimeter := s.Perimeter
	if len(perimeter) == 0 {
		var err error
		if perimeter, err = s.trimmedPerimeter(); err != nil {
			return blocking.Zones{}, err
		}
	}
	return blocking.Zones{
		Perimeter: perimeter,
		Danger:    geo.Circle(s.Patient.Location, s.Planner.DangerPolygonRatio*s.Patient.EffectiveRadius, res),
		Villages:  s.Villages,
		MapEdge:   geo.MapEdge(s.Bounds.Bound(), s.Planner.MapEdgeBuffer),
	}, nil
}

func (s *Scenario) trimmedPerimeter() (orb.Polygon, error) {
	circle := geo.Circle(s.Patient.Location, s.Patient.EffectiveRadius, s.Planner.CircleResolution)
	var cuts []orb.Polygon
	for _, v := range s.Villages {
		if !geo.Within(v, circle) {
			cuts = append(cuts, v)
		}
	}
	if len(cuts) == 0 {
		return circle, nil
	}
	parts, err := geo.Subtract(circle, cuts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "scenario %s: trim perimeter by villages", s.Name)
	}
	largest, ok := geo.LargestPolygon(parts)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidScenario, "scenario %s: villages cover the whole perimeter", s.Name)
	}
	return largest, nil
}

// ContagionZone returns the circle of the contagion radius, or nil when the
// radius is zero.
func (s *Scenario) ContagionZone() orb.Polygon {
	if s.Patient.ContagionRadius <= 0 {
		return nil
	}
	return geo.Circle(s.Patient.Location, s.Patient.ContagionRadius, s.Planner.CircleResolution)
}
