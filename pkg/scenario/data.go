package scenario

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/heralds-project/heralds/pkg/errors"
	"github.com/heralds-project/heralds/pkg/geo"
)

// Bounds is the bounding box of a mapped area in the bounds file layout.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Bound converts b to an orb bound (x = longitude, y = latitude).
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.West, b.South}, Max: orb.Point{b.East, b.North}}
}

// Validate checks that the box has positive extent.
func (b Bounds) Validate() error {
	if b.South >= b.North || b.West >= b.East {
		return errors.New(errors.ErrCodeInvalidGeometry,
			"bounds must satisfy south < north and west < east, got %+v", b)
	}
	return nil
}

// ReadBounds reads a bounds file: {"south":…, "west":…, "north":…, "east":…}.
func ReadBounds(path string) (Bounds, error) {
	var b Bounds
	data, err := readFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode bounds %s", path)
	}
	return b, b.Validate()
}

// ReadRoads reads road polylines. Files ending in .geojson are read as a
// FeatureCollection of LineString and MultiLineString features; anything
// else is read as the legacy layout, a JSON list of roads each given as a
// list of [lat, lon] pairs.
func ReadRoads(path string) ([]orb.LineString, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if isGeoJSON(path) {
		roads, err := DecodeRoadsGeoJSON(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode roads %s", path)
		}
		return roads, nil
	}
	roads, err := DecodeLegacyRoads(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode roads %s", path)
	}
	return roads, nil
}

// DecodeLegacyRoads decodes a JSON list of [lat, lon] polylines.
func DecodeLegacyRoads(data []byte) ([]orb.LineString, error) {
	var raw [][][2]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	roads := make([]orb.LineString, len(raw))
	for i, r := range raw {
		ls := make(orb.LineString, len(r))
		for j, c := range r {
			ls[j] = orb.Point{c[1], c[0]}
		}
		roads[i] = ls
	}
	return roads, nil
}

// DecodeRoadsGeoJSON collects the line geometries of a FeatureCollection.
// Other geometry types are skipped.
func DecodeRoadsGeoJSON(data []byte) ([]orb.LineString, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	var roads []orb.LineString
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			roads = append(roads, g)
		case orb.MultiLineString:
			roads = append(roads, g...)
		}
	}
	return roads, nil
}

// ReadPolygons reads the polygons of a GeoJSON FeatureCollection. Multipart
// features contribute each part.
func ReadPolygons(path string) ([]orb.Polygon, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	polys, err := DecodePolygonsGeoJSON(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode polygons %s", path)
	}
	return polys, nil
}

// DecodePolygonsGeoJSON collects the polygon geometries of a FeatureCollection.
func DecodePolygonsGeoJSON(data []byte) ([]orb.Polygon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	var polys []orb.Polygon
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polys = append(polys, g)
		case orb.MultiPolygon:
			polys = append(polys, g...)
		}
	}
	return polys, nil
}

// ReadPerimeter reads an explicit perimeter. When the file holds several
// polygons the largest one is used.
func ReadPerimeter(path string) (orb.Polygon, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	p, err := DecodePerimeterGeoJSON(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "perimeter file %s", path)
	}
	return p, nil
}

// DecodePerimeterGeoJSON decodes polygon features and keeps the one with
// the largest area.
func DecodePerimeterGeoJSON(data []byte) (orb.Polygon, error) {
	polys, err := DecodePolygonsGeoJSON(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode perimeter")
	}
	p, ok := geo.LargestPolygon(orb.MultiPolygon(polys))
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "perimeter has no polygons")
	}
	return p, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}

func isGeoJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".geojson")
}
