package io

import (
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/heralds-project/heralds/pkg/blocking"
	"github.com/heralds-project/heralds/pkg/network"
)

// Feature kinds.
const (
	KindEdge     = "edge"
	KindJunction = "junction"
	KindMarker   = "marker"
	KindZone     = "zone"
)

// NetworkFeatures returns one LineString feature per edge and one Point
// feature per junction of g.
func NetworkFeatures(g *network.Graph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range g.Edges() {
		fc.Append(edgeFeature(e.Key.A, e.Key.B, e.Label.String(), e.Path))
	}
	for _, n := range g.Nodes() {
		f := geojson.NewFeature(n.Point)
		f.Properties["kind"] = KindJunction
		f.Properties["id"] = int(n.ID)
		fc.Append(f)
	}
	return fc
}

// PlanFeatures returns the features of a plan: edges, labeled junctions,
// markers, and, when z is non-nil, the perimeter, danger and village zones.
func PlanFeatures(p *blocking.Plan, z *blocking.Zones) *geojson.FeatureCollection {
	doc := NewPlanDocument(p)
	fc := geojson.NewFeatureCollection()

	if z != nil {
		fc.Append(zoneFeature("perimeter", z.Perimeter))
		if len(z.Danger) > 0 {
			fc.Append(zoneFeature("danger", z.Danger))
		}
		for _, v := range z.Villages {
			fc.Append(zoneFeature("village", v))
		}
	}
	for _, e := range doc.Edges {
		fc.Append(edgeFeature(e.A, e.B, e.Label, e.Path))
	}

	markers := make(map[network.NodeID]bool, len(doc.Markers))
	for _, m := range doc.Markers {
		markers[m.ID] = true
		f := geojson.NewFeature(m.Point)
		f.Properties["kind"] = KindMarker
		f.Properties["id"] = int(m.ID)
		f.Properties["label"] = m.Label
		f.Properties["junction"] = int(m.Junction)
		fc.Append(f)
	}
	for _, n := range doc.Nodes {
		if n.Label == "" || markers[n.ID] {
			continue
		}
		f := geojson.NewFeature(n.Point)
		f.Properties["kind"] = KindJunction
		f.Properties["id"] = int(n.ID)
		f.Properties["label"] = n.Label
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes fc to w.
func WriteGeoJSON(fc *geojson.FeatureCollection, w io.Writer) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportGeoJSON writes fc to a file at path.
func ExportGeoJSON(fc *geojson.FeatureCollection, path string) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func edgeFeature(a, b network.NodeID, label string, path orb.LineString) *geojson.Feature {
	f := geojson.NewFeature(path)
	f.Properties["kind"] = KindEdge
	f.Properties["a"] = int(a)
	f.Properties["b"] = int(b)
	f.Properties["label"] = label
	return f
}

func zoneFeature(name string, poly orb.Polygon) *geojson.Feature {
	f := geojson.NewFeature(poly)
	f.Properties["kind"] = KindZone
	f.Properties["zone"] = name
	return f
}
