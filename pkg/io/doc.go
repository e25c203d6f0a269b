// Package io reads and writes road networks and plans.
//
// # Network JSON
//
// A built network serializes to a compact JSON document. Edges keep their
// stored orientation and label, and the allocator watermark is saved so a
// restored graph never reissues a retired id:
//
//	{
//	  "next": 5,
//	  "nodes": [{"id": 0, "point": [35.1, 32.1]}, ...],
//	  "edges": [{"a": 0, "b": 1, "label": "safe", "path": [[35.1, 32.1], [35.2, 32.2]]}]
//	}
//
// Coordinates are [longitude, latitude]. The pipeline caches networks in this
// format; [WriteJSON] and [ReadJSON] round-trip a graph exactly.
//
// # Plan JSON
//
// [PlanDocument] is the wire and archive form of a [blocking.Plan]: flat
// node, edge and marker lists sorted by id. It carries bson tags so the
// MongoDB archive stores the same shape the API returns.
//
// # GeoJSON
//
// [PlanFeatures] and [NetworkFeatures] build orb/geojson feature collections
// for GIS tools. Every feature has a "kind" property ("edge", "junction",
// "marker", "zone") and a "label" where one applies.
package io
