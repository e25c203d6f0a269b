// Package pkg provides the core libraries of heralds.
//
// # Overview
//
// Heralds decides which roads around a patient must be blocked. A road
// network is built from raw polylines, every road is classified against a
// safety perimeter, crossings that cannot carry an intruder towards the
// patient are filtered, and danger markers are placed where blockades
// stand. The pkg directory is organized into three areas:
//
//  1. Domain logic: [geo], [roads], [network], [blocking]
//  2. Input and output: [scenario], [io], [render/nodelink]
//  3. Infrastructure: [pipeline], [cache], [store], [api], [config],
//     [observability], [errors]
//
// # Architecture
//
// The data flow of one run:
//
//	Scenario manifest + roads + bounds
//	         ↓
//	    [roads] package (reconcile junctions, planarize)
//	         ↓
//	    [network] package (planar road graph)
//	         ↓
//	    [blocking] package (label → audit → markers)
//	         ↓
//	    GeoJSON/JSON/DOT/SVG output
//
// # Quick Start
//
// Plan a scenario end to end:
//
//	sc, err := scenario.Load("benchmarks/benchmark_north.yaml", config.DefaultPlanner())
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Scenario: sc,
//	    Formats:  []string{pipeline.FormatGeoJSON},
//	})
//
// Or drive the stages yourself:
//
//	g, _, err := pipeline.BuildNetwork(ctx, sc.Roads, sc.Planner, logger)
//	zones, err := sc.Zones()
//	labels, err := blocking.Label(g, zones)
//	audit, err := blocking.Audit(ctx, g, zones)
//	markers, _, err := blocking.PlaceMarkers(g, zones)
//	plan := blocking.NewPlan(g, markers)
//
// # Main Packages
//
// [geo] - Planar geometry on lon/lat coordinates: circles in meters, line
// intersections with one representative point each, containment.
//
// [roads] - Junction reconciliation by agglomerative clustering and
// planarization of crossing roads into atomic pieces.
//
// [network] - The road graph: junctions, edges keyed by their endpoint
// pair, labels, and label-filtered traversal.
//
// [blocking] - The blocking decision: perimeter labeling, the crossing
// audit and danger marker placement.
//
// [scenario] - Manifests (YAML or TOML) and the data files they name.
//
// [pipeline] - The run sequence shared by the CLI, batch runs and the API,
// with network and plan caching.
//
// [cache] - File, Redis and null caches with content-hashed keys.
//
// [store] - The plan archive, on disk or in MongoDB.
//
// [api] - The HTTP API.
//
// # Testing
//
//	go test ./...                                    # All tests
//	HERALDS_TEST_REDIS_ADDR=localhost:6379 go test ./pkg/cache
//	HERALDS_TEST_MONGO_URI=mongodb://localhost go test ./pkg/store
//
// [geo]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/geo
// [roads]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/roads
// [network]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/network
// [blocking]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/blocking
// [scenario]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/scenario
// [io]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/cache
// [store]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/store
// [api]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/api
// [config]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/config
// [observability]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/observability
// [errors]: https://pkg.go.dev/github.com/heralds-project/heralds/pkg/errors
package pkg
