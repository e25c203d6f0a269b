package roads

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/errors"
)

// ReconcileOptions configures [Reconcile].
type ReconcileOptions struct {
	// Threshold is the merge distance in coordinate units. Endpoint clusters
	// stop merging once the closest pair is at least this far apart. Zero
	// disables merging.
	Threshold float64

	// Linkage selects the cluster distance. Empty means [DefaultLinkage].
	Linkage Linkage

	Logger *log.Logger
}

// ReconcileReport summarizes a [Reconcile] run.
type ReconcileReport struct {
	Endpoints int // Endpoints considered (two per road)
	Clusters  int // Clusters after merging
	Moved     int // Endpoints whose coordinate changed
}

// Reconcile snaps road endpoints that lie within opts.Threshold of each
// other onto one shared coordinate. Endpoints are enumerated as the start
// then the end of each road in order; each cluster is represented by its
// first member in that enumeration. Interior vertices are left untouched
// and the input is not modified.
//
// Roads with fewer than two points are rejected with INVALID_GEOMETRY.
func Reconcile(roads []orb.LineString, opts ReconcileOptions) ([]orb.LineString, ReconcileReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	linkage, err := ParseLinkage(string(opts.Linkage))
	if err != nil {
		return nil, ReconcileReport{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reconcile")
	}
	if err := validateRoads(roads); err != nil {
		return nil, ReconcileReport{}, err
	}

	ends := make([]orb.Point, 0, 2*len(roads))
	for _, r := range roads {
		ends = append(ends, r[0], r[len(r)-1])
	}

	rep := make([]int, len(ends))
	for i := range rep {
		rep[i] = i
	}
	clusters := 0
	for _, group := range neighbourhoods(ends, opts.Threshold) {
		if len(group) == 1 {
			clusters++
			continue
		}
		pts := make([]orb.Point, len(group))
		for i, idx := range group {
			pts[i] = ends[idx]
		}
		for _, members := range agglomerate(pts, opts.Threshold, linkage) {
			clusters++
			first := group[members[0]]
			for _, m := range members {
				rep[group[m]] = first
			}
		}
	}

	report := ReconcileReport{Endpoints: len(ends), Clusters: clusters}
	out := make([]orb.LineString, len(roads))
	for i, r := range roads {
		c := slices.Clone(r)
		c[0] = ends[rep[2*i]]
		c[len(c)-1] = ends[rep[2*i+1]]
		if c[0] != r[0] {
			report.Moved++
		}
		if c[len(c)-1] != r[len(r)-1] {
			report.Moved++
		}
		out[i] = c
	}

	logger.Debug("reconciled junctions",
		"endpoints", report.Endpoints,
		"clusters", report.Clusters,
		"moved", report.Moved,
		"linkage", linkage)
	return out, report, nil
}

func validateRoads(roads []orb.LineString) error {
	for i, r := range roads {
		if len(r) < 2 {
			return errors.New(errors.ErrCodeInvalidGeometry, "road %d has %d points, need at least 2", i, len(r))
		}
	}
	return nil
}
