package pipeline

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/heralds-project/heralds/pkg/config"
	"github.com/heralds-project/heralds/pkg/network"
	"github.com/heralds-project/heralds/pkg/roads"
)

// NetworkReport gathers the reports of the network stage.
type NetworkReport struct {
	Reconcile roads.ReconcileReport `json:"reconcile"`
	Planarize roads.PlanarizeReport `json:"planarize"`
	Build     network.BuildStats    `json:"build"`
}

// BuildNetwork turns raw roads into a planar road graph: endpoints are
// reconciled into shared junctions, roads are split at their intersections,
// and the atomic pieces become edges.
func BuildNetwork(ctx context.Context, rs []orb.LineString, p config.PlannerConfig, logger *log.Logger) (*network.Graph, NetworkReport, error) {
	var report NetworkReport

	reconciled, rr, err := roads.Reconcile(rs, roads.ReconcileOptions{
		Threshold: p.JunctionMergeThreshold,
		Linkage:   roads.Linkage(p.Linkage),
		Logger:    logger,
	})
	report.Reconcile = rr
	if err != nil {
		return nil, report, fmt.Errorf("reconcile: %w", err)
	}

	pieces, pr, err := roads.Planarize(ctx, reconciled, roads.PlanarizeOptions{
		NearbyFactor: p.NearbyFactor,
		Logger:       logger,
	})
	report.Planarize = pr
	if err != nil {
		return nil, report, fmt.Errorf("planarize: %w", err)
	}

	g, bs, err := network.Build(pieces)
	report.Build = bs
	if err != nil {
		return nil, report, fmt.Errorf("build: %w", err)
	}
	if logger != nil {
		logger.Debug("built network",
			"junctions", g.NodeCount(),
			"edges", g.EdgeCount(),
			"merged_endpoints", rr.Moved,
			"split_points", pr.SplitPoints)
	}
	return g, report, nil
}
