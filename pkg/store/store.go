// Package store archives finished plans.
//
// Each successful run can be recorded under its run id together with the
// plan, the blocking report and a summary of its statistics. Two backends
// are provided:
//   - file: one JSON document per run in a local directory
//   - mongo: a MongoDB collection, for servers shared by several instances
//
// # Usage
//
//	s, err := store.NewFileStore("")  // Uses ~/.local/share/heralds/plans/
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if err := s.Put(ctx, store.NewRecord(result)); err != nil {
//	    return err
//	}
//	rec, err := s.Get(ctx, result.RunID)
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heralds-project/heralds/pkg/blocking"
	"github.com/heralds-project/heralds/pkg/config"
	pkgio "github.com/heralds-project/heralds/pkg/io"
	"github.com/heralds-project/heralds/pkg/pipeline"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("not found")

// Record is an archived run.
type Record struct {
	ID          string             `json:"id" bson:"_id"`
	Scenario    string             `json:"scenario" bson:"scenario"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	NetworkHash string             `json:"network_hash" bson:"network_hash"`
	Summary     Summary            `json:"summary" bson:"summary"`
	Report      blocking.Report    `json:"report" bson:"report"`
	Plan        pkgio.PlanDocument `json:"plan" bson:"plan"`
}

// Summary holds the headline numbers of a run.
type Summary struct {
	Junctions int `json:"junctions" bson:"junctions"`
	Edges     int `json:"edges" bson:"edges"`
	Kept      int `json:"kept" bson:"kept"`
	Filtered  int `json:"filtered" bson:"filtered"`
	Markers   int `json:"markers" bson:"markers"`
}

// NewRecord builds the archive record of a finished run.
func NewRecord(r *pipeline.Result) *Record {
	return &Record{
		ID:          r.RunID,
		Scenario:    r.Scenario,
		CreatedAt:   time.Now().UTC(),
		NetworkHash: r.NetworkHash,
		Summary: Summary{
			Junctions: r.Stats.NodeCount,
			Edges:     r.Stats.EdgeCount,
			Kept:      r.Stats.Kept,
			Filtered:  r.Stats.Filtered,
			Markers:   r.Stats.Markers,
		},
		Report: r.Report.Blocking,
		Plan:   pkgio.NewPlanDocument(r.Plan),
	}
}

// Store is the interface for plan archives. Implementations are safe for
// concurrent use.
type Store interface {
	// Put stores a record, replacing any record with the same id.
	Put(ctx context.Context, rec *Record) error

	// Get retrieves a record by id. It returns ErrNotFound if there is none.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns the most recent records first. An empty scenario lists
	// every scenario; a non-positive limit lists everything.
	List(ctx context.Context, scenario string, limit int) ([]*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// Open creates the archive selected by cfg. It returns nil, nil for the
// "none" backend.
func Open(ctx context.Context, cfg config.ArchiveConfig) (Store, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "file":
		return NewFileStore(cfg.Dir)
	case "mongo":
		return NewMongoStore(ctx, MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}
