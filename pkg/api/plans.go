package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heralds-project/heralds/pkg/errors"
	pkgio "github.com/heralds-project/heralds/pkg/io"
	"github.com/heralds-project/heralds/pkg/pipeline"
	"github.com/heralds-project/heralds/pkg/scenario"
	"github.com/heralds-project/heralds/pkg/store"
)

// planRequest carries a scenario and its data inline. Roads are a GeoJSON
// FeatureCollection of lines or, as in the legacy road files, a list of
// [lat, lon] point lists. Villages and Perimeter are optional GeoJSON
// FeatureCollections of polygons.
type planRequest struct {
	Scenario  scenario.Manifest `json:"scenario"`
	Roads     json.RawMessage   `json:"roads"`
	Bounds    scenario.Bounds   `json:"bounds"`
	Villages  json.RawMessage   `json:"villages,omitempty"`
	Perimeter json.RawMessage   `json:"perimeter,omitempty"`
	Formats   []string          `json:"formats,omitempty"`
	Refresh   bool              `json:"refresh,omitempty"`
}

type planResponse struct {
	RunID     string             `json:"run_id"`
	Scenario  string             `json:"scenario"`
	Cache     cacheResponse      `json:"cache"`
	Summary   store.Summary      `json:"summary"`
	Report    pipeline.Report    `json:"report"`
	Plan      pkgio.PlanDocument `json:"plan"`
	Artifacts map[string]string  `json:"artifacts,omitempty"`
	Archived  bool               `json:"archived"`
}

type cacheResponse struct {
	Network bool `json:"network"`
	Plan    bool `json:"plan"`
}

func (h *Handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidFormat, "invalid request body: "+err.Error())
		return
	}

	data, err := req.data()
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	sc, err := scenario.Build(&req.Scenario, data, h.planner)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	formats := make([]string, 0, len(req.Formats))
	for _, f := range req.Formats {
		if f != pipeline.FormatJSON {
			formats = append(formats, f)
		}
	}
	result, err := h.runner.Execute(r.Context(), pipeline.Options{
		Scenario: sc,
		Formats:  formats,
		Refresh:  req.Refresh,
	})
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	rec := store.NewRecord(result)
	resp := planResponse{
		RunID:    result.RunID,
		Scenario: result.Scenario,
		Cache:    cacheResponse{Network: result.CacheInfo.NetworkHit, Plan: result.CacheInfo.PlanHit},
		Summary:  rec.Summary,
		Report:   result.Report,
		Plan:     rec.Plan,
	}
	if len(result.Artifacts) > 0 {
		resp.Artifacts = make(map[string]string, len(result.Artifacts))
		for f, b := range result.Artifacts {
			resp.Artifacts[f] = string(b)
		}
	}
	if h.store != nil {
		if err := h.store.Put(r.Context(), rec); err != nil {
			h.logger.Warn("archive failed", "run", result.RunID, "err", err)
		} else {
			resp.Archived = true
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// data decodes the inline geographic data of a request.
func (req *planRequest) data() (scenario.Data, error) {
	d := scenario.Data{Bounds: req.Bounds}
	if len(req.Roads) == 0 {
		return d, errors.New(errors.ErrCodeInvalidInput, "roads are required")
	}

	var err error
	if bytes.HasPrefix(bytes.TrimSpace(req.Roads), []byte("[")) {
		d.Roads, err = scenario.DecodeLegacyRoads(req.Roads)
	} else {
		d.Roads, err = scenario.DecodeRoadsGeoJSON(req.Roads)
	}
	if err != nil {
		return d, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode roads")
	}

	if len(req.Villages) > 0 {
		if d.Villages, err = scenario.DecodePolygonsGeoJSON(req.Villages); err != nil {
			return d, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode villages")
		}
	}
	if len(req.Perimeter) > 0 {
		if d.Perimeter, err = scenario.DecodePerimeterGeoJSON(req.Perimeter); err != nil {
			return d, err
		}
	}
	return d, nil
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "no archive configured")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := h.store.Get(r.Context(), id)
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "plan "+id+" not found")
	case err != nil:
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error())
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

type listEntry struct {
	ID       string        `json:"id"`
	Scenario string        `json:"scenario"`
	Created  string        `json:"created_at"`
	Summary  store.Summary `json:"summary"`
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "no archive configured")
		return
	}
	q := r.URL.Query()
	limit := 50
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	recs, err := h.store.List(r.Context(), q.Get("scenario"), limit)
	if err != nil {
		h.logger.Error("list plans", "err", err)
		writeError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "internal error")
		return
	}
	out := make([]listEntry, len(recs))
	for i, rec := range recs {
		out[i] = listEntry{
			ID:       rec.ID,
			Scenario: rec.Scenario,
			Created:  rec.CreatedAt.Format(time.RFC3339),
			Summary:  rec.Summary,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": out})
}
