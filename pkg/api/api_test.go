package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heralds-project/heralds/pkg/config"
	"github.com/heralds-project/heralds/pkg/observability"
	"github.com/heralds-project/heralds/pkg/pipeline"
	"github.com/heralds-project/heralds/pkg/store"
)

// planBody is a U of roads around a patient at (35.0, 32.0) with one road
// leaving the square perimeter eastward towards a village. Roads use the
// legacy [lat, lon] layout.
const planBody = `{
  "scenario": {
    "name": "u-shape",
    "patient_location_type": "absolute",
    "patient_location_south": 32.0,
    "patient_location_west": 35.0,
    "patient_contagion_radius": 500,
    "patient_effective_radius": 3600
  },
  "roads": [
    [[31.995, 34.995], [31.995, 35.005]],
    [[31.995, 35.005], [32.005, 35.005]],
    [[32.005, 35.005], [32.005, 35.02]]
  ],
  "bounds": {"south": 31.97, "west": 34.97, "north": 32.03, "east": 35.03},
  "perimeter": {"type": "FeatureCollection", "features": [{"type": "Feature", "properties": {},
    "geometry": {"type": "Polygon", "coordinates": [[[34.99, 31.99], [35.01, 31.99], [35.01, 32.01], [34.99, 32.01], [34.99, 31.99]]]}}]},
  "villages": {"type": "FeatureCollection", "features": [{"type": "Feature", "properties": {},
    "geometry": {"type": "Polygon", "coordinates": [[[35.018, 32.003], [35.022, 32.003], [35.022, 32.007], [35.018, 32.007], [35.018, 32.003]]]}}]},
  "formats": ["json", "geojson"]
}`

func newServer(t *testing.T, s store.Store, gatherer prometheus.Gatherer) *httptest.Server {
	t.Helper()
	h := New(Options{
		Runner:   pipeline.NewRunner(nil, nil, nil),
		Store:    s,
		Planner:  config.DefaultPlanner(),
		Gatherer: gatherer,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	srv := newServer(t, nil, nil)
	status, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateAndFetchPlan(t *testing.T) {
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	srv := newServer(t, s, nil)

	status, body := do(t, http.MethodPost, srv.URL+"/v1/plans", planBody)
	require.Equal(t, http.StatusCreated, status, "body: %v", body)

	id, _ := body["run_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "u-shape", body["scenario"])
	assert.Equal(t, true, body["archived"])
	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, 4, summary["junctions"])
	assert.EqualValues(t, 3, summary["edges"])
	artifacts := body["artifacts"].(map[string]any)
	assert.Contains(t, artifacts, "geojson")
	assert.NotContains(t, artifacts, "json", "the plan is already in the response")

	status, rec := do(t, http.MethodGet, srv.URL+"/v1/plans/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, rec["id"])

	status, list := do(t, http.MethodGet, srv.URL+"/v1/plans?scenario=u-shape&limit=5", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list["plans"], 1)

	status, _ = do(t, http.MethodGet, srv.URL+"/v1/plans/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, http.MethodGet, srv.URL+"/v1/plans/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, http.MethodGet, srv.URL+"/v1/plans?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreatePlanRejectsBadInput(t *testing.T) {
	srv := newServer(t, nil, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"scenario":`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"no roads", `{"scenario": {"name": "x", "patient_location_type": "absolute", "patient_effective_radius": 10},
			"bounds": {"south": 0, "west": 0, "north": 1, "east": 1}}`, http.StatusUnprocessableEntity, "INVALID_INPUT"},
		{"bad location type", strings.Replace(planBody, `"absolute"`, `"nearby"`, 1), http.StatusUnprocessableEntity, "INVALID_SCENARIO"},
		{"bad bounds", strings.Replace(planBody, `"north": 32.03`, `"north": 31.0`, 1), http.StatusUnprocessableEntity, "INVALID_GEOMETRY"},
		{"bad format", strings.Replace(planBody, `"geojson"]`, `"png"]`, 1), http.StatusUnprocessableEntity, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, http.MethodPost, srv.URL+"/v1/plans", tt.body)
			assert.Equal(t, tt.status, status)
			e := body["error"].(map[string]any)
			assert.Equal(t, tt.code, e["code"])
		})
	}
}

func TestArchiveRoutesWithoutStore(t *testing.T) {
	srv := newServer(t, nil, nil)
	status, _ := do(t, http.MethodGet, srv.URL+"/v1/plans", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := do(t, http.MethodPost, srv.URL+"/v1/plans", planBody)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, false, body["archived"])
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.SetHTTPHooks(observability.NewPrometheus(reg))
	t.Cleanup(observability.Reset)

	srv := newServer(t, nil, reg)
	do(t, http.MethodGet, srv.URL+"/healthz", "")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `heralds_http_request_duration_seconds_count{method="GET",route="/healthz",status="200"} 1`)
}
