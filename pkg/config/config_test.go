package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heralds-project/heralds/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Equal(t, "ward", Default().Planner.Linkage)
	assert.Equal(t, 2.0, Default().Planner.NearbyFactor)
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HERALDS_PLANNER_DANGER_POLYGON_RATIO", "0.5")
	t.Setenv("HERALDS_CACHE_BACKEND", "none")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Planner.DangerPolygonRatio)
	assert.Equal(t, "none", cfg.Cache.Backend)
	assert.Equal(t, DefaultJunctionMergeThreshold, cfg.Planner.JunctionMergeThreshold)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"heralds.yaml", "planner:\n  junction_merge_threshold: 0.0002\n  linkage: single\n"},
		{"heralds.toml", "[planner]\njunction_merge_threshold = 0.0002\nlinkage = \"single\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 0.0002, cfg.Planner.JunctionMergeThreshold)
			assert.Equal(t, "single", cfg.Planner.Linkage)
			assert.Equal(t, DefaultMapEdgeBuffer, cfg.Planner.MapEdgeBuffer)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Planner.DangerPolygonRatio = 1.5
	cfg.Planner.Linkage = "median"
	cfg.Planner.CircleResolution = 2
	cfg.Cache.Backend = "memcached"
	cfg.Archive.Backend = "mongo"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
	msg := err.Error()
	for _, want := range []string{
		"planner.danger_polygon_ratio",
		"planner.unknown linkage",
		"planner.circle_resolution",
		"cache.backend",
		"archive.mongo_uri",
	} {
		assert.True(t, strings.Contains(msg, want), "missing %q in:\n%s", want, msg)
	}
}

func TestPlannerValidate(t *testing.T) {
	p := DefaultPlanner()
	require.NoError(t, p.Validate())

	p.JunctionMergeThreshold = -1
	assert.Error(t, p.Validate())

	p = DefaultPlanner()
	p.JunctionMergeThreshold = 0
	assert.NoError(t, p.Validate(), "zero threshold disables merging")
}
