// Package config loads the planner configuration.
//
// Configuration is an explicit [Config] value threaded into every component
// that needs it; there is no package-level state. [Load] layers, from lowest
// to highest precedence: built-in defaults, an optional config file
// (heralds.yaml or heralds.toml), and HERALDS_* environment variables, where
// HERALDS_PLANNER_JUNCTION_MERGE_THRESHOLD overrides
// planner.junction_merge_threshold.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/heralds-project/heralds/pkg/errors"
	"github.com/heralds-project/heralds/pkg/roads"
)

// Default planner values.
const (
	// DefaultJunctionMergeThreshold is the endpoint merge distance in
	// degrees, about 10 m at mid latitudes.
	DefaultJunctionMergeThreshold = 0.0001

	// DefaultDangerPolygonRatio scales the effective radius into the
	// radius of the no-entrance zone.
	DefaultDangerPolygonRatio = 0.25

	// DefaultMapEdgeBuffer is the half-width, in degrees, of the band
	// along the map boundary treated as the outside world.
	DefaultMapEdgeBuffer = 0.0006

	DefaultCircleResolution = 60
)

// Config holds all application configuration.
type Config struct {
	Planner PlannerConfig `mapstructure:"planner"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Server  ServerConfig  `mapstructure:"server"`
}

// PlannerConfig holds the algorithm parameters.
type PlannerConfig struct {
	JunctionMergeThreshold float64 `mapstructure:"junction_merge_threshold" json:"junction_merge_threshold"`
	DangerPolygonRatio     float64 `mapstructure:"danger_polygon_ratio" json:"danger_polygon_ratio"`
	NearbyFactor           float64 `mapstructure:"nearby_factor" json:"nearby_factor"`
	MapEdgeBuffer          float64 `mapstructure:"map_edge_buffer" json:"map_edge_buffer"`
	Linkage                string  `mapstructure:"linkage" json:"linkage"`
	CircleResolution       int     `mapstructure:"circle_resolution" json:"circle_resolution"`
}

// CacheConfig selects where built road networks are cached.
type CacheConfig struct {
	Backend   string `mapstructure:"backend"` // file, redis or none
	Dir       string `mapstructure:"dir"`     // file backend root; empty means the user cache dir
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	TTLHours  int    `mapstructure:"ttl_hours"`
}

// ArchiveConfig selects where finished plans are archived.
type ArchiveConfig struct {
	Backend    string `mapstructure:"backend"` // none, file or mongo
	Dir        string `mapstructure:"dir"`
	MongoURI   string `mapstructure:"mongo_uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `mapstructure:"addr"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Planner: DefaultPlanner(),
		Cache:   CacheConfig{Backend: "file", RedisAddr: "localhost:6379", TTLHours: 24 * 7},
		Archive: ArchiveConfig{Backend: "none", Database: "heralds", Collection: "plans"},
		Server:  ServerConfig{Addr: ":8080", ReadTimeout: 30, WriteTimeout: 120},
	}
}

// DefaultPlanner returns the built-in algorithm parameters.
func DefaultPlanner() PlannerConfig {
	return PlannerConfig{
		JunctionMergeThreshold: DefaultJunctionMergeThreshold,
		DangerPolygonRatio:     DefaultDangerPolygonRatio,
		NearbyFactor:           roads.DefaultNearbyFactor,
		MapEdgeBuffer:          DefaultMapEdgeBuffer,
		Linkage:                string(roads.DefaultLinkage),
		CircleResolution:       DefaultCircleResolution,
	}
}

// Load reads configuration from defaults, an optional file and the
// environment. A non-empty path names the config file explicitly, and it
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
	} else {
		v.SetConfigName("heralds")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		_ = v.ReadInConfig() // OK if missing
	}

	// Environment variables: HERALDS_CACHE_BACKEND → cache.backend
	v.SetEnvPrefix("HERALDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("planner.junction_merge_threshold", d.Planner.JunctionMergeThreshold)
	v.SetDefault("planner.danger_polygon_ratio", d.Planner.DangerPolygonRatio)
	v.SetDefault("planner.nearby_factor", d.Planner.NearbyFactor)
	v.SetDefault("planner.map_edge_buffer", d.Planner.MapEdgeBuffer)
	v.SetDefault("planner.linkage", d.Planner.Linkage)
	v.SetDefault("planner.circle_resolution", d.Planner.CircleResolution)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.redis_db", d.Cache.RedisDB)
	v.SetDefault("cache.ttl_hours", d.Cache.TTLHours)
	v.SetDefault("archive.backend", d.Archive.Backend)
	v.SetDefault("archive.dir", d.Archive.Dir)
	v.SetDefault("archive.mongo_uri", d.Archive.MongoURI)
	v.SetDefault("archive.database", d.Archive.Database)
	v.SetDefault("archive.collection", d.Archive.Collection)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
}

// Validate checks that configuration values are present and sane.
func (c *Config) Validate() error {
	errs := c.Planner.problems()

	switch c.Cache.Backend {
	case "none", "file":
	case "redis":
		if c.Cache.RedisAddr == "" {
			errs = append(errs, "cache.redis_addr is required for the redis backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be one of file, redis, none, got %q", c.Cache.Backend))
	}
	if c.Cache.TTLHours <= 0 {
		errs = append(errs, "cache.ttl_hours must be positive")
	}

	switch c.Archive.Backend {
	case "none":
	case "file":
		if c.Archive.Dir == "" {
			errs = append(errs, "archive.dir is required for the file backend")
		}
	case "mongo":
		if c.Archive.MongoURI == "" {
			errs = append(errs, "archive.mongo_uri is required for the mongo backend")
		}
		if c.Archive.Database == "" || c.Archive.Collection == "" {
			errs = append(errs, "archive.database and archive.collection are required for the mongo backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("archive.backend must be one of none, file, mongo, got %q", c.Archive.Backend))
	}

	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	return joinProblems(errs)
}

// Validate checks the algorithm parameters on their own, as for per-run
// overrides.
func (p PlannerConfig) Validate() error { return joinProblems(p.problems()) }

func (p PlannerConfig) problems() []string {
	var errs []string
	if p.JunctionMergeThreshold < 0 {
		errs = append(errs, fmt.Sprintf("planner.junction_merge_threshold must not be negative, got %g", p.JunctionMergeThreshold))
	}
	if err := errors.ValidateRatio("planner.danger_polygon_ratio", p.DangerPolygonRatio); err != nil {
		errs = append(errs, errors.UserMessage(err))
	}
	if err := errors.ValidatePositive("planner.nearby_factor", p.NearbyFactor); err != nil {
		errs = append(errs, errors.UserMessage(err))
	}
	if p.MapEdgeBuffer < 0 {
		errs = append(errs, fmt.Sprintf("planner.map_edge_buffer must not be negative, got %g", p.MapEdgeBuffer))
	}
	if _, err := roads.ParseLinkage(p.Linkage); err != nil {
		errs = append(errs, "planner."+err.Error())
	}
	if p.CircleResolution < 3 {
		errs = append(errs, fmt.Sprintf("planner.circle_resolution must be at least 3, got %d", p.CircleResolution))
	}
	return errs
}

func joinProblems(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidConfig, "config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
}
