package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	running       *prometheus.GaugeVec
	crossings     *prometheus.CounterVec
	markers       prometheus.Counter
	cacheLookups  *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheus registers the heralds collectors with reg. Pass a fresh
// registry in tests; registering twice on the same registry panics.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "heralds_stage_duration_seconds",
			Help:    "Planning stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "heralds_stage_errors_total",
			Help: "Planning stage failures by stage",
		}, []string{"stage"}),
		running: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "heralds_stages_running",
			Help: "Planning stages currently running",
		}, []string{"stage"}),
		crossings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "heralds_crossings_total",
			Help: "Audited crossing edges by decision",
		}, []string{"decision"}),
		markers: f.NewCounter(prometheus.CounterOpts{
			Name: "heralds_markers_total",
			Help: "Markers relocated onto the perimeter boundary",
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "heralds_cache_lookups_total",
			Help: "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "heralds_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "heralds_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (p *Prometheus) OnStageStart(_ context.Context, _, stage string) {
	p.running.WithLabelValues(stage).Inc()
}

func (p *Prometheus) OnStageComplete(_ context.Context, _, stage string, d time.Duration, err error) {
	p.running.WithLabelValues(stage).Dec()
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		p.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (p *Prometheus) OnPlanComplete(_ context.Context, _ string, kept, filtered, markers int) {
	p.crossings.WithLabelValues("kept").Add(float64(kept))
	p.crossings.WithLabelValues("filtered").Add(float64(filtered))
	p.markers.Add(float64(markers))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
