// Package api serves plan computation over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness
//	GET  /metrics          Prometheus metrics
//	POST /v1/plans         plan a scenario sent in the request body
//	GET  /v1/plans         list archived plans (?scenario=&limit=)
//	GET  /v1/plans/{id}    fetch an archived plan
//
// The archive routes answer 404 when no archive is configured.
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heralds-project/heralds/pkg/config"
	"github.com/heralds-project/heralds/pkg/observability"
	"github.com/heralds-project/heralds/pkg/pipeline"
	"github.com/heralds-project/heralds/pkg/store"
)

// maxBodyBytes bounds plan request bodies.
const maxBodyBytes = 32 << 20

// Options configures [New].
type Options struct {
	// Runner executes plans. Required.
	Runner *pipeline.Runner
	// Store archives finished plans. Nil disables archiving.
	Store store.Store
	// Planner supplies parameters scenarios do not override.
	Planner config.PlannerConfig
	// Gatherer backs /metrics. Nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// Handler holds the dependencies of the HTTP routes.
type Handler struct {
	runner  *pipeline.Runner
	store   store.Store
	planner config.PlannerConfig
	logger  *log.Logger
}

// New returns the HTTP handler of the API.
func New(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	h := &Handler{
		runner:  opts.Runner,
		store:   opts.Store,
		planner: opts.Planner,
		logger:  opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1/plans", func(r chi.Router) {
		r.Post("/", h.handleCreatePlan)
		r.Get("/", h.handleListPlans)
		r.Get("/{id}", h.handleGetPlan)
	})
	return r
}

// instrument logs each request and reports it to the HTTP hooks under its
// route pattern.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, elapsed)
		h.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
