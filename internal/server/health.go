package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/giantswarm/mcp-kong/internal/analytics"
	"github.com/giantswarm/mcp-kong/internal/logging"
)

// DefaultProbeTimeout bounds the Admin API calls made by readiness and
// detailed health checks.
const DefaultProbeTimeout = 2 * time.Second

// HealthChecker provides health check endpoints for container probes.
type HealthChecker struct {
	// ready indicates whether the server is ready to receive traffic
	ready atomic.Bool
	// serverContext provides access to dependencies for health checks
	serverContext *ServerContext
	// startTime tracks when the server started
	startTime time.Time
	// probeTimeout bounds each Admin API probe
	probeTimeout time.Duration
}

// NewHealthChecker creates a new HealthChecker.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
		probeTimeout:  DefaultProbeTimeout,
	}
	// Server starts as ready by default
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// SetProbeTimeout overrides DefaultProbeTimeout.
func (h *HealthChecker) SetProbeTimeout(d time.Duration) {
	if d > 0 {
		h.probeTimeout = d
	}
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Version string            `json:"version,omitempty"`
}

// DetailedHealthResponse provides comprehensive health information including
// the Admin API's own health report.
type DetailedHealthResponse struct {
	Status          string                      `json:"status"`
	Transport       string                      `json:"transport"`
	Version         string                      `json:"version,omitempty"`
	Uptime          string                      `json:"uptime"`
	AdminAPI        *AdminAPIHealthStatus       `json:"admin_api,omitempty"`
	Instrumentation *InstrumentationHealthCheck `json:"instrumentation,omitempty"`
}

// AdminAPIHealthStatus describes the upstream Admin API connection.
type AdminAPIHealthStatus struct {
	Host          string                  `json:"host"`
	Authenticated bool                    `json:"authenticated"`
	Reachable     bool                    `json:"reachable"`
	Health        *analytics.HealthReport `json:"health,omitempty"`
	Error         string                  `json:"error,omitempty"`
}

// InstrumentationHealthCheck provides health information about instrumentation.
type InstrumentationHealthCheck struct {
	Enabled         bool   `json:"enabled"`
	MetricsExporter string `json:"metrics_exporter,omitempty"`
	TracingExporter string `json:"tracing_exporter,omitempty"`
}

// LivenessHandler returns an HTTP handler for the /healthz endpoint.
// Liveness only says the process is serving; it never calls the Admin API.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		response := HealthResponse{
			Status: "ok",
		}

		if h.serverContext != nil && h.serverContext.Config() != nil {
			response.Version = h.serverContext.Config().Version
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// ReadinessHandler returns an HTTP handler for the /readyz endpoint.
// The server is ready when it is marked ready, not shutting down, and the
// Admin API answers /status within the probe timeout.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		checks := make(map[string]string)
		allOk := true

		if !h.ready.Load() {
			checks["ready"] = "not ready"
			allOk = false
		} else {
			checks["ready"] = "ok"
		}

		if h.serverContext != nil && h.serverContext.IsShutdown() {
			checks["shutdown"] = "shutting down"
			allOk = false
		} else {
			checks["shutdown"] = "ok"
		}

		if h.serverContext != nil {
			if err := h.probeAdminAPI(r.Context()); err != nil {
				checks["admin_api"] = "unreachable"
				allOk = false
			} else {
				checks["admin_api"] = "ok"
			}

			if provider := h.serverContext.InstrumentationProvider(); provider != nil {
				if provider.Enabled() {
					checks["instrumentation"] = "ok"
				} else {
					checks["instrumentation"] = "disabled"
				}
			}
		}

		response := HealthResponse{
			Checks: checks,
		}

		if allOk {
			response.Status = "ok"
			w.WriteHeader(http.StatusOK)
		} else {
			response.Status = "not ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

func (h *HealthChecker) probeAdminAPI(ctx context.Context) error {
	client := h.serverContext.AdminClient()
	if client == nil {
		return ErrMissingAdminClient
	}

	ctx, cancel := context.WithTimeout(ctx, h.probeTimeout)
	defer cancel()

	_, err := client.GetStatus(ctx)
	if err != nil {
		h.serverContext.Logger().Debug("admin API probe failed",
			logging.Operation("readiness"),
			logging.SanitizedErr(err))
	}
	return err
}

// RegisterHealthEndpoints registers health check endpoints on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

// DetailedHealthHandler returns an HTTP handler for the /healthz/detailed endpoint.
// An unreachable Admin API is reported in the body but does not change the
// status code; that is what /readyz is for.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		response := DetailedHealthResponse{
			Status:    "ok",
			Transport: "unknown",
			Uptime:    time.Since(h.startTime).Truncate(time.Second).String(),
		}

		if h.serverContext != nil {
			if cfg := h.serverContext.Config(); cfg != nil {
				response.Version = cfg.Version
				response.Transport = cfg.Transport
			}
			response.AdminAPI = h.getAdminAPIStatus(r.Context())
			response.Instrumentation = h.getInstrumentationStatus()
		}

		if !h.ready.Load() {
			response.Status = "not ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		} else if h.serverContext != nil && h.serverContext.IsShutdown() {
			response.Status = "shutting down"
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// getAdminAPIStatus fetches the Admin API health report.
func (h *HealthChecker) getAdminAPIStatus(ctx context.Context) *AdminAPIHealthStatus {
	client := h.serverContext.AdminClient()
	if client == nil {
		return nil
	}
	status := &AdminAPIHealthStatus{
		Host:          logging.SanitizeHost(client.BaseURL()),
		Authenticated: client.HasToken(),
	}

	ctx, cancel := context.WithTimeout(ctx, h.probeTimeout)
	defer cancel()

	report, err := analytics.Health(ctx, client)
	if err != nil {
		status.Error = logging.SanitizeHost(err.Error())
		return status
	}
	status.Reachable = true
	status.Health = report
	return status
}

// getInstrumentationStatus returns instrumentation health status.
func (h *HealthChecker) getInstrumentationStatus() *InstrumentationHealthCheck {
	provider := h.serverContext.InstrumentationProvider()
	if provider == nil || !provider.Enabled() {
		return &InstrumentationHealthCheck{
			Enabled: false,
		}
	}

	cfg := provider.Config()
	return &InstrumentationHealthCheck{
		Enabled:         true,
		MetricsExporter: cfg.MetricsExporter,
		TracingExporter: cfg.TracingExporter,
	}
}
