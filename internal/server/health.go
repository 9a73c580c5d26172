package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthChecker serves the liveness and readiness probes.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker returns a checker that starts out ready.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{serverContext: sc, startTime: time.Now()}
	h.ready.Store(true)
	return h
}

func (h *HealthChecker) SetReady(ready bool) { h.ready.Store(ready) }

func (h *HealthChecker) IsReady() bool { return h.ready.Load() }

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime,omitempty"`
	Stats   *RuntimeStats     `json:"stats,omitempty"`
}

// RuntimeStats reports the state of the shared collaborators.
type RuntimeStats struct {
	CachedCommands int  `json:"cached_commands"`
	Subscribers    int  `json:"subscribers"`
	TypedClient    bool `json:"typed_client"`
}

// LivenessHandler answers /healthz. Responding at all means the process is alive.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status: "ok",
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		}
		if h.serverContext != nil && h.serverContext.Config() != nil {
			response.Version = h.serverContext.Config().Version
		}
		writeHealth(w, http.StatusOK, response)
	})
}

// ReadinessHandler answers /readyz. A missing typed client does not fail the
// probe since every operation can still take the command path.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{Status: "ok", Checks: map[string]string{}}
		check := func(name string, ok bool, failure string) {
			if ok {
				response.Checks[name] = "ok"
				return
			}
			response.Checks[name] = failure
			response.Status = "not ready"
		}

		check("ready", h.ready.Load(), "not ready")
		if sc := h.serverContext; sc != nil {
			check("shutdown", !sc.IsShutdown(), "shutting down")
			if sc.Clientset() != nil {
				response.Checks["kubernetes_client"] = "ok"
			} else {
				response.Checks["kubernetes_client"] = "unavailable (command fallback)"
			}
			if provider := sc.InstrumentationProvider(); provider != nil {
				response.Checks["instrumentation"] = "disabled"
				if provider.Enabled() {
					response.Checks["instrumentation"] = "ok"
				}
			}
			response.Stats = h.stats()
		}

		status := http.StatusOK
		if response.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, status, response)
	})
}

func writeHealth(w http.ResponseWriter, status int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func (h *HealthChecker) stats() *RuntimeStats {
	sc := h.serverContext
	stats := &RuntimeStats{TypedClient: sc.Clientset() != nil}
	if exec := sc.Executor(); exec != nil {
		stats.CachedCommands = exec.CacheLen()
	}
	if bus := sc.EventBus(); bus != nil {
		stats.Subscribers = bus.SubscriberCount()
	}
	return stats
}

// RegisterHealthEndpoints mounts /healthz and /readyz on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
}
