package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/teemow/gdrivehelper/internal/tokenstore"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusUnreachable  = "unreachable"
)

// storePingTimeout bounds the token store check of a readiness probe.
const storePingTimeout = 2 * time.Second

// HealthChecker serves liveness and readiness probes for the HTTP transport.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker returns a HealthChecker that starts out ready. sc may be
// nil, in which case only the ready flag is checked.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
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

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime"`
	Accounts int               `json:"accounts"`
	Checks   map[string]string `json:"checks"`
}

// check runs the readiness checks. The first failing check decides the
// overall status.
func (h *HealthChecker) check(ctx context.Context) (string, map[string]string) {
	status := healthStatusOK
	checks := map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	fail := func(name, result string) {
		checks[name] = result
		if status == healthStatusOK {
			status = result
		}
	}

	if !h.ready.Load() {
		fail("ready", healthStatusNotReady)
	}
	if h.serverContext == nil {
		return status, checks
	}

	if h.serverContext.IsShutdown() {
		fail("shutdown", healthStatusShuttingDown)
		return status, checks
	}

	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()
	if err := tokenstore.Ping(ctx, h.serverContext.Store()); err != nil {
		fail("token_store", healthStatusUnreachable)
	} else {
		checks["token_store"] = healthStatusOK
	}
	return status, checks
}

// LivenessHandler answers /healthz. It only reports that the process runs.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers /readyz. Readiness fails while the server is
// draining, after shutdown, or when the token store cannot be reached.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, checks := h.check(r.Context())
		response := HealthResponse{Status: status, Checks: checks}
		if status != healthStatusOK {
			response.Status = healthStatusNotReady
		}
		writeHealth(w, statusCode(status), response)
	})
}

// DetailedHealthHandler answers /healthz/detailed with uptime and the number
// of accounts with active clients.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, checks := h.check(r.Context())
		response := DetailedHealthResponse{
			Status: status,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
			Checks: checks,
		}
		if h.serverContext != nil {
			response.Accounts = h.serverContext.Accounts()
		}
		writeHealth(w, statusCode(status), response)
	})
}

// RegisterHealthEndpoints registers the probe endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func statusCode(status string) int {
	if status == healthStatusOK {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
