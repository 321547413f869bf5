package rest

import (
	"context"
	"net/http"
	"time"
)

const checkTimeout = 3 * time.Second

// pinger is anything the service depends on that can be pinged.
type pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a checked component in health responses.
type Dependency struct {
	Name   string
	Pinger pinger
}

// HealthHandler serves the liveness, readiness and health endpoints.
type HealthHandler struct {
	deps    []Dependency
	version string
}

// NewHealthHandler checks deps in the order given.
func NewHealthHandler(version string, deps ...Dependency) *HealthHandler {
	return &HealthHandler{deps: deps, version: version}
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]componentStatus `json:"components,omitempty"`
	Timestamp  time.Time                  `json:"timestamp"`
}

type componentStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Live always answers 200 while the process serves HTTP.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready answers 503 when any dependency is down. Claims cannot be submitted
// without the document store, so it gates readiness like the database does.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	_, ok := h.check(r.Context())
	status := http.StatusOK
	resp := healthResponse{Status: "ok", Timestamp: time.Now()}
	if !ok {
		status, resp.Status = http.StatusServiceUnavailable, "down"
	}
	writeJSON(w, status, resp)
}

// Health reports every dependency with its ping latency.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components, ok := h.check(r.Context())
	status := http.StatusOK
	resp := healthResponse{
		Status:     "ok",
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	}
	if !ok {
		status, resp.Status = http.StatusServiceUnavailable, "down"
	}
	writeJSON(w, status, resp)
}

func (h *HealthHandler) check(ctx context.Context) (map[string]componentStatus, bool) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	components := make(map[string]componentStatus, len(h.deps))
	healthy := true
	for _, d := range h.deps {
		start := time.Now()
		if err := d.Pinger.Ping(ctx); err != nil {
			components[d.Name] = componentStatus{Status: "down", Error: err.Error()}
			healthy = false
			continue
		}
		components[d.Name] = componentStatus{Status: "ok", Latency: time.Since(start).String()}
	}
	return components, healthy
}
