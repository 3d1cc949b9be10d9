// AngelaMos | 2026
// handler.go

// Package health serves the liveness and readiness probes. Liveness only
// reports process state; readiness additionally pings postgres and redis.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const probeTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db       Checker
	redis    Checker
	started  time.Time
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(db, redis Checker) *Handler {
	h := &Handler{
		db:      db,
		redis:   redis,
		started: time.Now(),
	}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// SetReady flips the readiness gate; the server clears it before draining.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.write(w, http.StatusServiceUnavailable, livenessBody{
			Status: "shutting_down",
			Uptime: time.Since(h.started).Round(time.Second).String(),
		})
		return
	}

	h.write(w, http.StatusOK, livenessBody{
		Status: "ok",
		Uptime: time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch {
	case h.shutdown.Load():
		h.write(w, http.StatusServiceUnavailable, readinessBody{
			Status: "shutting_down",
		})
		return
	case !h.ready.Load():
		h.write(w, http.StatusServiceUnavailable, readinessBody{
			Status: "not_ready",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	checks := []dependencyCheck{
		h.check(ctx, "postgres", h.db),
		h.check(ctx, "redis", h.redis),
	}

	status, code := "ok", http.StatusOK
	for _, c := range checks {
		if !c.Healthy {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	h.write(w, code, readinessBody{Status: status, Checks: checks})
}

func (h *Handler) check(
	ctx context.Context,
	name string,
	dep Checker,
) dependencyCheck {
	if dep == nil {
		return dependencyCheck{
			Name:    name,
			Message: "checker not configured",
		}
	}

	start := time.Now()
	err := dep.Ping(ctx)
	result := dependencyCheck{
		Name:    name,
		Healthy: err == nil,
		Latency: time.Since(start).String(),
	}
	if err != nil {
		result.Message = "ping failed"
	}
	return result
}

func (h *Handler) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(body)
}

type livenessBody struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

type readinessBody struct {
	Status string            `json:"status"`
	Checks []dependencyCheck `json:"checks,omitempty"`
}

type dependencyCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
