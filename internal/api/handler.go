// Package api exposes the ledger over JSON/HTTP.
package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/splitledger/internal/service"
)

const (
	serviceName  = "splitledger"
	maxBodyBytes = 1 << 20
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler serves the REST endpoints.
type Handler struct {
	groups   *service.GroupService
	expenses *service.ExpenseService
	health   HealthChecker
	version  string
	now      func() time.Time
}

// NewHandler creates a Handler. health may be nil, in which case the health
// endpoint reports healthy without probing anything.
func NewHandler(groups *service.GroupService, expenses *service.ExpenseService, health HealthChecker, version string) *Handler {
	return &Handler{
		groups:   groups,
		expenses: expenses,
		health:   health,
		version:  version,
		now:      time.Now,
	}
}

// urlParam returns a decoded chi path parameter. chi routes on RawPath when
// it is set, leaving parameters escaped; otherwise they are already decoded
// and must not be unescaped again.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

// Health reports service liveness and store reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"status":    "healthy",
		"service":   serviceName,
		"version":   h.version,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	}

	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			resp["status"] = "unhealthy"
			resp["error"] = "database unreachable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
