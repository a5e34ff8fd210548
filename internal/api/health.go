package api

import (
	"net/http"
	"sync/atomic"

	"github.com/keepsakelabs/keepsake-memory/internal/api/respond"
)

// serviceHealthFn reports aggregate service health once bound at startup.
var serviceHealthFn atomic.Value // func() bool

// BindServiceHealth wires the aggregate health probe into the handler.
func BindServiceHealth(fn func() bool) {
	serviceHealthFn.Store(fn)
}

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// CheckHealth GET /api/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if fn, ok := serviceHealthFn.Load().(func() bool); ok && fn != nil && !fn() {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
