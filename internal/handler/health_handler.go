package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peptidedeals/peptidedeals_api/internal/service"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	deps    map[string]Pinger
	catalog *service.CatalogService
}

// NewHealthHandler creates a new HealthHandler. Each named dependency is
// pinged on every request.
func NewHealthHandler(catalog *service.CatalogService, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps, catalog: catalog}
}

// GetHealth responds with service, dependency and catalog status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	deps := gin.H{}
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			deps[name] = "disconnected"
			status = "degraded"
			continue
		}
		deps[name] = "connected"
	}

	catalog := gin.H{"status": "available"}
	if snap, err := h.catalog.Load(ctx); err != nil {
		catalog["status"] = "unavailable"
		status = "degraded"
	} else {
		catalog["peptides"] = len(snap.Peptides)
		catalog["fetchedAt"] = snap.FetchedAt.Format(time.RFC3339)
	}

	utils.Success(c, 200, "Service is "+status, gin.H{
		"status":       status,
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"dependencies": deps,
		"catalog":      catalog,
	})
}
