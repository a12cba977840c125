// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"colisflow/internal/domain/audit"
	"colisflow/internal/infrastructure/storage/postgres"
)

// Version is reported by /health/info; set at build time with -ldflags.
var Version = "dev"

// Database is what the health probes need from the pool.
type Database interface {
	Ping(ctx context.Context) error
	Stats() postgres.PoolStats
}

// AuditStats exposes the audit writer counters.
type AuditStats interface {
	Stats() audit.WriterStats
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db    Database
	audit AuditStats
}

// NewHealthHandler creates a new health handler. auditStats may be nil.
func NewHealthHandler(db Database, auditStats AuditStats) *HealthHandler {
	return &HealthHandler{db: db, audit: auditStats}
}

// Live handles the liveness probe.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles the readiness probe.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"database": "healthy",
		},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	body := gin.H{
		"app":      "colisflow",
		"version":  Version,
		"database": h.db.Stats(),
	}
	if h.audit != nil {
		s := h.audit.Stats()
		body["audit"] = gin.H{
			"submitted": s.Submitted,
			"dropped":   s.Dropped,
			"written":   s.Written,
			"failed":    s.Failed,
		}
	}
	c.JSON(http.StatusOK, body)
}
