package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/procura/backend/internal/infrastructure/persistence"
	"github.com/procura/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// DatabaseChecker reports database reachability and pool usage. *persistence.Database implements it.
type DatabaseChecker interface {
	PingContext(ctx context.Context) error
	Stats() (persistence.ConnectionStats, error)
}

// HealthHandler serves /health
type HealthHandler struct {
	BaseHandler
	db        DatabaseChecker
	version   string
	startTime time.Time
	timeout   time.Duration
	logger    *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db DatabaseChecker, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		version:   version,
		startTime: time.Now(),
		timeout:   2 * time.Second,
		logger:    logger,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	Uptime    string `json:"uptime"`
	OpenConns int    `json:"openConnections"`
	InUse     int    `json:"inUseConnections"`
}

// Health handles GET /health. It answers 503 when the database does not respond.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Database:  "ok",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Database is unavailable")
		return
	}
	if stats, err := h.db.Stats(); err == nil {
		resp.OpenConns = stats.OpenConnections
		resp.InUse = stats.InUse
	}
	h.Success(c, resp)
}
