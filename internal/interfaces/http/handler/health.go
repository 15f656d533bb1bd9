package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const readinessTimeout = 2 * time.Second

// HealthHandler serves liveness, readiness and build information
type HealthHandler struct {
	BaseHandler
	db        *gorm.DB
	name      string
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *gorm.DB, name, version string) *HealthHandler {
	return &HealthHandler{db: db, name: name, version: version, startTime: time.Now()}
}

// RegisterRoutes mounts /health/live, /health/ready and /health/info
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	health.GET("/live", h.Live)
	health.GET("/ready", h.Ready)
	health.GET("/info", h.Info)
}

// HealthResponse is the body of the health checks
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// InfoResponse describes the running build
type InfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Live reports that the process is serving requests
func (h *HealthHandler) Live(c *gin.Context) {
	h.Success(c, HealthResponse{Status: "ok"})
}

// Ready reports whether the database accepts connections
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		resp := dto.NewErrorResponse("SERVICE_UNAVAILABLE", "database unreachable", middleware.GetRequestID(c))
		resp.Data = HealthResponse{Status: "unavailable", Database: err.Error()}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	h.Success(c, HealthResponse{Status: "ok", Database: "ok"})
}

// Info returns the service name, version and uptime
func (h *HealthHandler) Info(c *gin.Context) {
	h.Success(c, InfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
