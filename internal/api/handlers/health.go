package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

var startTime = time.Now()

// HealthChecker is implemented by database.PostgresDB and database.RedisClient.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db      HealthChecker
	redis   HealthChecker
	version string
	logger  logrus.FieldLogger

	memory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

type MemoryStatus struct {
	TotalMB     uint64  `json:"totalMb"`
	UsedMB      uint64  `json:"usedMb"`
	UsedPercent float64 `json:"usedPercent"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Memory    *MemoryStatus     `json:"memory,omitempty"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
}

// NewHealthHandler accepts a nil redis checker when the service runs without Redis.
func NewHealthHandler(db, redis HealthChecker, version string, logger logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redis,
		version: version,
		logger:  logger,
		memory:  mem.VirtualMemoryWithContext,
	}
}

// HealthCheck reports 503 when Postgres is down. A missing or failing Redis
// only degrades the service because token revocation falls back to memory.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	services := make(map[string]string)
	status := "healthy"
	code := http.StatusOK

	if h.db == nil {
		services["database"] = "unhealthy: not configured"
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.WithError(err).Warn("Database health check failed")
		services["database"] = "unhealthy: " + err.Error()
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else {
		services["database"] = "healthy"
	}

	if h.redis == nil {
		services["redis"] = "disabled"
		if status == "healthy" {
			status = "degraded"
		}
	} else if err := h.redis.HealthCheck(ctx); err != nil {
		h.logger.WithError(err).Warn("Redis health check failed")
		services["redis"] = "unhealthy: " + err.Error()
		if status == "healthy" {
			status = "degraded"
		}
	} else {
		services["redis"] = "healthy"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
		Version:   h.version,
		Uptime:    time.Since(startTime).String(),
	}

	if vm, err := h.memory(ctx); err == nil && vm != nil {
		response.Memory = &MemoryStatus{
			TotalMB:     vm.Total / 1024 / 1024,
			UsedMB:      vm.Used / 1024 / 1024,
			UsedPercent: vm.UsedPercent,
		}
	}

	c.JSON(code, response)
}
