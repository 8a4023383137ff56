package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gmprep/simulado-backend/internal/response"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports liveness, dependency status and runtime figures.
type HealthHandler struct {
	checks    map[string]HealthCheck
	startTime time.Time
	timeout   time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
}

type healthReport struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Checks     map[string]string `json:"checks"`
	Goroutines int               `json:"goroutines"`
	HeapBytes  uint64            `json:"heap_bytes"`
	GoVersion  string            `json:"go_version"`
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	report := healthReport{
		Status:     "ok",
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Checks:     make(map[string]string, len(h.checks)),
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			report.Checks[name] = err.Error()
			report.Status = "degraded"
			continue
		}
		report.Checks[name] = "ok"
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	report.HeapBytes = mem.HeapAlloc

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, report)
}
