package health

import (
	"context"
	"net/http"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"ordersvc/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// Checker probes one dependency. A nil error means healthy.
type Checker func(ctx context.Context) error

type Controller struct {
	config    *config.Config
	checks    map[string]Checker
	timeout   time.Duration
	startTime time.Time
}

// NewController takes the dependencies to probe by name ("database",
// "redis"). In mock mode there are none and the service is always ready.
func NewController(cfg *config.Config, checks map[string]Checker) *Controller {
	if checks == nil {
		checks = map[string]Checker{}
	}
	return &Controller{
		config:    cfg,
		checks:    checks,
		timeout:   2 * time.Second,
		startTime: time.Now(),
	}
}

func (c *Controller) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", c.Health)
	router.GET("/health/live", c.Liveness)
	router.GET("/health/ready", c.Readiness)
}

type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Uptime    string           `json:"uptime"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
}

// Health reports every dependency; 503 when one of them is down.
func (c *Controller) Health(ctx *gin.Context) {
	checks, healthy := c.runChecks(ctx.Request.Context())
	overallStatus := statusHealthy
	if !healthy {
		overallStatus = statusUnhealthy
	}

	response := HealthResponse{
		Status:    overallStatus,
		Version:   c.config.App.Version,
		Uptime:    time.Since(c.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if c.config.IsDevelopment() {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		response.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumCPU:       runtime.NumCPU(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     memStats.Alloc,
		}
	}

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusServiceUnavailable
	}
	ctx.JSON(statusCode, response)
}

// Liveness only tells that the process serves HTTP.
func (c *Controller) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness answers 503 with the sorted names of failing dependencies.
func (c *Controller) Readiness(ctx *gin.Context) {
	checks, healthy := c.runChecks(ctx.Request.Context())
	if !healthy {
		var failing []string
		for _, name := range slices.Sorted(maps.Keys(checks)) {
			if checks[name].Status != statusHealthy {
				failing = append(failing, name)
			}
		}
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"failing": failing,
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// runChecks probes every dependency in parallel, each under its own timeout.
func (c *Controller) runChecks(ctx context.Context) (map[string]Check, bool) {
	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(c.checks))
	)
	var g errgroup.Group
	for name, checker := range c.checks {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			result := Check{Status: statusHealthy}
			if err := checker(checkCtx); err != nil {
				result = Check{Status: statusUnhealthy, Message: err.Error()}
			}
			result.Latency = time.Since(start).String()

			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	healthy := true
	for _, r := range results {
		healthy = healthy && r.Status == statusHealthy
	}
	return results, healthy
}
