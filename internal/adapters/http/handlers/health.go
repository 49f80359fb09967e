// Package handlers provides the gin handlers of the tarot API.
package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// DefaultReadinessTimeout bounds a readiness probe so a hung dependency
// reports unhealthy instead of stalling the probe.
const DefaultReadinessTimeout = 2 * time.Second

// BuildInfo describes the running binary. Version, Commit and BuildTime are
// injected through ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	// Provider names the configured interpretation generator.
	Provider string `json:"provider,omitempty"`
}

// NewBuildInfo fills in the Go version of the running binary.
func NewBuildInfo(version, commit, buildTime, provider string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		Provider:  provider,
	}
}

// HealthHandler serves the operational endpoints under /-/.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
	timeout   time.Duration

	metrics *prometheus.Registry
	up      *prometheus.GaugeVec
}

// NewHealthHandler creates a health handler whose metrics endpoint exposes
// Go runtime and process collectors plus one up gauge per health check.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	up := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tarot",
		Name:      "dependency_up",
		Help:      "Whether a dependency passed its last readiness check (1) or not (0).",
	}, []string{"check"})

	info := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tarot",
		Name:      "build_info",
		Help:      "Build metadata of the running binary.",
		ConstLabels: prometheus.Labels{
			"version":  buildInfo.Version,
			"commit":   buildInfo.Commit,
			"provider": buildInfo.Provider,
		},
	}, func() float64 { return 1 })

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		up,
		info,
	)

	return &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
		timeout:   DefaultReadinessTimeout,
		metrics:   metrics,
		up:        up,
	}
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness answers as long as the process serves HTTP. It checks nothing.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status    string                        `json:"status"`
	Checks    map[string]*ports.CheckResult `json:"checks,omitempty"`
	Timestamp time.Time                     `json:"timestamp"`
}

// Readiness runs every registered check and answers 503 when any fails.
// The results also feed the tarot_dependency_up gauge.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result := h.registry.CheckAll(ctx)

	for name, check := range result.Checks {
		value := 0.0
		if check.Status == ports.HealthStatusHealthy {
			value = 1
		}

		h.up.WithLabelValues(name).Set(value)
	}

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(status, readinessResponse{
		Status:    string(result.Status),
		Checks:    result.Checks,
		Timestamp: result.Timestamp,
	})
}

// Build returns the build metadata.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// Metrics returns the Prometheus handler for this handler's registry.
func (h *HealthHandler) Metrics() http.Handler {
	return promhttp.HandlerFor(h.metrics, promhttp.HandlerOpts{Registry: h.metrics})
}

// Register mounts /-/live, /-/ready, /-/build and /-/metrics on engine.
func (h *HealthHandler) Register(engine *gin.Engine) {
	ops := engine.Group("/-")
	ops.GET("/live", h.Liveness)
	ops.GET("/ready", h.Readiness)
	ops.GET("/build", h.Build)
	ops.GET("/metrics", gin.WrapH(h.Metrics()))
}
