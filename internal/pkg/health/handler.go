package health

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/ukdrive/internal/pkg/logger"
)

// BuildInfo contains information about the build
type BuildInfo struct {
	Version     string    `json:"version"`
	GitCommit   string    `json:"git_commit"`
	ServiceName string    `json:"service_name"`
	GoVersion   string    `json:"go_version"`
	Hostname    string    `json:"hostname"`
	ServerTime  time.Time `json:"server_time"`
}

// HealthResponse represents the readiness response
type HealthResponse struct {
	Status       string                    `json:"status"`
	Service      string                    `json:"service"`
	Timestamp    time.Time                 `json:"timestamp"`
	Dependencies map[string]DependencyInfo `json:"dependencies"`
}

// DependencyInfo represents health info for a dependency
type DependencyInfo struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Service runs the registered dependency checks
type Service struct {
	name     string
	checkers map[string]HealthChecker
}

// NewService creates a health service for serviceName
func NewService(serviceName string) *Service {
	return &Service{name: serviceName, checkers: make(map[string]HealthChecker)}
}

// AddChecker registers a health checker for a dependency
func (s *Service) AddChecker(name string, checker HealthChecker) {
	s.checkers[name] = checker
}

// Check runs every checker, in name order
func (s *Service) Check(ctx context.Context) HealthResponse {
	response := HealthResponse{
		Status:       "healthy",
		Service:      s.name,
		Timestamp:    time.Now().UTC(),
		Dependencies: make(map[string]DependencyInfo, len(s.checkers)),
	}

	names := make([]string, 0, len(s.checkers))
	for name := range s.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.checkers[name].CheckHealth(ctx); err != nil {
			logger.Warn("Health check failed",
				logger.String("dependency", name),
				logger.Err(err))
			response.Dependencies[name] = DependencyInfo{Status: "unhealthy", Error: err.Error()}
			response.Status = "unhealthy"
			continue
		}
		response.Dependencies[name] = DependencyInfo{Status: "healthy"}
	}
	return response
}

// NewPingHandler creates a handler for the ping endpoint
func NewPingHandler(serviceName string) echo.HandlerFunc {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	info := BuildInfo{
		Version:     "development",
		GitCommit:   "unknown",
		ServiceName: serviceName,
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
	}
	if version := os.Getenv("VERSION"); version != "" {
		info.Version = version
	}
	if gitCommit := os.Getenv("GIT_COMMIT"); gitCommit != "" {
		info.GitCommit = gitCommit
	}

	return func(c echo.Context) error {
		resp := info
		resp.ServerTime = time.Now().UTC()
		return c.JSON(http.StatusOK, resp)
	}
}

// RegisterHealthEndpoints registers /ping, /health and /ready. /ready runs the
// dependency checks and answers 503 when any of them fails.
func RegisterHealthEndpoints(e *echo.Echo, svc *Service) {
	e.GET("/ping", NewPingHandler(svc.name))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		resp := svc.Check(ctx)
		status := http.StatusOK
		if resp.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, resp)
	})
}
