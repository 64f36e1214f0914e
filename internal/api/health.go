package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health statuses reported by the health endpoint.
const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// healthResponse is the health check response format.
type healthResponse struct {
	Status  string                 `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Checks  map[string]checkResult `json:"checks,omitempty"`
}

// checkResult is the result of one named health check.
type checkResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HealthChecker performs one dependency health check.
type HealthChecker func() error

// registerHealthRoutes adds GET and HEAD /health endpoints.
func registerHealthRoutes(router *gin.Engine, serviceName, version string, checks map[string]HealthChecker) {
	router.GET("/health", healthHandler(serviceName, version, checks))
	router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

// healthHandler runs the configured checks and reports overall status.
func healthHandler(serviceName, version string, checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := healthResponse{
			Status:  statusHealthy,
			Service: serviceName,
			Version: version,
		}

		if len(checks) > 0 {
			response.Checks = make(map[string]checkResult, len(checks))
			for name, check := range checks {
				start := time.Now()
				err := check()
				result := checkResult{
					Status:  statusHealthy,
					Latency: time.Since(start).String(),
				}
				if err != nil {
					result.Status = statusUnhealthy
					result.Message = err.Error()
					response.Status = statusUnhealthy
				}
				response.Checks[name] = result
			}
		}

		statusCode := http.StatusOK
		if response.Status == statusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
