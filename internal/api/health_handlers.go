package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Uptime     string                     `json:"uptime" doc:"Time since the server started"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"storage": s.checkStorage(),
		"search":  s.checkSearchIndex(),
		"sse":     s.checkSSEManager(),
	}

	// Storage failures degrade rather than break the league: state stays in memory.
	overall := statusHealthy
	for _, c := range components {
		if c.Status != statusHealthy {
			overall = statusDegraded
		}
	}

	return &HealthOutput{Body: HealthResponse{
		Status:     overall,
		Uptime:     time.Since(s.startedAt).Round(time.Second).String(),
		Components: components,
	}}, nil
}

func (s *Server) checkStorage() ComponentHealth {
	if s.services.Durable == nil {
		return ComponentHealth{Status: statusDegraded, Message: "durable store not configured"}
	}
	start := time.Now()
	err := s.services.Durable.Ping()
	latency := time.Since(start).String()
	if err != nil {
		return ComponentHealth{Status: statusUnhealthy, Latency: latency, Message: "durable store unreachable"}
	}
	return ComponentHealth{Status: statusHealthy, Latency: latency}
}

func (s *Server) checkSearchIndex() ComponentHealth {
	if s.services.Search == nil {
		return ComponentHealth{Status: statusDegraded, Message: "search not configured"}
	}
	start := time.Now()
	count, err := s.services.Search.DocumentCount()
	latency := time.Since(start).String()
	if err != nil {
		return ComponentHealth{Status: statusUnhealthy, Latency: latency, Message: "search index unreachable"}
	}
	return ComponentHealth{Status: statusHealthy, Latency: latency, Message: strconv.FormatUint(count, 10) + " players indexed"}
}

func (s *Server) checkSSEManager() ComponentHealth {
	if s.sseManager == nil {
		return ComponentHealth{Status: statusDegraded, Message: "SSE manager not configured"}
	}
	return ComponentHealth{Status: statusHealthy, Message: formatClients(s.sseManager.ClientCount())}
}

func formatClients(count int) string {
	if count == 1 {
		return "1 connected client"
	}
	return strconv.Itoa(count) + " connected clients"
}
