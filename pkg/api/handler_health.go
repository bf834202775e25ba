package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	status := "healthy"
	corpusHealthy := true
	corpusChunks := 0

	if s.gateway != nil {
		corpusHealthy, corpusChunks = s.gateway.Healthy()
		if !corpusHealthy {
			status = "degraded"
		}
	}

	stats := s.cfg.Stats()
	response := &HealthResponse{
		Status:        status,
		CorpusHealthy: corpusHealthy,
		CorpusChunks:  corpusChunks,
		Configuration: ConfigurationInfo{
			ValidationMode:  string(stats.ValidationMode),
			LLMProvider:     string(stats.LLMProvider),
			CaseMemoryCache: stats.CaseMemoryCache,
			CorpusAccel:     stats.CorpusAccel,
		},
	}

	httpStatus := http.StatusOK
	if status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	return c.JSON(httpStatus, response)
}
