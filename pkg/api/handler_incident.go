package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
)

// incidentAgentHandler handles POST /incidents/:id/agent: run the pipeline
// with case-memory binding scoped to the incident thread. The
// authenticated caller, when present, is recorded on the stored turns; the
// caller's turns from other threads are not loaded into the context.
func (s *Server) incidentAgentHandler(c *echo.Context) error {
	incidentID := c.Param("id")
	if incidentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "incident id is required")
	}

	var req IncidentAgentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID := extractUser(c)
	output := s.executor.Execute(c.Request().Context(), domain.UserQuery{
		SessionID:  uuid.New().String(),
		Question:   req.Message,
		IncidentID: incidentID,
		UserID:     userID,
	})

	response := IncidentAgentResponse{UserContextUsed: userID != ""}
	switch output.Kind {
	case domain.OutputSynthesized:
		response.Response = output.Synthesized.Analysis
	default:
		response.Response = output.Refusal.Detail
	}

	return c.JSON(http.StatusOK, &response)
}
