package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
)

// queryHandler handles POST /query: run the pipeline on one question with
// no case-memory binding.
func (s *Server) queryHandler(c *echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	question := req.Question
	if req.CaseContext != "" {
		question = question + "\n\nAdditional context: " + req.CaseContext
	}

	sessionID := uuid.New().String()
	output := s.executor.Execute(c.Request().Context(), domain.UserQuery{
		SessionID: sessionID,
		Question:  question,
	})

	status, data := toQueryData(output)
	return c.JSON(http.StatusOK, &QueryResponse{
		Status:    status,
		Data:      data,
		SessionID: sessionID,
		Timestamp: nowStamp(),
	})
}
