package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/nitilex/pkg/audit"
)

// auditHandler handles GET /audit/:session_id.
func (s *Server) auditHandler(c *echo.Context) error {
	sessionID := c.Param("session_id")
	records := s.auditLog.Session(sessionID)

	return c.JSON(http.StatusOK, &AuditResponse{
		SessionID: sessionID,
		LogCount:  len(records),
		Logs:      records,
	})
}

// exportHandler handles GET /export/:session_id?format=json|markdown.
func (s *Server) exportHandler(c *echo.Context) error {
	sessionID := c.Param("session_id")
	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}

	records := s.auditLog.Session(sessionID)

	var file string
	switch format {
	case "markdown":
		file = audit.ExportMarkdown(sessionID, records)
	case "json":
		jsonBytes, err := audit.ExportJSON(records)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to export audit records")
		}
		file = string(jsonBytes)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be json or markdown")
	}

	return c.JSON(http.StatusOK, &ExportResponse{
		SessionID: sessionID,
		Format:    format,
		File:      file,
	})
}
