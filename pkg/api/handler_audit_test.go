package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runQuery(t *testing.T, s *Server, question string) QueryResponse {
	t.Helper()
	body, _ := json.Marshal(QueryRequest{Question: question})
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	require.NoError(t, s.queryHandler(c))

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuditHandler_ReturnsRecordedSteps(t *testing.T) {
	s := newTestServer(t, `{"analysis":"penalty text","limitations":"none","citations":["Penal Code - Section 365"]}`)
	queryResp := runQuery(t, s, "what is the penalty for rape?")

	auditReq := httptest.NewRequest(http.MethodGet, "/audit/"+queryResp.SessionID, nil)
	auditRec := httptest.NewRecorder()
	auditCtx := s.echo.NewContext(auditReq, auditRec)
	auditCtx.SetParamNames("session_id")
	auditCtx.SetParamValues(queryResp.SessionID)

	require.NoError(t, s.auditHandler(auditCtx))
	assert.Equal(t, http.StatusOK, auditRec.Code)

	var resp AuditResponse
	require.NoError(t, json.Unmarshal(auditRec.Body.Bytes(), &resp))
	assert.Equal(t, queryResp.SessionID, resp.SessionID)
	assert.Equal(t, 5, resp.LogCount)
}

func TestExportHandler_JSONAndMarkdown(t *testing.T) {
	s := newTestServer(t, `{"analysis":"penalty text","limitations":"none","citations":["Penal Code - Section 365"]}`)
	queryResp := runQuery(t, s, "what is the penalty for rape?")

	for _, format := range []string{"json", "markdown"} {
		exportReq := httptest.NewRequest(http.MethodGet, "/export/"+queryResp.SessionID+"?format="+format, nil)
		exportRec := httptest.NewRecorder()
		exportCtx := s.echo.NewContext(exportReq, exportRec)
		exportCtx.SetParamNames("session_id")
		exportCtx.SetParamValues(queryResp.SessionID)

		require.NoError(t, s.exportHandler(exportCtx))
		assert.Equal(t, http.StatusOK, exportRec.Code)

		var resp ExportResponse
		require.NoError(t, json.Unmarshal(exportRec.Body.Bytes(), &resp))
		assert.Equal(t, format, resp.Format)
		assert.NotEmpty(t, resp.File)
	}
}
