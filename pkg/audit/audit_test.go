package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_RecordAndSession(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir)
	require.NoError(t, err)
	defer logger.Close()

	rec := NewRecord("sess-1", domain.StepRetrieve, "ok", "retrieved 3 sources", map[string]any{"count": 3})
	require.NoError(t, logger.Record(rec))

	got := logger.Session("sess-1")
	require.Len(t, got, 1)
	assert.Equal(t, "sess-1", got[0].SessionID)
	assert.Equal(t, domain.StepRetrieve, got[0].Step)

	empty := logger.Session("no-such-session")
	assert.Empty(t, empty)
}

func TestLogger_PersistsNDJSON(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, logger.Record(NewRecord("sess-2", domain.StepReason, "ok", "", nil)))
	require.NoError(t, logger.Record(NewRecord("sess-2", domain.StepValidate, "ok", "", nil)))
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "session_sess-2.jsonl"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	var rec domain.AuditRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, domain.StepReason, rec.Step)
}

func TestExportJSONAndMarkdown(t *testing.T) {
	records := []domain.AuditRecord{
		NewRecord("sess-3", domain.StepFormat, "ok", "formatted", nil),
	}

	jsonOut, err := ExportJSON(records)
	require.NoError(t, err)
	assert.Contains(t, string(jsonOut), "sess-3")

	mdOut := ExportMarkdown("sess-3", records)
	assert.Contains(t, mdOut, "sess-3")
	assert.Contains(t, mdOut, "format")
}
