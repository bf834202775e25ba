package api

import "github.com/codeready-toolchain/nitilex/pkg/domain"

// QueryResponse is the HTTP response body for POST /query, matching
// spec.md §6's {status, data, session_id, timestamp} shape.
type QueryResponse struct {
	Status    string      `json:"status"`
	Data      interface{} `json:"data"`
	SessionID string      `json:"session_id"`
	Timestamp string      `json:"timestamp"`
}

// SynthesizedData is the "data" payload when status is "success".
type SynthesizedData struct {
	Analysis    string   `json:"analysis"`
	Citations   []string `json:"citations"`
	Disclaimer  string   `json:"disclaimer"`
	Limitations string   `json:"limitations"`
}

// RefusalData is the "data" payload when status is "refused". Issues is
// always present (possibly empty) so refusals are structurally uniform,
// per spec.md's "refusals always include the structured issues list".
type RefusalData struct {
	Reason string                   `json:"reason"`
	Detail string                   `json:"detail"`
	Issues []domain.ValidationIssue `json:"issues"`
}

// IncidentAgentResponse is the HTTP response body for
// POST /incidents/:id/agent.
type IncidentAgentResponse struct {
	Response        string `json:"response"`
	UserContextUsed bool   `json:"user_context_used"`
}

// AuditResponse is the HTTP response body for GET /audit/:session_id.
type AuditResponse struct {
	SessionID string               `json:"session_id"`
	LogCount  int                  `json:"log_count"`
	Logs      []domain.AuditRecord `json:"logs"`
}

// ExportResponse is the HTTP response body for GET /export/:session_id.
type ExportResponse struct {
	SessionID string `json:"session_id"`
	Format    string `json:"format"`
	File      string `json:"file"`
}

// ErrorResponse is the stable shape for internal errors, per spec.md §7:
// "Internal errors return a stable shape {error, session_id, timestamp}
// with no stack traces."
type ErrorResponse struct {
	Error     string `json:"error"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthResponse is the HTTP response body for GET /health.
type HealthResponse struct {
	Status        string            `json:"status"`
	CorpusHealthy bool              `json:"corpus_healthy"`
	CorpusChunks  int               `json:"corpus_chunks"`
	Configuration ConfigurationInfo `json:"configuration"`
}

// ConfigurationInfo summarizes the running configuration, grounded on the
// teacher's ConfigurationStats health-endpoint payload.
type ConfigurationInfo struct {
	ValidationMode  string `json:"validation_mode"`
	LLMProvider     string `json:"llm_provider"`
	CaseMemoryCache bool   `json:"case_memory_cache"`
	CorpusAccel     bool   `json:"corpus_accel"`
}

func toQueryData(output domain.Output) (string, interface{}) {
	switch output.Kind {
	case domain.OutputSynthesized:
		return "success", SynthesizedData{
			Analysis:    output.Synthesized.Analysis,
			Citations:   output.Synthesized.Citations,
			Disclaimer:  output.Synthesized.Disclaimer,
			Limitations: output.Synthesized.Limitations,
		}
	default:
		issues := output.Refusal.Issues
		if issues == nil {
			issues = []domain.ValidationIssue{}
		}
		return "refused", RefusalData{
			Reason: output.Refusal.Reason,
			Detail: output.Refusal.Detail,
			Issues: issues,
		}
	}
}
