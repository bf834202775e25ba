package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
)

// ExportJSON renders a session's audit trail as a JSON array, the shape
// served by GET /export/{session_id}?format=json.
func ExportJSON(records []domain.AuditRecord) ([]byte, error) {
	return json.MarshalIndent(records, "", "  ")
}

// ExportMarkdown renders a session's audit trail as a human-readable
// report, grounded on the teacher's ConfigurationStats summary-assembly
// idiom in pkg/api/handler_system.go: a fixed set of sections built with
// strings.Builder rather than a templating engine.
func ExportMarkdown(sessionID string, records []domain.AuditRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Audit report — session %s\n\n", sessionID)
	if len(records) == 0 {
		b.WriteString("No audit records for this session.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d steps recorded.\n\n", len(records))
	for i, r := range records {
		fmt.Fprintf(&b, "## %d. %s — %s\n\n", i+1, r.Step, r.Status)
		fmt.Fprintf(&b, "- Timestamp: %s\n", r.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
		if r.Detail != "" {
			fmt.Fprintf(&b, "- Detail: %s\n", r.Detail)
		}
		for k, v := range r.Data {
			fmt.Fprintf(&b, "- %s: %v\n", k, v)
		}
		b.WriteString("\n")
	}

	return b.String()
}
