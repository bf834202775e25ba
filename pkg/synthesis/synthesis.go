// Package synthesis implements the Synthesis & Refusal Formatter: the
// pipeline's final step, turning a passing Reasoning into a Synthesized
// answer or a failing one into a Refusal. Message composition is grounded
// on the teacher's pkg/agent/controller/synthesis.go strings.Builder-based
// assembly; the fixed disclaimer and refusal-reason text are package-level
// constants the way the teacher's pkg/config/builtin.go holds constant
// tables.
package synthesis

import (
	"strings"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
)

const disclaimer = "This analysis is generated by an automated legal research assistant and does not constitute legal advice. Consult a qualified Sri Lankan attorney before relying on it."

const (
	ReasonEmptyRetrieval = "no_relevant_sources"
	ReasonCriticalIssue  = "validation_failed"
	ReasonInvalidRequest = "invalid_request"
)

// Synthesize builds the final Synthesized answer from a passing Reasoning.
func Synthesize(reasoning domain.Reasoning) domain.Output {
	var b strings.Builder
	b.WriteString(reasoning.Analysis)

	citations := make([]string, len(reasoning.CitedSources))
	copy(citations, reasoning.CitedSources)

	return domain.Output{
		Kind: domain.OutputSynthesized,
		Synthesized: &domain.Synthesized{
			Analysis:    b.String(),
			Citations:   citations,
			Disclaimer:  disclaimer,
			Limitations: reasoning.Limitations,
		},
	}
}

// Refuse builds a Refusal output with the given reason code and detail.
func Refuse(reason, detail string) domain.Output {
	return domain.Output{
		Kind: domain.OutputRefusal,
		Refusal: &domain.Refusal{
			Reason: reason,
			Detail: detail,
		},
	}
}

// RefuseFromVerdict builds a Refusal summarizing the critical issues in a
// failing ValidationVerdict. The full critical issue list is preserved on
// the output (not just the joined Detail string) so callers can render a
// structured findings list. Reason is ReasonEmptyRetrieval when the
// failure traces back to a missing_sources issue, so empty-retrieval
// refusals keep their own reason code even though they now flow through
// the same validation-failure path as every other refusal.
func RefuseFromVerdict(verdict domain.ValidationVerdict) domain.Output {
	var details []string
	var critical []domain.ValidationIssue
	reason := ReasonCriticalIssue
	for _, issue := range verdict.Issues {
		if issue.Severity == domain.SeverityCritical {
			details = append(details, issue.Message)
			critical = append(critical, issue)
			if issue.Code == "missing_sources" {
				reason = ReasonEmptyRetrieval
			}
		}
	}
	return domain.Output{
		Kind: domain.OutputRefusal,
		Refusal: &domain.Refusal{
			Reason: reason,
			Detail: strings.Join(details, "; "),
			Issues: critical,
		},
	}
}
