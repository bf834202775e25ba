// Package validation implements the Validation Gatekeeper: a deterministic
// citation-matching phase that never calls an LLM, and an optional
// LLM-assisted phase that can only add warning-level issues, never
// critical ones. Phase A's normalize-once-then-match structure is grounded
// on the teacher's pkg/masking compiled-pattern-registry idiom (resolve
// once, apply many times) generalized from regex masking to citation
// substring matching.
package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/nitilex/pkg/config"
	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/codeready-toolchain/nitilex/pkg/llm"
)

// Gatekeeper is the Validation Gatekeeper component.
type Gatekeeper struct {
	mode   config.ValidationMode
	client llm.Client // nil when mode == ValidationRuleOnly
	model  string
}

// New creates a Gatekeeper. client and model are ignored when mode is
// ValidationRuleOnly.
func New(mode config.ValidationMode, client llm.Client, model string) *Gatekeeper {
	return &Gatekeeper{mode: mode, client: client, model: model}
}

// minAnalysisLen and minLimitationsLen are the Phase A length thresholds
// (rules #4 and #5): shorter than this and the reasoning is flagged, never
// blocked outright since both issues are warning/info severity.
const (
	minAnalysisLen    = 50
	minLimitationsLen = 20
)

// Validate runs Phase A (always, deterministic) and, when configured,
// Phase B, returning the combined verdict. Phase A runs six rule checks in
// order: missing_sources, missing_citation, hallucination, parse_failure,
// insufficient_analysis, missing_limitations.
func (g *Gatekeeper) Validate(ctx context.Context, reasoning domain.Reasoning, sources []domain.LegalSource) domain.ValidationVerdict {
	var issues []domain.ValidationIssue

	if len(sources) == 0 {
		issues = append(issues, domain.ValidationIssue{
			Code:     "missing_sources",
			Message:  "no sources were retrieved to support this analysis",
			Severity: domain.SeverityCritical,
		})
	} else if len(reasoning.CitedSources) == 0 {
		issues = append(issues, domain.ValidationIssue{
			Code:     "missing_citation",
			Message:  "analysis cites no sources despite sources being available",
			Severity: domain.SeverityWarning,
		})
	}

	citationIssues, allCitationsVerified := checkCitations(reasoning, sources)
	issues = append(issues, citationIssues...)

	if reasoning.HadParseFailure {
		issues = append(issues, domain.ValidationIssue{
			Code:     "parse_failure",
			Message:  "reasoning module produced an unparseable response",
			Severity: domain.SeverityCritical,
		})
	}

	if len(reasoning.Analysis) < minAnalysisLen {
		issues = append(issues, domain.ValidationIssue{
			Code:     "insufficient_analysis",
			Message:  fmt.Sprintf("analysis is only %d characters, shorter than the expected minimum", len(reasoning.Analysis)),
			Severity: domain.SeverityWarning,
		})
	}

	if len(reasoning.Limitations) < minLimitationsLen {
		issues = append(issues, domain.ValidationIssue{
			Code:     "missing_limitations",
			Message:  "analysis does not state its limitations",
			Severity: domain.SeverityInfo,
		})
	}

	if g.mode == config.ValidationRulePlusLLM && g.client != nil {
		issues = append(issues, g.runLLMPhase(ctx, reasoning, sources)...)
	}

	return buildVerdict(issues, allCitationsVerified)
}

// buildVerdict applies the Gatekeeper's status rule: any critical issue
// fails the verdict at zero confidence; absent that, any remaining issue
// (warning or info) downgrades to warn at 0.5 confidence; otherwise the
// verdict passes at high confidence. no_hallucination_detected tracks the
// hallucination kind specifically, independent of other critical issues
// such as missing_sources.
func buildVerdict(issues []domain.ValidationIssue, allCitationsVerified bool) domain.ValidationVerdict {
	hasCritical := false
	hasAny := len(issues) > 0
	noHallucination := true
	for _, i := range issues {
		if i.Severity == domain.SeverityCritical {
			hasCritical = true
		}
		if i.Code == "hallucination" {
			noHallucination = false
		}
	}

	verdict := domain.ValidationVerdict{
		Issues:                  issues,
		AllCitationsVerified:    allCitationsVerified,
		NoHallucinationDetected: noHallucination,
	}

	switch {
	case hasCritical:
		verdict.Status = domain.VerdictFail
		verdict.Confidence = 0
	case hasAny:
		verdict.Status = domain.VerdictWarn
		verdict.Confidence = 0.5
	default:
		verdict.Status = domain.VerdictPass
		verdict.Confidence = 0.9
	}
	return verdict
}

// checkCitations is Phase A rule #3: every citation the reasoner claims to
// have used must case-insensitively, bidirectionally substring-match at
// least one retrieved source's canonical citation string. A citation that
// matches no source is a critical hallucination issue. allCitationsVerified
// is false when any non-blank citation matched no source; it is true on an
// empty citation list (or one of blank entries only) since there is
// nothing left unverified.
func checkCitations(reasoning domain.Reasoning, sources []domain.LegalSource) ([]domain.ValidationIssue, bool) {
	if len(reasoning.CitedSources) == 0 {
		return nil, true
	}

	normalizedSources := make([]string, len(sources))
	for i, s := range sources {
		normalizedSources[i] = strings.ToLower(strings.TrimSpace(s.Citation))
	}

	allVerified := true
	var issues []domain.ValidationIssue
	for _, cited := range reasoning.CitedSources {
		normCited := strings.ToLower(strings.TrimSpace(cited))
		if normCited == "" {
			continue
		}

		matched := false
		for _, src := range normalizedSources {
			if src == "" {
				continue
			}
			if strings.Contains(src, normCited) || strings.Contains(normCited, src) {
				matched = true
				break
			}
		}

		if !matched {
			allVerified = false
			issues = append(issues, domain.ValidationIssue{
				Code:     "hallucination",
				Message:  fmt.Sprintf("citation %q does not match any retrieved source", cited),
				Severity: domain.SeverityCritical,
			})
		}
	}
	return issues, allVerified
}

// runLLMPhase is Phase B: an optional second opinion from an LLM, fixed to
// temperature 0 regardless of the reasoner's configured temperature so
// validation stays as deterministic as an LLM call can be (Open Question
// 2, decided in DESIGN.md). Any failure here is downgraded to a warning —
// Phase B can never block synthesis on its own.
func (g *Gatekeeper) runLLMPhase(ctx context.Context, reasoning domain.Reasoning, sources []domain.LegalSource) []domain.ValidationIssue {
	var b strings.Builder
	b.WriteString("Analysis:\n")
	b.WriteString(reasoning.Analysis)
	b.WriteString("\n\nSources:\n")
	for _, s := range sources {
		fmt.Fprintf(&b, "- %s: %s\n", s.Citation, s.Text)
	}
	b.WriteString("\n\nDoes the analysis make any claim unsupported by the sources above? Reply with a single line: either \"OK\" or a short description of the unsupported claim.")

	resp, err := g.client.Generate(ctx, llm.Request{
		Model:       g.model,
		Temperature: 0,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: b.String()},
		},
	})
	if err != nil {
		return []domain.ValidationIssue{{
			Code:     "validator_error",
			Message:  fmt.Sprintf("Phase B validator call failed: %v", err),
			Severity: domain.SeverityWarning,
		}}
	}

	text := strings.TrimSpace(resp.Text)
	if strings.EqualFold(text, "OK") || text == "" {
		return nil
	}

	return []domain.ValidationIssue{{
		Code:     "inconsistency",
		Message:  text,
		Severity: domain.SeverityWarning,
	}}
}
