package synthesis

import (
	"testing"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_IncludesDisclaimerAndCitations(t *testing.T) {
	out := Synthesize(domain.Reasoning{
		Analysis:     "analysis text",
		Limitations:  "some limitation",
		CitedSources: []string{"Penal Code - Section 365"},
	})
	require.Equal(t, domain.OutputSynthesized, out.Kind)
	require.NotNil(t, out.Synthesized)
	assert.Equal(t, "analysis text", out.Synthesized.Analysis)
	assert.NotEmpty(t, out.Synthesized.Disclaimer)
	assert.Contains(t, out.Synthesized.Citations, "Penal Code - Section 365")
}

func TestRefuseFromVerdict_CollectsCriticalIssues(t *testing.T) {
	out := RefuseFromVerdict(domain.ValidationVerdict{
		Status: domain.VerdictFail,
		Issues: []domain.ValidationIssue{
			{Code: "hallucination", Message: "bad cite", Severity: domain.SeverityCritical},
			{Code: "inconsistency", Message: "ignored warning", Severity: domain.SeverityWarning},
		},
	})
	require.Equal(t, domain.OutputRefusal, out.Kind)
	require.NotNil(t, out.Refusal)
	assert.Equal(t, ReasonCriticalIssue, out.Refusal.Reason)
	assert.Contains(t, out.Refusal.Detail, "bad cite")
	assert.NotContains(t, out.Refusal.Detail, "ignored warning")
	require.Len(t, out.Refusal.Issues, 1)
	assert.Equal(t, "hallucination", out.Refusal.Issues[0].Code)
}

func TestRefuseFromVerdict_MissingSourcesUsesEmptyRetrievalReason(t *testing.T) {
	out := RefuseFromVerdict(domain.ValidationVerdict{
		Status: domain.VerdictFail,
		Issues: []domain.ValidationIssue{
			{Code: "missing_sources", Message: "no sources were retrieved to support this analysis", Severity: domain.SeverityCritical},
		},
	})
	require.Equal(t, domain.OutputRefusal, out.Kind)
	require.NotNil(t, out.Refusal)
	assert.Equal(t, ReasonEmptyRetrieval, out.Refusal.Reason)
	require.Len(t, out.Refusal.Issues, 1)
	assert.Equal(t, "missing_sources", out.Refusal.Issues[0].Code)
}
