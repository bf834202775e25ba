package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/codeready-toolchain/nitilex/pkg/config"
	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/stretchr/testify/assert"
)

const (
	sufficientAnalysis    = "This is a sufficiently long analysis paragraph for validation purposes."
	sufficientLimitations = "This analysis does not cover civil remedies."
)

func TestValidate_PassesWhenCitationsMatch(t *testing.T) {
	g := New(config.ValidationRuleOnly, nil, "")
	verdict := g.Validate(context.Background(), domain.Reasoning{
		Analysis:     sufficientAnalysis,
		Limitations:  sufficientLimitations,
		CitedSources: []string{"penal code - section 365"},
	}, []domain.LegalSource{
		{ID: "s1", Citation: "Penal Code - Section 365"},
	})
	assert.Equal(t, domain.VerdictPass, verdict.Status)
	assert.Empty(t, verdict.Issues)
	assert.True(t, verdict.AllCitationsVerified)
	assert.True(t, verdict.NoHallucinationDetected)
}

func TestValidate_FailsOnUnsupportedCitation(t *testing.T) {
	g := New(config.ValidationRuleOnly, nil, "")
	verdict := g.Validate(context.Background(), domain.Reasoning{
		Analysis:     sufficientAnalysis,
		Limitations:  sufficientLimitations,
		CitedSources: []string{"Some Nonexistent Act - Section 1"},
	}, []domain.LegalSource{
		{ID: "s1", Citation: "Penal Code - Section 365"},
	})
	assert.Equal(t, domain.VerdictFail, verdict.Status)
	assert.False(t, verdict.AllCitationsVerified)
	assert.False(t, verdict.NoHallucinationDetected)
	if assert.Len(t, verdict.Issues, 1) {
		assert.Equal(t, "hallucination", verdict.Issues[0].Code)
		assert.Equal(t, domain.SeverityCritical, verdict.Issues[0].Severity)
	}
}

func TestValidate_MissingSourcesIsCriticalWithNoHallucination(t *testing.T) {
	g := New(config.ValidationRuleOnly, nil, "")
	verdict := g.Validate(context.Background(), domain.Reasoning{
		Analysis:    sufficientAnalysis,
		Limitations: sufficientLimitations,
	}, nil)
	assert.Equal(t, domain.VerdictFail, verdict.Status)
	assert.True(t, verdict.NoHallucinationDetected)
	if assert.Len(t, verdict.Issues, 1) {
		assert.Equal(t, "missing_sources", verdict.Issues[0].Code)
		assert.Equal(t, domain.SeverityCritical, verdict.Issues[0].Severity)
	}
}

func TestValidate_MissingCitationIsWarningWhenSourcesExist(t *testing.T) {
	g := New(config.ValidationRuleOnly, nil, "")
	verdict := g.Validate(context.Background(), domain.Reasoning{
		Analysis:    sufficientAnalysis,
		Limitations: sufficientLimitations,
	}, []domain.LegalSource{
		{ID: "s1", Citation: "Penal Code - Section 365"},
	})
	assert.Equal(t, domain.VerdictWarn, verdict.Status)
	if assert.Len(t, verdict.Issues, 1) {
		assert.Equal(t, "missing_citation", verdict.Issues[0].Code)
		assert.Equal(t, domain.SeverityWarning, verdict.Issues[0].Severity)
	}
}

func TestValidate_InsufficientAnalysisBoundary(t *testing.T) {
	g := New(config.ValidationRuleOnly, nil, "")
	sources := []domain.LegalSource{{ID: "s1", Citation: "Penal Code - Section 365"}}
	cites := []string{"penal code - section 365"}

	short := strings.Repeat("a", 49)
	verdict := g.Validate(context.Background(), domain.Reasoning{
		Analysis:     short,
		Limitations:  sufficientLimitations,
		CitedSources: cites,
	}, sources)
	found := false
	for _, i := range verdict.Issues {
		if i.Code == "insufficient_analysis" {
			found = true
		}
	}
	assert.True(t, found, "49-char analysis should warn")
	assert.Equal(t, domain.VerdictWarn, verdict.Status)

	exact := strings.Repeat("a", 50)
	verdict = g.Validate(context.Background(), domain.Reasoning{
		Analysis:     exact,
		Limitations:  sufficientLimitations,
		CitedSources: cites,
	}, sources)
	for _, i := range verdict.Issues {
		assert.NotEqual(t, "insufficient_analysis", i.Code)
	}
	assert.Equal(t, domain.VerdictPass, verdict.Status)
}

func TestValidate_MissingLimitationsIsInfo(t *testing.T) {
	g := New(config.ValidationRuleOnly, nil, "")
	verdict := g.Validate(context.Background(), domain.Reasoning{
		Analysis:     sufficientAnalysis,
		CitedSources: []string{"penal code - section 365"},
	}, []domain.LegalSource{
		{ID: "s1", Citation: "Penal Code - Section 365"},
	})
	assert.Equal(t, domain.VerdictWarn, verdict.Status)
	if assert.Len(t, verdict.Issues, 1) {
		assert.Equal(t, "missing_limitations", verdict.Issues[0].Code)
		assert.Equal(t, domain.SeverityInfo, verdict.Issues[0].Severity)
	}
}

func TestValidate_ParseFailureIsCritical(t *testing.T) {
	g := New(config.ValidationRuleOnly, nil, "")
	verdict := g.Validate(context.Background(), domain.Reasoning{HadParseFailure: true}, nil)
	assert.Equal(t, domain.VerdictFail, verdict.Status)
}

func TestValidate_LLMPhaseErrorIsWarningOnly(t *testing.T) {
	g := New(config.ValidationRulePlusLLM, &erroringClient{}, "validator-model")
	verdict := g.Validate(context.Background(), domain.Reasoning{
		Analysis:     sufficientAnalysis,
		Limitations:  sufficientLimitations,
		CitedSources: []string{"penal code - section 365"},
	}, []domain.LegalSource{
		{ID: "s1", Citation: "Penal Code - Section 365"},
	})
	assert.Equal(t, domain.VerdictWarn, verdict.Status)
	if assert.Len(t, verdict.Issues, 1) {
		assert.Equal(t, domain.SeverityWarning, verdict.Issues[0].Severity)
		assert.Equal(t, "validator_error", verdict.Issues[0].Code)
	}
}
