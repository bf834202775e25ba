package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/nitilex/pkg/audit"
	"github.com/codeready-toolchain/nitilex/pkg/config"
	"github.com/codeready-toolchain/nitilex/pkg/corpusindex"
	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/codeready-toolchain/nitilex/pkg/llm"
	"github.com/codeready-toolchain/nitilex/pkg/reasoning"
	"github.com/codeready-toolchain/nitilex/pkg/retrieval"
	"github.com/codeready-toolchain/nitilex/pkg/synthesis"
	"github.com/codeready-toolchain/nitilex/pkg/validation"
)

type fakeClient struct {
	text string
	err  error
}

func (f *fakeClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.text}, nil
}

func (f *fakeClient) Close() error { return nil }

func newOrchestrator(t *testing.T, reasonText string) (*Orchestrator, *audit.Logger) {
	t.Helper()

	idx := corpusindex.New(nil, nil)
	idx.Ingest([]domain.CorpusChunk{
		{
			Source: domain.LegalSource{ID: "s1", Title: "Penal Code", Section: "365", Citation: "Penal Code - Section 365", Text: "rape and sexual offences"},
			Tokens: corpusindex.Tokenize("rape and sexual offences penal code"),
			Vector: []float32{1, 0, 0},
		},
	}, domain.EntityGraph{})

	gw := retrieval.NewGateway(idx, 8)

	logger, err := audit.New(t.TempDir())
	require.NoError(t, err)

	reasoner := reasoning.New(&fakeClient{text: reasonText}, "test-model", 0)
	gatekeeper := validation.New(config.ValidationRuleOnly, nil, "")

	return &Orchestrator{
		Retrieval:  gw,
		Reasoning:  reasoner,
		Validation: gatekeeper,
		Audit:      logger,
		MaxSources: 8,
		Deadline:   5 * time.Second,
	}, logger
}

func TestExecute_SynthesizesWhenCitationsSupported(t *testing.T) {
	o, logger := newOrchestrator(t, `{"analysis":"this is the penalty","limitations":"none","citations":["Penal Code - Section 365"]}`)

	output := o.Execute(context.Background(), domain.UserQuery{SessionID: "sess1", Question: "what is the penalty for rape?"})

	require.Equal(t, domain.OutputSynthesized, output.Kind)
	assert.Contains(t, output.Synthesized.Citations, "Penal Code - Section 365")

	records := logger.Session("sess1")
	require.Len(t, records, 5)
	assert.Equal(t, domain.StepPlan, records[0].Step)
	assert.Equal(t, domain.StepRetrieve, records[1].Step)
	assert.Equal(t, domain.StepReason, records[2].Step)
	assert.Equal(t, domain.StepValidate, records[3].Step)
	assert.Equal(t, domain.StepFormat, records[4].Step)
}

func TestExecute_RefusesOnUnsupportedCitation(t *testing.T) {
	o, _ := newOrchestrator(t, `{"analysis":"this is the penalty","limitations":"none","citations":["Made Up Statute"]}`)

	output := o.Execute(context.Background(), domain.UserQuery{SessionID: "sess2", Question: "what is the penalty for rape?"})

	require.Equal(t, domain.OutputRefusal, output.Kind)
}

func TestExecute_RejectsShortQuestionBeforeRetrieval(t *testing.T) {
	o, logger := newOrchestrator(t, "")

	output := o.Execute(context.Background(), domain.UserQuery{SessionID: "sess3", Question: "short"})

	require.Equal(t, domain.OutputRefusal, output.Kind)
	assert.Empty(t, logger.Session("sess3"))
}

func TestExecute_RefusesOnEmptyRetrieval(t *testing.T) {
	o, logger := newOrchestrator(t, "")

	output := o.Execute(context.Background(), domain.UserQuery{SessionID: "sess4", Question: "what about contract law damages claims?"})

	require.Equal(t, domain.OutputRefusal, output.Kind)
	require.NotNil(t, output.Refusal)
	assert.Equal(t, synthesis.ReasonEmptyRetrieval, output.Refusal.Reason)
	var sawMissingSources bool
	for _, issue := range output.Refusal.Issues {
		if issue.Code == "missing_sources" {
			sawMissingSources = true
			assert.Equal(t, domain.SeverityCritical, issue.Severity)
		}
	}
	assert.True(t, sawMissingSources, "expected a missing_sources issue in the refusal")
	records := logger.Session("sess4")
	require.Len(t, records, 5)
	assert.Equal(t, domain.StepPlan, records[0].Step)
	assert.Equal(t, domain.StepRetrieve, records[1].Step)
	assert.Equal(t, domain.StepReason, records[2].Step)
	assert.Equal(t, domain.StepValidate, records[3].Step)
	assert.Equal(t, domain.StepFormat, records[4].Step)
}

func TestExecutor_BoundsConcurrency(t *testing.T) {
	o, _ := newOrchestrator(t, `{"analysis":"x","limitations":"none","citations":["Penal Code - Section 365"]}`)
	exec := NewExecutor(o, 1)

	_ = exec.sem.TryAcquire(1)
	output := exec.Execute(context.Background(), domain.UserQuery{SessionID: "sess5", Question: "what is the penalty for rape?"})
	exec.sem.Release(1)

	require.Equal(t, domain.OutputRefusal, output.Kind)
}
