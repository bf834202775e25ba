// Package pipeline implements the Pipeline Orchestrator: the fixed,
// deterministic five-step sequence (plan, retrieve, reason, validate,
// format) that turns a UserQuery into an Output, emitting one AuditRecord
// per step. Grounded on the teacher's pkg/agent/orchestrator/runner.go
// shape — a runner holding its collaborators and driving a bounded set of
// steps to completion — but single-threaded per request: spec.md rules
// out intra-request parallelism across pipeline agents, so unlike the
// teacher's SubAgentRunner there is no fan-out goroutine per step here.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/nitilex/pkg/audit"
	"github.com/codeready-toolchain/nitilex/pkg/casememory"
	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/codeready-toolchain/nitilex/pkg/reasoning"
	"github.com/codeready-toolchain/nitilex/pkg/retrieval"
	"github.com/codeready-toolchain/nitilex/pkg/shared/errkind"
	"github.com/codeready-toolchain/nitilex/pkg/synthesis"
	"github.com/codeready-toolchain/nitilex/pkg/validation"
)

const minQuestionLength = 10

// Orchestrator wires together the pipeline's collaborators. All fields
// are required except CaseMemory, which is nil-safe (no case-memory
// binding happens when unset).
type Orchestrator struct {
	Retrieval  *retrieval.Gateway
	Reasoning  *reasoning.Module
	Validation *validation.Gatekeeper
	Audit      *audit.Logger
	CaseMemory *casememory.Binder // optional

	MaxSources int
	Deadline   time.Duration
}

// Execute runs the full plan for q and returns the tagged-union Output.
// Every failure mode this method can encounter — an invalid request, an
// empty retrieval, a reasoning or validation failure — degrades to a
// Refusal rather than surfacing as an error, so Execute never fails.
// A client-invalid query is refused before any step runs and before a
// Plan is even constructed.
func (o *Orchestrator) Execute(ctx context.Context, q domain.UserQuery) domain.Output {
	if err := validateQuery(q); err != nil {
		return synthesis.Refuse(synthesis.ReasonInvalidRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, o.Deadline)
	defer cancel()

	plan := domain.Plan{Steps: []domain.PlanStep{
		domain.StepPlan, domain.StepRetrieve, domain.StepReason, domain.StepValidate, domain.StepFormat,
	}}
	o.recordAudit(q.SessionID, domain.StepPlan, "ok", "", map[string]any{"steps": len(plan.Steps)})

	var memory domain.CaseMemory
	if o.CaseMemory != nil {
		m, err := o.CaseMemory.LoadContext(ctx, q)
		if err == nil {
			memory = m
		}
		// A case-memory read failure degrades to an empty memory window
		// rather than aborting the request: the pipeline can still answer
		// from the corpus alone.
	}

	question := q.Question
	if len(memory.Turns) > 0 {
		question = withMemory(question, memory)
	}

	retrievalResult := o.runRetrieve(ctx, q, question, plan)

	output := o.runReasonValidateFormat(ctx, q, question, retrievalResult, plan)

	if o.CaseMemory != nil && output.Kind == domain.OutputSynthesized {
		_ = o.CaseMemory.RecordTurn(ctx, q, output.Synthesized.Analysis)
	}

	return output
}

func (o *Orchestrator) runRetrieve(ctx context.Context, q domain.UserQuery, question string, plan domain.Plan) domain.RetrievalResult {
	result := o.Retrieval.Retrieve(ctx, question, nil, nil, o.MaxSources)

	status := "ok"
	if result.Status != domain.RetrievalOK {
		status = "warning"
	}
	o.recordAudit(q.SessionID, domain.StepRetrieve, status, result.Warning, map[string]any{
		"source_count": len(result.Sources),
	})
	return result
}

func (o *Orchestrator) runReasonValidateFormat(ctx context.Context, q domain.UserQuery, question string, retrievalResult domain.RetrievalResult, plan domain.Plan) domain.Output {
	reasoningDraft, err := o.Reasoning.Reason(ctx, question, retrievalResult.Sources)
	if err != nil {
		o.recordAudit(q.SessionID, domain.StepReason, "error", err.Error(), nil)
		if isDeadline(err) {
			return synthesis.Refuse(synthesis.ReasonCriticalIssue, "reasoning step exceeded its deadline")
		}
		return synthesis.Refuse(synthesis.ReasonCriticalIssue, "reasoning module unavailable")
	}
	o.recordAudit(q.SessionID, domain.StepReason, statusFor(reasoningDraft.HadParseFailure), "", map[string]any{
		"had_parse_failure": reasoningDraft.HadParseFailure,
	})

	verdict := o.Validation.Validate(ctx, reasoningDraft, retrievalResult.Sources)
	o.recordAudit(q.SessionID, domain.StepValidate, statusFor(verdict.Status == domain.VerdictFail), "", map[string]any{
		"issue_count": len(verdict.Issues),
		"status":      string(verdict.Status),
	})

	var output domain.Output
	if verdict.Status == domain.VerdictFail {
		output = synthesis.RefuseFromVerdict(verdict)
	} else {
		output = synthesis.Synthesize(reasoningDraft)
	}
	o.recordAudit(q.SessionID, domain.StepFormat, "ok", "", map[string]any{"kind": string(output.Kind)})

	return output
}

func (o *Orchestrator) recordAudit(sessionID string, step domain.PlanStep, status, detail string, data map[string]any) {
	rec := audit.NewRecord(sessionID, step, status, detail, data)
	_ = o.Audit.Record(rec) // tolerated: a partial-write failure never aborts the pipeline step
}

func statusFor(problem bool) string {
	if problem {
		return "warning"
	}
	return "ok"
}

func isDeadline(err error) bool {
	return errkind.Kind(err) == errkind.ErrDeadlineExceeded
}

func validateQuery(q domain.UserQuery) error {
	if len(q.Question) < minQuestionLength {
		return errkind.Wrap(errkind.ErrClientInvalid, fmt.Errorf("question must be at least %d characters", minQuestionLength))
	}
	return nil
}

func withMemory(question string, memory domain.CaseMemory) string {
	prefix := "Prior context from this thread:\n"
	for _, t := range memory.Turns {
		prefix += fmt.Sprintf("%s: %s\n", t.Role, t.Content)
	}
	return prefix + "\nCurrent question:\n" + question
}
