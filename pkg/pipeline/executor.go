package pipeline

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/codeready-toolchain/nitilex/pkg/synthesis"
)

// Executor bounds how many sessions may run through an Orchestrator
// concurrently, grounded on the teacher's pkg/queue worker-pool use of
// x/sync/semaphore (generalized here to one request per session rather
// than one task per queue item). A session that can't acquire a slot
// fails fast with a refusal rather than queueing indefinitely, since
// spec.md treats overload as a synthetic capacity result, not a hang.
type Executor struct {
	orchestrator *Orchestrator
	sem          *semaphore.Weighted
}

// NewExecutor creates an Executor wrapping o, allowing at most
// maxConcurrent sessions to run Execute at once.
func NewExecutor(o *Orchestrator, maxConcurrent int64) *Executor {
	return &Executor{orchestrator: o, sem: semaphore.NewWeighted(maxConcurrent)}
}

// Execute acquires a concurrency slot and runs q through the wrapped
// Orchestrator. If the orchestrator is already at capacity, it returns a
// refusal immediately without blocking the caller.
func (e *Executor) Execute(ctx context.Context, q domain.UserQuery) domain.Output {
	if !e.sem.TryAcquire(1) {
		return synthesis.Refuse(synthesis.ReasonCriticalIssue, "too many concurrent sessions, try again shortly")
	}
	defer e.sem.Release(1)

	return e.orchestrator.Execute(ctx, q)
}
