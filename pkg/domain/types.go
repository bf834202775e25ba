// Package domain contains the core data model shared by every stage of the
// reasoning pipeline: the inbound query, the plan, retrieved sources, the
// reasoner's draft, the validator's verdict, and the final tagged-union
// output. None of these types know how to execute anything; they are pure
// values passed between pipeline stages.
package domain

import "time"

// UserQuery is the inbound request to the pipeline.
type UserQuery struct {
	SessionID string
	Question  string
	IncidentID string // optional; set for /incidents/{id}/agent requests
	UserID     string // optional; scopes CaseMemory lookups
	ReceivedAt time.Time
}

// PlanStep names one stage of a deterministic execution plan.
type PlanStep string

const (
	StepPlan     PlanStep = "plan"
	StepRetrieve PlanStep = "retrieve"
	StepReason   PlanStep = "reason"
	StepValidate PlanStep = "validate"
	StepFormat   PlanStep = "format"
)

// Plan is the fixed, deterministic sequence of steps the orchestrator will
// run for a query. Planning never branches on query content; spec.md rules
// out conditional, content-dependent planning in favor of a single fixed
// sequence plus upfront input rejection.
type Plan struct {
	Steps []PlanStep
}

// LegalSource is one unit of the legal corpus: a statute section, a case
// holding, or a regulation clause.
type LegalSource struct {
	ID       string
	Title    string // e.g. "Penal Code of Sri Lanka"
	Section  string // e.g. "Section 365"
	Text     string
	Citation string // canonical "Title - Section" form used for matching
}

// RetrievalResult is what the Retrieval Gateway hands to the Reasoning
// Module. Status is always one of the two values below; Sources is empty
// whenever Status is not RetrievalOK.
type RetrievalResult struct {
	Status  RetrievalStatus
	Sources []LegalSource
	Warning string // set when retrieval was disabled, overloaded or failed; empty on RetrievalOK and on a plain no-match
}

type RetrievalStatus string

const (
	RetrievalOK    RetrievalStatus = "ok"
	RetrievalEmpty RetrievalStatus = "empty"
)

// Reasoning is the reasoner's draft: prose analysis plus the citations it
// claims to have used. HadParseFailure records that the LLM's output could
// not be parsed into either supported form, in which case Analysis is
// empty and Limitations reads "unparseable".
type Reasoning struct {
	Analysis        string
	Limitations     string
	CitedSources    []string // citation strings as the reasoner wrote them
	HadParseFailure bool
}

// ValidationSeverity distinguishes issues that block synthesis from ones
// that are merely surfaced to the caller.
type ValidationSeverity string

const (
	SeverityCritical ValidationSeverity = "critical"
	SeverityWarning  ValidationSeverity = "warning"
	SeverityInfo     ValidationSeverity = "info"
)

// ValidationIssue is one finding from the Validation Gatekeeper. Code is one
// of the enumerated kinds: missing_sources, missing_citation, hallucination,
// parse_failure, insufficient_analysis, missing_limitations, inconsistency,
// validator_error.
type ValidationIssue struct {
	Code     string
	Message  string
	Severity ValidationSeverity
}

// ValidationStatus is the Gatekeeper's three-state verdict.
type ValidationStatus string

const (
	VerdictPass ValidationStatus = "pass"
	VerdictWarn ValidationStatus = "warn"
	VerdictFail ValidationStatus = "fail"
)

// ValidationVerdict is the Gatekeeper's decision. Status is "fail" whenever
// any critical issue was found, "warn" when only warnings/info remain, and
// "pass" otherwise. NoHallucinationDetected and AllCitationsVerified let
// callers surface those two boundary properties independently of Status.
type ValidationVerdict struct {
	Status                  ValidationStatus
	Issues                  []ValidationIssue
	Confidence              float64
	AllCitationsVerified    bool
	NoHallucinationDetected bool
}

// OutputKind distinguishes the two shapes Output can take. Callers switch
// on Kind rather than on nil-ness of either payload field.
type OutputKind string

const (
	OutputSynthesized OutputKind = "synthesized"
	OutputRefusal     OutputKind = "refusal"
)

// Output is the tagged-union result of the pipeline: either a Synthesized
// answer or a Refusal, never both, never neither.
type Output struct {
	Kind        OutputKind
	Synthesized *Synthesized
	Refusal     *Refusal
}

// Synthesized is the formatted, citation-annotated answer shown to the user.
type Synthesized struct {
	Analysis    string
	Citations   []string
	Disclaimer  string
	Limitations string
}

// Refusal is returned whenever validation fails critically (an empty
// retrieval included, which fails on missing_sources), or the request is
// rejected before validation runs. Issues carries the critical findings
// that drove a validation-triggered refusal; it is empty for refusals that
// never reached the Validation Gatekeeper (e.g. an invalid request, a
// failed reasoning call, or no free concurrency slot).
type Refusal struct {
	Reason string
	Detail string
	Issues []ValidationIssue
}

// AuditRecord is one entry in a session's append-only audit trail. Every
// pipeline step emits exactly one of these.
type AuditRecord struct {
	SessionID string
	Step      PlanStep
	Timestamp time.Time
	Status    string // "ok", "warning", "error"
	Detail    string
	Data      map[string]any
}

// CaseMemory is a bounded window of the most recent prior turns for an
// incident or user, ordered oldest-first, read on every pipeline invocation
// (through the optional short-lived cache when one is configured).
type CaseMemory struct {
	IncidentID string
	UserID     string
	Turns      []CaseMemoryTurn
}

// CaseMemoryTurn is one stored question/answer pair.
type CaseMemoryTurn struct {
	Role      string // "user" | "assistant" | "system"
	Content   string
	CreatedAt time.Time
}

// CorpusChunk is the unit of text the Corpus Index stores, tokenizes, and
// scores against a query.
type CorpusChunk struct {
	Source LegalSource
	Tokens []string
	Vector []float32
	Facets []string
}

// EntityGraphEdge is one directed relation between two legal entities
// (e.g. a case citing a statute section).
type EntityGraphEdge struct {
	From string
	To   string
	Kind string
}

// EntityGraph is the corpus's directed graph of legal entity relations.
type EntityGraph struct {
	Edges []EntityGraphEdge
}
