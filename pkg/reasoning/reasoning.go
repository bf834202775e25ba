// Package reasoning implements the Reasoning Module: it turns a query and
// its retrieved sources into a draft Reasoning, asking the configured LLM
// for a structured answer and falling back to a degraded, honest-about-
// its-own-failure Reasoning when the reply cannot be parsed.
//
// Message assembly is grounded on the teacher's
// pkg/agent/controller/synthesis.go buildMessages — a system message
// describing the agent's role, a user message carrying the task context —
// and the two-form parser is grounded on
// pkg/agent/controller/react_parser.go's forgiving section extraction.
package reasoning

import (
	"context"
	"fmt"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/codeready-toolchain/nitilex/pkg/llm"
	"github.com/codeready-toolchain/nitilex/pkg/shared/errkind"
)

const systemPrompt = `You are a legal reasoning assistant for Sri Lankan law. ` +
	`Answer strictly from the sources provided. Respond with a JSON object ` +
	`{"analysis": "...", "limitations": "...", "citations": ["..."]} or, if ` +
	`you cannot produce JSON, use the headings ANALYSIS:, LIMITATIONS:, and ` +
	`CITATIONS USED: in that order. Cite sources by their exact title and ` +
	`section. Never state a conclusion not supported by the sources.`

// defaultMaxPromptTokens bounds the prompt built from retrieved sources
// before truncation kicks in, independent of any one provider's context
// window — a conservative shared budget across both configured backends.
const defaultMaxPromptTokens = 6000

// Module is the Reasoning Module component.
type Module struct {
	client llm.Client
	model  string
	temp   float64
	enc    *tiktoken.Tiktoken // nil-safe: token counting is best-effort
}

// New creates a Module that calls client with the given model and
// temperature.
func New(client llm.Client, model string, temperature float64) *Module {
	enc, _ := tiktoken.GetEncoding("cl100k_base")
	return &Module{client: client, model: model, temp: temperature, enc: enc}
}

// Reason produces a Reasoning draft for question given sources. When the
// LLM call fails outright, the error is returned wrapped as
// ErrTransportUnavailable; when the call succeeds but the reply cannot be
// parsed, a degraded Reasoning is returned with HadParseFailure set and no
// error, per spec.md §4.4.
func (m *Module) Reason(ctx context.Context, question string, sources []domain.LegalSource) (domain.Reasoning, error) {
	sources = m.truncateToBudget(sources)

	userMsg := buildUserMessage(question, sources)
	resp, err := m.client.Generate(ctx, llm.Request{
		Model:       m.model,
		Temperature: m.temp,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: userMsg},
		},
	})
	if err != nil {
		return domain.Reasoning{}, errkind.Wrap(errkind.ErrTransportUnavailable, fmt.Errorf("reasoning LLM call failed: %w", err))
	}

	p := Parse(resp.Text)
	if !p.ok {
		return domain.Reasoning{
			Analysis:        "",
			Limitations:     "unparseable",
			HadParseFailure: true,
		}, nil
	}

	return domain.Reasoning{
		Analysis:        p.analysis,
		Limitations:     p.limitations,
		CitedSources:    p.citations,
		HadParseFailure: false,
	}, nil
}

func buildUserMessage(question string, sources []domain.LegalSource) string {
	var b strings.Builder
	b.WriteString("Question:\n")
	b.WriteString(question)
	b.WriteString("\n\nSources:\n")
	if len(sources) == 0 {
		b.WriteString("(no sources retrieved)\n")
	}
	for _, s := range sources {
		fmt.Fprintf(&b, "- %s: %s\n", s.Citation, s.Text)
	}
	return b.String()
}

// truncateToBudget drops the lowest-priority sources (assumed to arrive
// already ranked best-first by the Retrieval Gateway) so that the system
// prompt plus the kept source texts fit defaultMaxPromptTokens. The
// question and the per-source citation prefixes are not counted.
func (m *Module) truncateToBudget(sources []domain.LegalSource) []domain.LegalSource {
	if m.enc == nil {
		return sources
	}

	kept := make([]domain.LegalSource, 0, len(sources))
	total := len(m.enc.Encode(systemPrompt, nil, nil))
	for _, s := range sources {
		tokens := len(m.enc.Encode(s.Text, nil, nil))
		if total+tokens > defaultMaxPromptTokens {
			break
		}
		total += tokens
		kept = append(kept, s)
	}
	return kept
}
