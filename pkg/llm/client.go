// Package llm defines the provider-agnostic client interface the
// Reasoning and Validation modules call. It is grounded on the teacher's
// pkg/agent/llm_client.go LLMClient interface — role-typed conversation
// messages, a provider-selected configuration — but simplified to a
// single non-streaming call: the agents here make one reasoning or one
// validation call each, never a multi-turn ReAct loop, so the teacher's
// channel-of-Chunk streaming API would be unused machinery.
package llm

import "context"

// Role names a message's place in the conversation, mirroring the
// teacher's RoleSystem/RoleUser/RoleAssistant constants.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in the conversation sent to the provider.
type Message struct {
	Role    Role
	Content string
}

// Request is a single-shot generation request.
type Request struct {
	SessionID   string
	Model       string
	Temperature float64
	Messages    []Message
	MaxTokens   int
}

// Response is the provider's reply to a Request.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client is implemented by each concrete LLM provider backend.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Close() error
}
