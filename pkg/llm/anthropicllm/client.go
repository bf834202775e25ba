// Package anthropicllm implements llm.Client against Anthropic's Messages
// API, the primary LLM provider for the Reasoning and Validation modules.
// Grounded on the provider-client pattern used across Tangerg-lynx's
// provider packages, generalized to this module's non-streaming
// llm.Client interface.
package anthropicllm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/codeready-toolchain/nitilex/pkg/llm"
	"github.com/codeready-toolchain/nitilex/pkg/shared/errkind"
)

// Client wraps the Anthropic SDK client.
type Client struct {
	sdk anthropic.Client
}

// New creates a Client authenticated with apiKey.
func New(apiKey string) *Client {
	return &Client{sdk: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

// Generate sends req as a single Messages.New call and collects the
// concatenated text blocks of the reply.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	var system string
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			system = m.Content
		case llm.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case llm.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   maxTokens,
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return llm.Response{}, errkind.Wrap(errkind.ErrTransportUnavailable, fmt.Errorf("anthropic generate: %w", err))
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return llm.Response{
		Text:         text,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}

// Close is a no-op: the Anthropic SDK client holds no resources that
// require explicit release.
func (c *Client) Close() error { return nil }
