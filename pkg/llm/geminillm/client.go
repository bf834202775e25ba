// Package geminillm implements llm.Client against Google's Gemini API via
// google.golang.org/genai, the secondary LLM provider selectable with
// LLM_PROVIDER=secondary. Grounded on the same provider-client pattern as
// pkg/llm/anthropicllm.
package geminillm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/codeready-toolchain/nitilex/pkg/llm"
	"github.com/codeready-toolchain/nitilex/pkg/shared/errkind"
)

// Client wraps the genai SDK client.
type Client struct {
	sdk *genai.Client
}

// New creates a Client authenticated with apiKey against the public
// Gemini API backend.
func New(ctx context.Context, apiKey string) (*Client, error) {
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrInternal, fmt.Errorf("create genai client: %w", err))
	}
	return &Client{sdk: sdk}, nil
}

// Generate flattens req's messages into a single prompt (Gemini's simple
// text-generation call does not take a role-tagged history the way the
// Messages API does) and issues one GenerateContent call.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	var prompt strings.Builder
	for _, m := range req.Messages {
		if m.Role == llm.RoleSystem {
			prompt.WriteString(m.Content)
			prompt.WriteString("\n\n")
		}
	}
	for _, m := range req.Messages {
		if m.Role != llm.RoleSystem {
			prompt.WriteString(string(m.Role))
			prompt.WriteString(": ")
			prompt.WriteString(m.Content)
			prompt.WriteString("\n")
		}
	}

	temp := float32(req.Temperature)
	config := &genai.GenerateContentConfig{Temperature: &temp}

	resp, err := c.sdk.Models.GenerateContent(ctx, req.Model, genai.Text(prompt.String()), config)
	if err != nil {
		return llm.Response{}, errkind.Wrap(errkind.ErrTransportUnavailable, fmt.Errorf("gemini generate: %w", err))
	}

	var inputTokens, outputTokens int
	if resp.UsageMetadata != nil {
		inputTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return llm.Response{
		Text:         resp.Text(),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}, nil
}

// Close is a no-op: the genai client holds no resources requiring
// explicit release.
func (c *Client) Close() error { return nil }
