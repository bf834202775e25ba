package validation

import (
	"context"
	"errors"

	"github.com/codeready-toolchain/nitilex/pkg/llm"
)

type erroringClient struct{}

func (e *erroringClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{}, errors.New("provider unavailable")
}

func (e *erroringClient) Close() error { return nil }
