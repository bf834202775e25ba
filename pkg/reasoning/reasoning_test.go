package reasoning

import (
	"context"
	"errors"
	"testing"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/codeready-toolchain/nitilex/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	resp llm.Response
	err  error
}

func (f *fakeClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	return f.resp, f.err
}

func (f *fakeClient) Close() error { return nil }

func TestReason_JSONResponse(t *testing.T) {
	client := &fakeClient{resp: llm.Response{Text: `{"analysis":"x leads to y","limitations":"none","citations":["Penal Code - Section 365"]}`}}
	m := New(client, "test-model", 0)

	r, err := m.Reason(context.Background(), "what is the penalty?", []domain.LegalSource{
		{ID: "s1", Citation: "Penal Code - Section 365", Text: "text"},
	})
	require.NoError(t, err)
	assert.Equal(t, "x leads to y", r.Analysis)
	assert.False(t, r.HadParseFailure)
	assert.Contains(t, r.CitedSources, "Penal Code - Section 365")
}

func TestReason_SemiStructuredFallback(t *testing.T) {
	client := &fakeClient{resp: llm.Response{Text: "ANALYSIS:\nsome analysis text\nLIMITATIONS:\nsome limitation\nCITATIONS USED:\n- Penal Code - Section 365"}}
	m := New(client, "test-model", 0)

	r, err := m.Reason(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "some analysis text", r.Analysis)
	assert.False(t, r.HadParseFailure)
}

func TestReason_UnparseableResponseDegrades(t *testing.T) {
	client := &fakeClient{resp: llm.Response{Text: "garbage response with no structure"}}
	m := New(client, "test-model", 0)

	r, err := m.Reason(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.True(t, r.HadParseFailure)
	assert.Empty(t, r.Analysis)
}

func TestReason_TransportErrorWrapped(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	m := New(client, "test-model", 0)

	_, err := m.Reason(context.Background(), "q", nil)
	require.Error(t, err)
}
