package retrieval

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/nitilex/pkg/corpusindex"
	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *corpusindex.Index {
	t.Helper()
	idx := corpusindex.New(nil, nil)
	idx.Ingest([]domain.CorpusChunk{
		{
			Source: domain.LegalSource{ID: "s1", Title: "Penal Code", Section: "365"},
			Tokens: corpusindex.Tokenize("rape penal code"),
		},
	}, domain.EntityGraph{})
	return idx
}

func TestGateway_RetrieveOK(t *testing.T) {
	g := NewGateway(newTestIndex(t), 4)
	result := g.Retrieve(context.Background(), "penal code", nil, nil, 5)
	require.Equal(t, domain.RetrievalOK, result.Status)
	assert.Len(t, result.Sources, 1)
}

func TestGateway_RetrieveEmptyOnNoMatch(t *testing.T) {
	g := NewGateway(newTestIndex(t), 4)
	result := g.Retrieve(context.Background(), "completely unrelated topic xyz", nil, nil, 5)
	assert.Equal(t, domain.RetrievalEmpty, result.Status)
	assert.Empty(t, result.Sources)
}

func TestGateway_BackpressureYieldsEmpty(t *testing.T) {
	g := NewGateway(newTestIndex(t), 1)
	require.True(t, g.sem.TryAcquire(1))
	defer g.sem.Release(1)

	result := g.Retrieve(context.Background(), "penal code", nil, nil, 5)
	assert.Equal(t, domain.RetrievalEmpty, result.Status)
	assert.NotEmpty(t, result.Warning)
}

func TestGateway_RetrieveWithZeroMaxSourcesIsAlwaysEmpty(t *testing.T) {
	g := NewGateway(newTestIndex(t), 4)
	result := g.Retrieve(context.Background(), "penal code", nil, nil, 0)
	assert.Equal(t, domain.RetrievalEmpty, result.Status)
	assert.Empty(t, result.Sources)
	assert.NotEmpty(t, result.Warning)
}

func TestClampMaxSources(t *testing.T) {
	assert.Equal(t, 0, clampMaxSources(0))
	assert.Equal(t, 0, clampMaxSources(-3))
	assert.Equal(t, 1, clampMaxSources(1))
	assert.Equal(t, 5, clampMaxSources(5))
	assert.Equal(t, 20, clampMaxSources(20))
	assert.Equal(t, 20, clampMaxSources(500))
}

func TestGateway_Healthy(t *testing.T) {
	g := NewGateway(newTestIndex(t), 4)
	healthy, count := g.Healthy()
	assert.True(t, healthy)
	assert.Equal(t, 1, count)
}
