package corpusindex

import (
	"testing"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunks() []domain.CorpusChunk {
	return []domain.CorpusChunk{
		{
			Source: domain.LegalSource{ID: "s1", Title: "Penal Code", Section: "365", Citation: "Penal Code - Section 365"},
			Tokens: Tokenize("rape and sexual offences penal code"),
			Vector: []float32{1, 0, 0},
			Facets: []string{"criminal"},
		},
		{
			Source: domain.LegalSource{ID: "s2", Title: "Penal Code", Section: "366", Citation: "Penal Code - Section 366"},
			Tokens: Tokenize("procuration of minors penal code"),
			Vector: []float32{0, 1, 0},
			Facets: []string{"criminal"},
		},
		{
			Source: domain.LegalSource{ID: "s3", Title: "Civil Procedure Code", Section: "10", Citation: "Civil Procedure Code - Section 10"},
			Tokens: Tokenize("jurisdiction of civil courts"),
			Vector: []float32{0, 0, 1},
			Facets: []string{"civil"},
		},
	}
}

func TestSearch_KeywordMatchRanksHigher(t *testing.T) {
	idx := New(nil, nil)
	idx.Ingest(testChunks(), domain.EntityGraph{})

	hits := idx.Search("penal code rape", nil, nil, 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, "s1", hits[0].Source.ID)
}

func TestSearch_Deterministic(t *testing.T) {
	idx := New(nil, nil)
	idx.Ingest(testChunks(), domain.EntityGraph{})

	first := idx.Search("penal code", nil, nil, 10)
	second := idx.Search("penal code", nil, nil, 10)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Source.ID, second[i].Source.ID)
	}
}

func TestSearch_EmptyIndexReturnsNoHits(t *testing.T) {
	idx := New(nil, nil)
	hits := idx.Search("anything", nil, nil, 10)
	assert.Empty(t, hits)
}

func TestSearch_ZeroMaxResultsReturnsNoHits(t *testing.T) {
	idx := New(nil, nil)
	idx.Ingest(testChunks(), domain.EntityGraph{})
	hits := idx.Search("penal code", nil, nil, 0)
	assert.Empty(t, hits)
}

func TestSearch_FacetFiltersCandidateSet(t *testing.T) {
	idx := New(nil, nil)
	idx.Ingest(testChunks(), domain.EntityGraph{})

	hits := idx.Search("penal code jurisdiction civil courts", nil, []string{"civil"}, 10)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, "s3", h.Source.ID)
	}
}

func TestSearch_NoQueryVectorRanksByKeywordCountAlone(t *testing.T) {
	idx := New(nil, nil)
	idx.Ingest(testChunks(), domain.EntityGraph{})

	hits := idx.Search("penal code", nil, nil, 10)
	require.Len(t, hits, 2)
	assert.Equal(t, float64(2), hits[0].Score)
}

func TestSearch_MaxResultsBound(t *testing.T) {
	idx := New(nil, nil)
	idx.Ingest(testChunks(), domain.EntityGraph{})

	hits := idx.Search("penal code civil courts jurisdiction", nil, nil, 1)
	assert.Len(t, hits, 1)
}

func TestRelated_FollowsEntityGraph(t *testing.T) {
	idx := New(nil, nil)
	graph := domain.EntityGraph{Edges: []domain.EntityGraphEdge{
		{From: "s1", To: "s2", Kind: "cross_reference"},
	}}
	idx.Ingest(testChunks(), graph)

	related := idx.Related("s1")
	require.Len(t, related, 1)
	assert.Equal(t, "s2", related[0])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	idx := New(nil, nil)
	idx.Ingest(testChunks(), domain.EntityGraph{})
	require.NoError(t, idx.Save(dir))

	loaded := New(nil, nil)
	result, err := loaded.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ChunksIndexed)
	assert.Equal(t, idx.ChunkCount(), loaded.ChunkCount())
}

func TestMetrics_TrackIngest(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	idx := New(metrics, nil)
	idx.Ingest(testChunks(), domain.EntityGraph{})
	assert.Equal(t, 3, idx.ChunkCount())
}

type fakeAccelerator struct {
	ids []string
}

func (f *fakeAccelerator) Upsert(chunkID string, vector []float32) error { return nil }

func (f *fakeAccelerator) Search(vector []float32, topK int) ([]string, bool) {
	return f.ids, true
}

func TestSearch_AcceleratorWidensCandidateSet(t *testing.T) {
	accel := &fakeAccelerator{ids: []string{"s3"}}
	idx := New(nil, accel)
	idx.Ingest(testChunks(), domain.EntityGraph{})

	// "penal" matches only s1/s2 by keyword; s3 has no keyword overlap, so
	// without the accelerator it never enters the candidate set even though
	// its vector equals the query vector. The accelerator widens the
	// candidate set to include it.
	hits := idx.Search("penal", []float32{0, 0, 1}, nil, 10)

	var found bool
	for _, h := range hits {
		if h.Source.ID == "s3" {
			found = true
		}
	}
	assert.True(t, found)
}
