// Package corpusindex implements the hybrid keyword + vector + graph
// index over the legal corpus. A snapshot (inverted index, vector store,
// facet index, entity graph) is built once at startup or reload time and
// then swapped in atomically, so searches never observe a half-built
// index and readers never block a writer — the many-reader/one-writer
// policy spec.md §5 requires. The swap idiom is grounded on the
// teacher's registry packages (pkg/config/llm.go, pkg/masking/service.go),
// which build a new map and then publish it under a lock rather than
// mutating state in place; here the publish is a lock-free atomic
// pointer store since readers must never block.
package corpusindex

import (
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/samber/lo"
)

// Index is the process-wide corpus index. The zero value is not usable;
// construct with New.
type Index struct {
	snapshot atomic.Pointer[snapshot]
	metrics  *Metrics
	qdrant   VectorAccelerator // optional, nil-safe
}

type snapshot struct {
	chunks   []domain.CorpusChunk
	inverted map[string][]int // token -> chunk indices
	facets   map[string][]int // facet -> chunk indices
	graph    domain.EntityGraph
}

// VectorAccelerator is the optional interface an external ANN service
// (e.g. Qdrant) implements. A nil VectorAccelerator means the local
// brute-force cosine scan is used exclusively; it remains the source of
// truth even when an accelerator is configured.
type VectorAccelerator interface {
	Upsert(chunkID string, vector []float32) error
	Search(vector []float32, topK int) (chunkIDs []string, ok bool)
}

// New creates an empty Index. Call Load or Ingest to populate it before
// serving searches.
func New(metrics *Metrics, accel VectorAccelerator) *Index {
	idx := &Index{metrics: metrics, qdrant: accel}
	idx.snapshot.Store(&snapshot{
		inverted: make(map[string][]int),
		facets:   make(map[string][]int),
	})
	return idx
}

// Hit is one scored search result.
type Hit struct {
	Source domain.LegalSource
	Score  float64
}

// Search runs the hybrid scoring formula over the current snapshot: facets
// are a filter that intersects the candidate set (not a score component);
// within that filtered set, score is cosine_similarity(query_vec, chunk)
// boosted 1.2x when any query token matches the chunk's tokens, or — when
// no query vector is given — the raw count of matching query tokens.
// Returns at most maxResults hits ordered by score descending, with ties
// broken by source ID ascending for determinism (Testable Property:
// identical queries against an unchanged index always return the sources
// in the same order). maxResults <= 0 means no sources are wanted at all.
func (idx *Index) Search(queryText string, queryVector []float32, facets []string, maxResults int) []Hit {
	if maxResults <= 0 {
		return nil
	}

	if idx.metrics != nil {
		start := time.Now()
		defer func() { idx.metrics.SearchLatency.Observe(time.Since(start).Seconds()) }()
	}

	snap := idx.snapshot.Load()
	if len(snap.chunks) == 0 {
		return nil
	}

	queryTokens := Tokenize(queryText)
	queryTokenSet := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		queryTokenSet[t] = struct{}{}
	}

	candidateSet := make(map[int]struct{})
	for _, t := range queryTokens {
		for _, ci := range snap.inverted[t] {
			candidateSet[ci] = struct{}{}
		}
	}

	// An accelerator widens the candidate set with its own ANN result
	// rather than replacing the local scan — the local cosine computation
	// remains the scoring source of truth, so a degraded or stale
	// accelerator can only miss a widening opportunity, never corrupt a
	// score.
	if idx.qdrant != nil && len(queryVector) > 0 {
		if ids, ok := idx.qdrant.Search(queryVector, maxResults*4); ok {
			idByChunk := make(map[string]int, len(snap.chunks))
			for i, c := range snap.chunks {
				idByChunk[c.Source.ID] = i
			}
			for _, id := range ids {
				if ci, found := idByChunk[id]; found {
					candidateSet[ci] = struct{}{}
				}
			}
		}
	}

	// A query that matches no keyword (and no accelerator hit) still gets
	// a vector/facet pass over the whole corpus — keyword match is not
	// required for a source to be considered.
	if len(candidateSet) == 0 {
		for i := range snap.chunks {
			candidateSet[i] = struct{}{}
		}
	}

	if len(facets) > 0 {
		facetSet := make(map[string]struct{}, len(facets))
		for _, f := range facets {
			facetSet[f] = struct{}{}
		}
		for ci := range candidateSet {
			if !facetMatch(facetSet, snap.chunks[ci].Facets) {
				delete(candidateSet, ci)
			}
		}
	}

	hits := make([]Hit, 0, len(candidateSet))
	for ci := range candidateSet {
		chunk := snap.chunks[ci]

		matchCount := keywordMatchCount(queryTokenSet, chunk.Tokens)

		var score float64
		if len(queryVector) > 0 {
			score = cosineSimilarity(queryVector, chunk.Vector)
			if matchCount > 0 {
				score *= 1.2
			}
		} else {
			score = float64(matchCount)
		}

		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{Source: chunk.Source, Score: score})
	}

	hits = lo.UniqBy(hits, func(h Hit) string { return h.Source.ID })

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Source.ID < hits[j].Source.ID
	})

	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits
}

// Related returns the IDs directly reachable from sourceID in the entity
// graph, used to expand retrieval beyond pure text/vector similarity
// (e.g. a case citing a statute section).
func (idx *Index) Related(sourceID string) []string {
	snap := idx.snapshot.Load()
	var out []string
	for _, e := range snap.graph.Edges {
		if e.From == sourceID {
			out = append(out, e.To)
		}
	}
	return out
}

// ChunkCount reports how many chunks the current snapshot holds, used by
// the /health endpoint and ingest status reporting.
func (idx *Index) ChunkCount() int {
	return len(idx.snapshot.Load().chunks)
}

// keywordMatchCount counts the chunk's distinct tokens that also appear in
// the query's token set.
func keywordMatchCount(queryTokens map[string]struct{}, chunkTokens []string) int {
	if len(queryTokens) == 0 || len(chunkTokens) == 0 {
		return 0
	}
	matched := 0
	seen := make(map[string]struct{})
	for _, t := range chunkTokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			matched++
		}
	}
	return matched
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// facetMatch reports whether chunkFacets intersects query at all. An empty
// query matches everything — no facet filter was requested.
func facetMatch(query map[string]struct{}, chunkFacets []string) bool {
	if len(query) == 0 {
		return true
	}
	for _, f := range chunkFacets {
		if _, ok := query[f]; ok {
			return true
		}
	}
	return false
}

// Tokenize lowercases and whitespace/punctuation-splits text. Kept
// deliberately simple (no stemming, no stop-word removal) so search
// results are deterministic and reproducible across runs — spec.md rules
// out any corpus processing step whose output could vary between
// otherwise-identical runs.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
