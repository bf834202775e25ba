// Package retrieval wraps the corpus index behind the health, backpressure
// and failure-isolation policy spec.md §4.3 and §5 require: a bounded
// number of concurrent searches, and a circuit breaker that converts
// repeated corpus-index failures into fast, synthetic empty results
// instead of letting every caller retry a dead backend.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/nitilex/pkg/corpusindex"
	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/codeready-toolchain/nitilex/pkg/shared/errkind"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"
)

// Gateway is the Retrieval Gateway component: it owns the bounded
// concurrency and failure-isolation policy around a corpusindex.Index.
type Gateway struct {
	index *corpusindex.Index
	sem   *semaphore.Weighted
	cb    *gobreaker.CircuitBreaker
}

// NewGateway creates a Gateway bounding concurrent searches to maxInflight
// and wrapping index calls in a circuit breaker, grounded on
// jordigilh-kubernaut's sony/gobreaker usage for guarding external calls.
func NewGateway(index *corpusindex.Index, maxInflight int) *Gateway {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "corpus-index",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Gateway{
		index: index,
		sem:   semaphore.NewWeighted(int64(maxInflight)),
		cb:    cb,
	}
}

// maxMaxSources and minMaxSources bound the clamped range for max_sources:
// [1, 20]. A request for zero (or fewer) sources never reaches the index —
// it always yields RetrievalEmpty, since asking the corpus for nothing is
// indistinguishable from retrieval being disabled.
const (
	minMaxSources = 1
	maxMaxSources = 20
)

// clampMaxSources bounds n to [1, 20], except it leaves non-positive values
// alone so the caller can distinguish "disabled" (<=0) from "clamp up to
// the minimum".
func clampMaxSources(n int) int {
	if n <= 0 {
		return 0
	}
	if n > maxMaxSources {
		return maxMaxSources
	}
	if n < minMaxSources {
		return minMaxSources
	}
	return n
}

// Retrieve searches the corpus for sources relevant to query, honoring
// spec.md's three outcomes: a populated RetrievalOK result, a
// RetrievalEmpty result with no sources when nothing matches or the
// backend is unavailable, and backpressure overflow which also yields a
// synthetic empty result rather than blocking the caller. maxSources is
// clamped to [1, 20]; a non-positive maxSources disables retrieval outright
// and always yields RetrievalEmpty.
func (g *Gateway) Retrieve(ctx context.Context, query string, queryVector []float32, facets []string, maxSources int) domain.RetrievalResult {
	maxSources = clampMaxSources(maxSources)
	if maxSources == 0 {
		return domain.RetrievalResult{
			Status:  domain.RetrievalEmpty,
			Warning: "max_sources is zero, retrieval disabled",
		}
	}

	if !g.sem.TryAcquire(1) {
		return domain.RetrievalResult{
			Status:  domain.RetrievalEmpty,
			Warning: "retrieval backpressure: too many in-flight searches",
		}
	}
	defer g.sem.Release(1)

	result, err := g.cb.Execute(func() (any, error) {
		hits := g.index.Search(query, queryVector, facets, maxSources)
		return hits, nil
	})
	if err != nil {
		return domain.RetrievalResult{
			Status:  domain.RetrievalEmpty,
			Warning: errkind.Wrap(errkind.ErrTransportUnavailable, fmt.Errorf("corpus index unavailable: %w", err)).Error(),
		}
	}

	hits, _ := result.([]corpusindex.Hit)
	if len(hits) == 0 {
		return domain.RetrievalResult{Status: domain.RetrievalEmpty}
	}

	sources := make([]domain.LegalSource, 0, len(hits))
	for _, h := range hits {
		sources = append(sources, h.Source)
	}
	return domain.RetrievalResult{Status: domain.RetrievalOK, Sources: sources}
}

// Healthy reports whether the corpus index backend is currently usable —
// the circuit breaker is not open — plus the indexed chunk count, served
// by the /health endpoint.
func (g *Gateway) Healthy() (bool, int) {
	return g.cb.State() != gobreaker.StateOpen, g.index.ChunkCount()
}
