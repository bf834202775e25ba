package corpusindex

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/codeready-toolchain/nitilex/pkg/shared/errkind"
)

// IngestResult summarizes one ingest run, grounded on the teacher's
// ConfigStats startup-summary idiom (a small counts-plus-warnings struct
// logged once and also exposed for callers that want it, e.g. a future
// admin endpoint).
type IngestResult struct {
	ChunksIndexed int
	Warnings      []string
}

// Ingest replaces the index's contents with a freshly built snapshot from
// chunks, then atomically publishes it — existing readers keep using the
// old snapshot until they next call Search, never observing a partially
// built index.
func (idx *Index) Ingest(chunks []domain.CorpusChunk, graph domain.EntityGraph) IngestResult {
	next := &snapshot{
		chunks:   chunks,
		inverted: make(map[string][]int),
		facets:   make(map[string][]int),
		graph:    graph,
	}

	var warnings []string
	for i, c := range chunks {
		if len(c.Tokens) == 0 {
			warnings = append(warnings, fmt.Sprintf("chunk %s has no tokens after tokenization", c.Source.ID))
		}
		for _, t := range dedupe(c.Tokens) {
			next.inverted[t] = append(next.inverted[t], i)
		}
		for _, f := range c.Facets {
			next.facets[f] = append(next.facets[f], i)
		}
		if idx.qdrant != nil && len(c.Vector) > 0 {
			if err := idx.qdrant.Upsert(c.Source.ID, c.Vector); err != nil {
				warnings = append(warnings, fmt.Sprintf("qdrant upsert for %s failed, local index unaffected: %v", c.Source.ID, err))
			}
		}
	}

	idx.snapshot.Store(next)
	if idx.metrics != nil {
		idx.metrics.ChunksIndexed.Set(float64(len(chunks)))
		idx.metrics.IngestWarnings.Add(float64(len(warnings)))
	}

	return IngestResult{ChunksIndexed: len(chunks), Warnings: warnings}
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// persistedSnapshot is the gob-encodable on-disk form written under
// CORPUS_INDEX_DIR: one corpus.gob file holding the chunks (vectors
// included) and the entity graph. There are no separate chunks JSON,
// metadata JSON or vector blob files, and nothing is memory-mapped; Load
// decodes the whole file. Deterministic field order keeps repeated saves
// of the same snapshot byte-identical.
type persistedSnapshot struct {
	Chunks []domain.CorpusChunk
	Graph  domain.EntityGraph
}

// Save writes the current snapshot to <dir>/corpus.gob.
func (idx *Index) Save(dir string) error {
	snap := idx.snapshot.Load()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errkind.Wrap(errkind.ErrInternal, fmt.Errorf("create corpus index dir: %w", err))
	}

	path := filepath.Join(dir, "corpus.gob")
	f, err := os.Create(path)
	if err != nil {
		return errkind.Wrap(errkind.ErrInternal, fmt.Errorf("create corpus index file: %w", err))
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(persistedSnapshot{Chunks: snap.chunks, Graph: snap.graph}); err != nil {
		return errkind.Wrap(errkind.ErrInternal, fmt.Errorf("encode corpus index: %w", err))
	}
	return w.Flush()
}

// Load reads <dir>/corpus.gob and ingests it. A missing file is not an
// error: the index simply starts empty, and Search returns no hits until
// an ingest populates it.
func (idx *Index) Load(dir string) (IngestResult, error) {
	path := filepath.Join(dir, "corpus.gob")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return IngestResult{}, nil
	}
	if err != nil {
		return IngestResult{}, errkind.Wrap(errkind.ErrInternal, fmt.Errorf("open corpus index file: %w", err))
	}
	defer f.Close()

	var persisted persistedSnapshot
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&persisted); err != nil {
		return IngestResult{}, errkind.Wrap(errkind.ErrInternal, fmt.Errorf("decode corpus index: %w", err))
	}

	return idx.Ingest(persisted.Chunks, persisted.Graph), nil
}
