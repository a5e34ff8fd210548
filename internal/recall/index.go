// Package recall holds the embedding index: caption vectors keyed by event,
// with brute-force nearest-neighbor search.
package recall

import (
	"context"
	"sort"
	"sync"

	"github.com/keepsakelabs/keepsake-memory/internal/model"
)

// Match pairs an embedding record with its similarity to a query vector.
type Match struct {
	Record model.EmbeddingRecord
	Score  float64
}

// Index stores embedding records and answers top-k-by-cosine queries.
// Implementations may substitute an approximate structure as long as the
// top-k-by-cosine-similarity semantics are preserved.
type Index interface {
	Upsert(ctx context.Context, rec model.EmbeddingRecord) error
	// Search returns up to topK records owned by ownerID, most similar first.
	// friendID narrows the scan to one friendship when non-empty.
	Search(ctx context.Context, ownerID, friendID string, vec []float32, topK int) ([]Match, error)
}

// InMemoryIndex is the brute-force O(n)-per-query implementation. Acceptable
// at the scale of a single user's friendship history.
type InMemoryIndex struct {
	mu      sync.RWMutex
	records map[string]model.EmbeddingRecord
}

func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{records: make(map[string]model.EmbeddingRecord)}
}

func (ix *InMemoryIndex) Upsert(_ context.Context, rec model.EmbeddingRecord) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	rec.Vector = append([]float32(nil), rec.Vector...)
	ix.records[rec.RecordID] = rec
	return nil
}

func (ix *InMemoryIndex) Search(_ context.Context, ownerID, friendID string, vec []float32, topK int) ([]Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if topK <= 0 {
		return nil, nil
	}
	matches := make([]Match, 0, len(ix.records))
	for _, rec := range ix.records {
		if rec.OwnerID != ownerID {
			continue
		}
		if friendID != "" && rec.FriendID != friendID {
			continue
		}
		matches = append(matches, Match{Record: rec, Score: Cosine(vec, rec.Vector)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
