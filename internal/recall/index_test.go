package recall

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/keepsakelabs/keepsake-memory/internal/model"
)

func TestCosine_SymmetricAndSelfSimilar(t *testing.T) {
	a := []float32{0.3, 0.1, 0.9}
	b := []float32{0.5, 0.5, 0.2}

	if got := Cosine(a, b); math.Abs(got-Cosine(b, a)) > 1e-12 {
		t.Fatalf("cosine not symmetric: %v vs %v", got, Cosine(b, a))
	}
	if got := Cosine(a, a); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("self-similarity should be 1.0, got %v", got)
	}
}

func TestCosine_ZeroMagnitudeScoresZero(t *testing.T) {
	zero := []float32{0, 0, 0}
	if got := Cosine(zero, []float32{1, 2, 3}); got != 0 {
		t.Fatalf("zero-magnitude vector should score 0, got %v", got)
	}
	if got := Cosine(nil, []float32{1}); got != 0 {
		t.Fatalf("empty vector should score 0, got %v", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors should score 0, got %v", got)
	}
}

func rec(id, owner, friend string, vec []float32) model.EmbeddingRecord {
	return model.EmbeddingRecord{RecordID: id, EventID: "ev-" + id, OwnerID: owner, FriendID: friend, Vector: vec}
}

func TestInMemoryIndex_TopKOrderingAndCap(t *testing.T) {
	ix := NewInMemoryIndex()
	ctx := context.Background()

	query := []float32{1, 0}
	for i := 0; i < 15; i++ {
		// progressively less similar to the query
		angle := float64(i) * 0.1
		v := []float32{float32(math.Cos(angle)), float32(math.Sin(angle))}
		if err := ix.Upsert(ctx, rec(fmt.Sprintf("r%02d", i), "alice", "bob", v)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	matches, err := ix.Search(ctx, "alice", "", query, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 10 {
		t.Fatalf("expected top-10 cap, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Fatalf("matches not in descending score order at %d", i)
		}
	}
	if matches[0].Record.RecordID != "r00" {
		t.Fatalf("best match should be the aligned vector, got %s", matches[0].Record.RecordID)
	}
}

func TestInMemoryIndex_OwnerAndFriendScoping(t *testing.T) {
	ix := NewInMemoryIndex()
	ctx := context.Background()
	v := []float32{1, 1}

	_ = ix.Upsert(ctx, rec("a", "alice", "bob", v))
	_ = ix.Upsert(ctx, rec("b", "alice", "carol", v))
	_ = ix.Upsert(ctx, rec("c", "dave", "bob", v))

	all, err := ix.Search(ctx, "alice", "", v, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("owner scope: expected 2, got %d", len(all))
	}

	scoped, err := ix.Search(ctx, "alice", "bob", v, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Record.RecordID != "a" {
		t.Fatalf("friend scope: expected only record a, got %+v", scoped)
	}
}

func TestInMemoryIndex_UpsertCopiesVector(t *testing.T) {
	ix := NewInMemoryIndex()
	ctx := context.Background()
	v := []float32{1, 0}
	_ = ix.Upsert(ctx, rec("a", "alice", "bob", v))
	v[0] = 0 // caller mutation must not reach the index

	matches, err := ix.Search(ctx, "alice", "", []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if math.Abs(matches[0].Score-1.0) > 1e-9 {
		t.Fatalf("stored vector aliased caller slice, score %v", matches[0].Score)
	}
}
