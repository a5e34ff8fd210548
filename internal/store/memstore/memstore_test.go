package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keepsakelabs/keepsake-memory/internal/model"
)

func TestEventsWindowAndDirectionBlind(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		sender, recipient := "alice", "bob"
		if i%2 == 1 {
			sender, recipient = "bob", "alice"
		}
		ev := model.SnapEvent{
			EventID:     string(rune('a' + i)),
			SenderID:    sender,
			RecipientID: recipient,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Events().Append(ctx, &ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	// Both directions read the same undirected stream.
	got, err := s.Events().ListForPair(ctx, "bob", "alice", 0)
	if err != nil {
		t.Fatalf("ListForPair: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[0].EventID != "a" || got[4].EventID != "e" {
		t.Fatalf("events out of order: first=%s last=%s", got[0].EventID, got[4].EventID)
	}

	// Limit keeps the newest events, still oldest first.
	tail, err := s.Events().ListForPair(ctx, "alice", "bob", 2)
	if err != nil {
		t.Fatalf("ListForPair limited: %v", err)
	}
	if len(tail) != 2 || tail[0].EventID != "d" || tail[1].EventID != "e" {
		t.Fatalf("tail = %+v, want events d,e", tail)
	}

	n, err := s.Events().CountForPair(ctx, "bob", "alice")
	if err != nil || n != 5 {
		t.Fatalf("CountForPair = %d, %v, want 5, nil", n, err)
	}
}

func TestStatsRoundTripIsolatesCaller(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := model.FriendshipStats{
		OwnerID:     "alice",
		FriendID:    "bob",
		TotalSnaps:  3,
		RecentMoods: []string{"happy", "excited"},
		Trend:       model.TrendGrowing,
	}
	if err := s.Stats().Put(ctx, &rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Mutating the caller's slice after Put must not leak into the store.
	rec.RecentMoods[0] = "mutated"

	got, err := s.Stats().Get(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RecentMoods[0] != "happy" {
		t.Fatalf("stored moods aliased caller slice: %v", got.RecentMoods)
	}

	// Directed records are independent.
	if _, err := s.Stats().Get(ctx, "bob", "alice"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("reverse direction err = %v, want ErrNotFound", err)
	}

	owned, err := s.Stats().ListByOwner(ctx, "alice")
	if err != nil || len(owned) != 1 {
		t.Fatalf("ListByOwner = %d records, %v, want 1, nil", len(owned), err)
	}
}

func TestTimelinesAbsentThenPresent(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Timelines().Get(ctx, "alice", "bob"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	tl := model.FriendshipTimeline{OwnerID: "alice", FriendID: "bob", FriendName: "Bob R."}
	if err := s.Timelines().Put(ctx, &tl); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Timelines().Get(ctx, "alice", "bob")
	if err != nil || got.FriendName != "Bob R." {
		t.Fatalf("Get = %+v, %v", got, err)
	}
}

func TestProfilesIgnoreEmptyNames(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Profiles().Upsert(ctx, "alice", ""); err != nil {
		t.Fatalf("Upsert empty: %v", err)
	}
	if _, err := s.Profiles().DisplayName(ctx, "alice"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after empty upsert", err)
	}

	if err := s.Profiles().Upsert(ctx, "alice", "Alice K."); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	name, err := s.Profiles().DisplayName(ctx, "alice")
	if err != nil || name != "Alice K." {
		t.Fatalf("DisplayName = %q, %v", name, err)
	}
}
