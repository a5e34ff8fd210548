package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/keepsakelabs/keepsake-memory/internal/model"
	"github.com/keepsakelabs/keepsake-memory/internal/store/memstore"
)

func fixedNow() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func newTestTracker() *Tracker {
	tr := NewTracker(memstore.New().Stats())
	tr.now = fixedNow
	return tr
}

func event(ts time.Time, mood, location string) model.SnapEvent {
	return model.SnapEvent{
		EventID:     "ev-" + ts.Format(time.RFC3339Nano),
		SenderID:    "alice",
		RecipientID: "bob",
		Timestamp:   ts,
		Mood:        mood,
		Location:    location,
	}
}

func TestUpdate_CounterInvariant(t *testing.T) {
	tr := newTestTracker()
	ctx := context.Background()

	// a mix of this-week, this-month and historical events
	timestamps := []time.Time{
		fixedNow().Add(-time.Hour),
		fixedNow().Add(-3 * 24 * time.Hour),
		fixedNow().Add(-10 * 24 * time.Hour), // in month, outside week
		fixedNow().AddDate(0, -2, 0),         // outside both windows
		fixedNow().AddDate(-1, 0, 0),
	}
	for _, ts := range timestamps {
		rec, err := tr.Update(ctx, "alice", "bob", event(ts, "", ""))
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if rec.ThisWeekSnaps > rec.ThisMonthSnaps || rec.ThisMonthSnaps > rec.TotalSnaps {
			t.Fatalf("window invariant violated: week=%d month=%d total=%d",
				rec.ThisWeekSnaps, rec.ThisMonthSnaps, rec.TotalSnaps)
		}
	}

	rec, err := tr.stats.Get(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.TotalSnaps != 5 || rec.ThisMonthSnaps != 3 || rec.ThisWeekSnaps != 2 {
		t.Fatalf("unexpected counters: %+v", rec)
	}
}

func TestUpdate_LastSnapDateOverwrittenUnconditionally(t *testing.T) {
	tr := newTestTracker()
	ctx := context.Background()

	newer := fixedNow().Add(-time.Hour)
	older := fixedNow().Add(-48 * time.Hour)
	if _, err := tr.Update(ctx, "alice", "bob", event(newer, "", "")); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, err := tr.Update(ctx, "alice", "bob", event(older, "", ""))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !rec.LastSnapDate.Equal(older) {
		t.Fatalf("lastSnapDate should track the latest ingested event, got %v", rec.LastSnapDate)
	}
}

func TestUpdate_RecentMoodsDedupedAndCapped(t *testing.T) {
	tr := newTestTracker()
	ctx := context.Background()

	moods := []string{"happy", "silly", "happy", "chill", "excited", "cozy", "tired"}
	var rec *model.FriendshipStats
	var err error
	for i, m := range moods {
		rec, err = tr.Update(ctx, "alice", "bob", event(fixedNow().Add(-time.Duration(i)*time.Minute), m, ""))
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	want := []string{"tired", "cozy", "excited", "chill", "happy"}
	if len(rec.RecentMoods) != len(want) {
		t.Fatalf("expected %d moods, got %v", len(want), rec.RecentMoods)
	}
	for i := range want {
		if rec.RecentMoods[i] != want[i] {
			t.Fatalf("mood order mismatch: want %v, got %v", want, rec.RecentMoods)
		}
	}
}

func TestUpdate_RecentLocationsCappedAtThree(t *testing.T) {
	tr := newTestTracker()
	ctx := context.Background()

	for i, loc := range []string{"park", "beach", "cafe", "home"} {
		if _, err := tr.Update(ctx, "alice", "bob", event(fixedNow().Add(-time.Duration(i)*time.Minute), "", loc)); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	rec, err := tr.stats.Get(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := []string{"home", "cafe", "beach"}
	for i := range want {
		if rec.RecentLocations[i] != want[i] {
			t.Fatalf("location list mismatch: want %v, got %v", want, rec.RecentLocations)
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		week, month int
		want        model.Trend
	}{
		{8, 20, model.TrendGrowing},   // 8 > 5
		{2, 20, model.TrendDeclining}, // 2 < 3.33
		{4, 20, model.TrendStable},    // 3.33 <= 4 <= 5
		{5, 20, model.TrendStable},    // tie favors stable
		{0, 0, model.TrendStable},
		{1, 0, model.TrendGrowing},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("w%d_m%d", c.week, c.month), func(t *testing.T) {
			if got := ClassifyTrend(c.week, c.month); got != c.want {
				t.Fatalf("ClassifyTrend(%d,%d) = %s, want %s", c.week, c.month, got, c.want)
			}
		})
	}
}

func TestUpdate_InitializesStableTrend(t *testing.T) {
	tr := newTestTracker()
	// a single event inside the week: week=1, month=1, 1 > 0.25 -> growing
	rec, err := tr.Update(context.Background(), "alice", "bob", event(fixedNow().Add(-time.Hour), "", ""))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec.Trend != model.TrendGrowing {
		t.Fatalf("expected growing for a fresh active pair, got %s", rec.Trend)
	}
}
