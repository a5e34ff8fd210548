// Package stats maintains the per-directed-pair friendship counters and the
// relationship trend classification.
package stats

import (
	"context"
	"errors"
	"time"

	"github.com/keepsakelabs/keepsake-memory/internal/model"
	"github.com/keepsakelabs/keepsake-memory/internal/store"
)

const (
	maxRecentMoods     = 5
	maxRecentLocations = 3
)

// Tracker applies snap events to directed-pair statistics records.
type Tracker struct {
	stats store.Stats

	// now is swappable for tests; windows are computed from wall-clock time at
	// update time, not event time. Back-dated ingestion after a month rollover
	// under-counts; preserved deliberately for source compatibility.
	now func() time.Time
}

func NewTracker(s store.Stats) *Tracker {
	return &Tracker{stats: s, now: time.Now}
}

// Update fetches or initializes the (owner, friend) record, applies the event
// and stores the result. Returns the updated record.
func (t *Tracker) Update(ctx context.Context, ownerID, friendID string, ev model.SnapEvent) (*model.FriendshipStats, error) {
	rec, err := t.stats.Get(ctx, ownerID, friendID)
	if errors.Is(err, model.ErrNotFound) {
		rec = &model.FriendshipStats{OwnerID: ownerID, FriendID: friendID, Trend: model.TrendStable}
	} else if err != nil {
		return nil, err
	}

	now := t.now()
	rec.TotalSnaps++
	if sameCalendarMonth(ev.Timestamp, now) {
		rec.ThisMonthSnaps++
	}
	if ev.Timestamp.After(now.Add(-7 * 24 * time.Hour)) {
		rec.ThisWeekSnaps++
	}
	// overwritten unconditionally; a late-arriving older event wins
	rec.LastSnapDate = ev.Timestamp

	if ev.Mood != "" {
		rec.RecentMoods = pushRecent(rec.RecentMoods, ev.Mood, maxRecentMoods)
	}
	if ev.Location != "" {
		rec.RecentLocations = pushRecent(rec.RecentLocations, ev.Location, maxRecentLocations)
	}

	rec.Trend = ClassifyTrend(rec.ThisWeekSnaps, rec.ThisMonthSnaps)

	if err := t.stats.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ClassifyTrend applies the ratio heuristic: growing when the trailing week
// outpaces a quarter of the month, declining when it trails a sixth of it.
// Ties favor stable.
func ClassifyTrend(weekSnaps, monthSnaps int) model.Trend {
	w := float64(weekSnaps)
	m := float64(monthSnaps)
	switch {
	case w > m/4:
		return model.TrendGrowing
	case w < m/6:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func sameCalendarMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// pushRecent prepends v to a deduplicated most-recent-first list capped at max.
func pushRecent(list []string, v string, max int) []string {
	out := make([]string, 0, max)
	out = append(out, v)
	for _, existing := range list {
		if existing == v {
			continue
		}
		out = append(out, existing)
		if len(out) == max {
			break
		}
	}
	return out
}
