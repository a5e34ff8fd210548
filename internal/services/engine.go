// Package services hosts the friendship-memory engine: ingestion, statistics,
// moment clustering and semantic recall behind one orchestrating service.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keepsakelabs/keepsake-memory/internal/collab"
	"github.com/keepsakelabs/keepsake-memory/internal/model"
	"github.com/keepsakelabs/keepsake-memory/internal/moments"
	"github.com/keepsakelabs/keepsake-memory/internal/recall"
	"github.com/keepsakelabs/keepsake-memory/internal/stats"
	"github.com/keepsakelabs/keepsake-memory/internal/store"
)

const searchTopK = 10

// Engine orchestrates the store, the embedding index, the statistics tracker
// and the clustering engine. One instance is constructed at service start and
// shared by all transports.
type Engine struct {
	store   store.Store
	index   recall.Index
	collab  collab.Collaborator
	tracker *stats.Tracker
	moments *moments.Engine
	log     zerolog.Logger
	newID   func() string
	now     func() time.Time

	// pairMu guards pairLocks; each pair lock serializes mutation of one
	// undirected friendship so a recluster sees every stats update that
	// preceded it.
	pairMu    sync.Mutex
	pairLocks map[string]*sync.Mutex
}

func NewEngine(st store.Store, ix recall.Index, c collab.Collaborator, log zerolog.Logger) *Engine {
	return &Engine{
		store:     st,
		index:     ix,
		collab:    c,
		tracker:   stats.NewTracker(st.Stats()),
		moments:   moments.NewEngine(c, log),
		log:       log,
		newID:     uuid.NewString,
		now:       time.Now,
		pairLocks: make(map[string]*sync.Mutex),
	}
}

func (e *Engine) pairLock(a, b string) *sync.Mutex {
	key := model.PairKey(a, b)
	e.pairMu.Lock()
	defer e.pairMu.Unlock()
	mu, ok := e.pairLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		e.pairLocks[key] = mu
	}
	return mu
}

// Ingest appends a snap event and maintains every projection derived from it.
// Embedding and clustering failures are swallowed: only a store-level fault
// fails the caller-visible operation. Self-events are accepted.
func (e *Engine) Ingest(ctx context.Context, senderID, recipientID string, payload model.SnapPayload) error {
	if senderID == "" || recipientID == "" {
		return fmt.Errorf("%w: sender and recipient are required", model.ErrValidation)
	}

	ts := payload.Timestamp
	if ts.IsZero() {
		ts = e.now()
	}
	ev := &model.SnapEvent{
		EventID:     e.newID(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Timestamp:   ts,
		Caption:     payload.Caption,
		Mood:        payload.Mood,
		Tags:        payload.Tags,
		Location:    payload.Location,
	}

	if err := e.store.Profiles().Upsert(ctx, senderID, payload.SenderName); err != nil {
		return err
	}
	if err := e.store.Profiles().Upsert(ctx, recipientID, payload.RecipientName); err != nil {
		return err
	}

	mu := e.pairLock(senderID, recipientID)
	mu.Lock()
	if err := e.store.Events().Append(ctx, ev); err != nil {
		mu.Unlock()
		return err
	}
	if _, err := e.tracker.Update(ctx, senderID, recipientID, *ev); err != nil {
		mu.Unlock()
		return err
	}
	if _, err := e.tracker.Update(ctx, recipientID, senderID, *ev); err != nil {
		mu.Unlock()
		return err
	}
	mu.Unlock()

	// Collaborator round trips happen outside the pair lock; same-pair
	// ingestion is serialized by the caller.
	e.embedCaption(ctx, ev)

	if err := e.recluster(ctx, senderID, recipientID); err != nil {
		e.log.Warn().Err(err).Str("sender", senderID).Str("recipient", recipientID).
			Msg("recluster failed, timeline left unchanged")
	}
	if err := e.recluster(ctx, recipientID, senderID); err != nil {
		e.log.Warn().Err(err).Str("sender", recipientID).Str("recipient", senderID).
			Msg("recluster failed, timeline left unchanged")
	}
	return nil
}

// embedCaption stores an embedding record for events that carry caption text.
// A transient embedding outage never blocks the primary write.
func (e *Engine) embedCaption(ctx context.Context, ev *model.SnapEvent) {
	if ev.Caption == "" {
		return
	}
	vec, err := e.collab.Embed(ctx, ev.Caption)
	if err != nil {
		e.log.Warn().Err(err).Str("event", ev.EventID).Msg("caption embedding failed, skipping index update")
		return
	}
	rec := model.EmbeddingRecord{
		RecordID:  e.newID(),
		EventID:   ev.EventID,
		OwnerID:   ev.SenderID,
		FriendID:  ev.RecipientID,
		Caption:   ev.Caption,
		Vector:    vec,
		Mood:      ev.Mood,
		Timestamp: ev.Timestamp.Format(time.RFC3339),
		Location:  ev.Location,
		Tags:      ev.Tags,
	}
	if err := e.index.Upsert(ctx, rec); err != nil {
		e.log.Warn().Err(err).Str("event", ev.EventID).Msg("embedding index upsert failed")
	}
}

// recluster rebuilds the (owner, friend) timeline from the pair's recent
// events. Fewer than the minimum events is a no-op; the previous timeline
// stays visible. The rebuilt timeline replaces the old one atomically.
func (e *Engine) recluster(ctx context.Context, ownerID, friendID string) error {
	events, err := e.store.Events().ListForPair(ctx, ownerID, friendID, moments.RecentEventWindow)
	if err != nil {
		return err
	}
	if len(events) < moments.MinPairEvents {
		return nil
	}

	ms := e.moments.BuildMoments(ctx, ownerID, friendID, events)

	st, err := e.store.Stats().Get(ctx, ownerID, friendID)
	if errors.Is(err, model.ErrNotFound) {
		st = &model.FriendshipStats{OwnerID: ownerID, FriendID: friendID, Trend: model.TrendStable}
	} else if err != nil {
		return err
	}

	friendName := e.displayName(ctx, friendID)
	insights, src := e.moments.BuildInsights(ctx, friendName, *st, recentCaptions(events))

	tl := &model.FriendshipTimeline{
		OwnerID:    ownerID,
		FriendID:   friendID,
		FriendName: friendName,
		Stats:      *st,
		Moments:    ms,
		Highlights: moments.Highlights(ms),
		Insights:   insights,
		InsightSrc: src,
		RebuiltAt:  e.now(),
	}
	return e.store.Timelines().Put(ctx, tl)
}

func (e *Engine) displayName(ctx context.Context, userID string) string {
	name, err := e.store.Profiles().DisplayName(ctx, userID)
	if err != nil {
		return userID
	}
	return name
}

func recentCaptions(events []model.SnapEvent) []string {
	var out []string
	for _, ev := range events {
		if ev.Caption != "" {
			out = append(out, ev.Caption)
		}
	}
	if len(out) > 5 {
		out = out[len(out)-5:]
	}
	return out
}

// GetTimeline returns the current read model for the pair, or
// model.ErrNotFound when the pair has never been clustered.
func (e *Engine) GetTimeline(ctx context.Context, ownerID, friendID string) (*model.FriendshipTimeline, error) {
	return e.store.Timelines().Get(ctx, ownerID, friendID)
}

// GetFriendships lists the owner's directed stats records, most snapped-with
// friend first.
func (e *Engine) GetFriendships(ctx context.Context, ownerID string) ([]*model.FriendshipStats, error) {
	list, err := e.store.Stats().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].TotalSnaps > list[j].TotalSnaps
	})
	return list, nil
}

// Search embeds the query and projects the nearest caption embeddings through
// the current timelines. A failing embedding collaborator yields an empty
// result, not an error.
func (e *Engine) Search(ctx context.Context, query, ownerID, friendID string) ([]model.SharedMoment, error) {
	vec, err := e.collab.Embed(ctx, query)
	if err != nil {
		e.log.Warn().Err(err).Str("query", query).Msg("query embedding failed, returning empty result")
		return []model.SharedMoment{}, nil
	}

	matches, err := e.index.Search(ctx, ownerID, friendID, vec, searchTopK)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []model.SharedMoment{}, nil
	}

	matchedEvents := make(map[string]bool, len(matches))
	for _, m := range matches {
		matchedEvents[m.Record.EventID] = true
	}

	var out []model.SharedMoment
	seenMoments := make(map[string]bool)
	timelines := make(map[string]*model.FriendshipTimeline)

	// Walk matches most-similar-first; within one timeline the existing
	// significance ordering is preserved, not re-sorted by similarity.
	for _, match := range matches {
		fid := match.Record.FriendID
		tl, ok := timelines[fid]
		if !ok {
			var err error
			tl, err = e.store.Timelines().Get(ctx, ownerID, fid)
			if errors.Is(err, model.ErrNotFound) {
				timelines[fid] = nil
				continue
			}
			if err != nil {
				return nil, err
			}
			timelines[fid] = tl
		}
		if tl == nil {
			continue
		}
		for _, moment := range tl.Moments {
			if seenMoments[moment.MomentID] || !momentIntersects(moment, matchedEvents) {
				continue
			}
			seenMoments[moment.MomentID] = true
			out = append(out, moment)
		}
	}
	if out == nil {
		out = []model.SharedMoment{}
	}
	return out, nil
}

func momentIntersects(m model.SharedMoment, eventIDs map[string]bool) bool {
	for _, ev := range m.Events {
		if eventIDs[ev.EventID] {
			return true
		}
	}
	return false
}

// TrendingPatterns scans all of the owner's friendship stats and aggregates
// cross-pair activity signals.
func (e *Engine) TrendingPatterns(ctx context.Context, ownerID string) (*model.TrendingPatterns, error) {
	list, err := e.store.Stats().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	moodCounts := make(map[string]int)
	locationCounts := make(map[string]int)
	hourBuckets := make(map[string]int)
	var growing []string

	for _, st := range list {
		for _, mood := range st.RecentMoods {
			moodCounts[mood]++
		}
		for _, loc := range st.RecentLocations {
			locationCounts[loc]++
		}
		if !st.LastSnapDate.IsZero() {
			hourBuckets[timeOfDay(st.LastSnapDate.Hour())]++
		}
		if st.Trend == model.TrendGrowing {
			growing = append(growing, e.displayName(ctx, st.FriendID))
		}
	}

	return &model.TrendingPatterns{
		MostActiveTime:     topKey(hourBuckets, "evening"),
		FavoriteActivity:   topKey(locationCounts, "hanging out"),
		GrowingFriendships: growing,
		CommonMoods:        topKeys(moodCounts, 3),
	}, nil
}

func timeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

func topKey(counts map[string]int, fallback string) string {
	keys := topKeys(counts, 1)
	if len(keys) == 0 {
		return fallback
	}
	return keys[0]
}

func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
