// Package memstore is the default store driver: volatile process memory,
// mutex-guarded keyed collections. Constructed once at service start and
// passed by handle to all components; process restart loses all state.
package memstore

import (
	"context"
	"sync"

	"github.com/keepsakelabs/keepsake-memory/internal/model"
	"github.com/keepsakelabs/keepsake-memory/internal/store"
)

type Store struct {
	events    *events
	stats     *stats
	timelines *timelines
	profiles  *profiles
}

func New() *Store {
	return &Store{
		events:    &events{byPair: make(map[string][]model.SnapEvent)},
		stats:     &stats{records: make(map[string]model.FriendshipStats)},
		timelines: &timelines{records: make(map[string]model.FriendshipTimeline)},
		profiles:  &profiles{names: make(map[string]string)},
	}
}

func (s *Store) Events() store.Events       { return s.events }
func (s *Store) Stats() store.Stats         { return s.stats }
func (s *Store) Timelines() store.Timelines { return s.timelines }
func (s *Store) Profiles() store.Profiles   { return s.profiles }

// HealthPing reports healthy unconditionally; there is no backing service.
func (s *Store) HealthPing(ctx context.Context) error { return nil }

// --- Events ---

type events struct {
	mu     sync.RWMutex
	byPair map[string][]model.SnapEvent
}

func (e *events) Append(_ context.Context, ev *model.SnapEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := model.PairKey(ev.SenderID, ev.RecipientID)
	e.byPair[key] = append(e.byPair[key], *ev)
	return nil
}

func (e *events) ListForPair(_ context.Context, userA, userB string, limit int) ([]model.SnapEvent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	all := e.byPair[model.PairKey(userA, userB)]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]model.SnapEvent, len(all))
	copy(out, all)
	return out, nil
}

func (e *events) CountForPair(_ context.Context, userA, userB string) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.byPair[model.PairKey(userA, userB)]), nil
}

// --- Stats ---

type stats struct {
	mu      sync.RWMutex
	records map[string]model.FriendshipStats
}

func statsKey(ownerID, friendID string) string { return ownerID + "|" + friendID }

func (s *stats) Get(_ context.Context, ownerID, friendID string) (*model.FriendshipStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[statsKey(ownerID, friendID)]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := rec
	out.RecentMoods = append([]string(nil), rec.RecentMoods...)
	out.RecentLocations = append([]string(nil), rec.RecentLocations...)
	return &out, nil
}

func (s *stats) Put(_ context.Context, rec *model.FriendshipStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	cp.RecentMoods = append([]string(nil), rec.RecentMoods...)
	cp.RecentLocations = append([]string(nil), rec.RecentLocations...)
	s.records[statsKey(rec.OwnerID, rec.FriendID)] = cp
	return nil
}

func (s *stats) ListByOwner(_ context.Context, ownerID string) ([]*model.FriendshipStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.FriendshipStats
	for _, rec := range s.records {
		if rec.OwnerID != ownerID {
			continue
		}
		cp := rec
		cp.RecentMoods = append([]string(nil), rec.RecentMoods...)
		cp.RecentLocations = append([]string(nil), rec.RecentLocations...)
		out = append(out, &cp)
	}
	return out, nil
}

// --- Timelines ---

type timelines struct {
	mu      sync.RWMutex
	records map[string]model.FriendshipTimeline
}

func (t *timelines) Get(_ context.Context, ownerID, friendID string) (*model.FriendshipTimeline, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[statsKey(ownerID, friendID)]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &rec, nil
}

// Put replaces the timeline atomically; readers never observe a partial
// update.
func (t *timelines) Put(_ context.Context, rec *model.FriendshipTimeline) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[statsKey(rec.OwnerID, rec.FriendID)] = *rec
	return nil
}

// --- Profiles ---

type profiles struct {
	mu    sync.RWMutex
	names map[string]string
}

func (p *profiles) Upsert(_ context.Context, userID, displayName string) error {
	if displayName == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[userID] = displayName
	return nil
}

func (p *profiles) DisplayName(_ context.Context, userID string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	name, ok := p.names[userID]
	if !ok {
		return "", model.ErrNotFound
	}
	return name, nil
}
