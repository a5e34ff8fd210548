// Package store exposes the persistence operations required by the engine.
// Drivers live under internal/store/<driver>/ (memstore, sqlite).
package store

import (
	"context"

	"github.com/keepsakelabs/keepsake-memory/internal/model"
)

type Store interface {
	Events() Events
	Stats() Stats
	Timelines() Timelines
	Profiles() Profiles
}

// Events is the append-only snap event log.
type Events interface {
	Append(ctx context.Context, e *model.SnapEvent) error
	// ListForPair returns the most recent limit events between the undirected
	// pair, oldest first. limit <= 0 returns all.
	ListForPair(ctx context.Context, userA, userB string, limit int) ([]model.SnapEvent, error)
	CountForPair(ctx context.Context, userA, userB string) (int, error)
}

// Stats holds one record per directed (owner, friend) pair.
type Stats interface {
	Get(ctx context.Context, ownerID, friendID string) (*model.FriendshipStats, error)
	Put(ctx context.Context, s *model.FriendshipStats) error
	ListByOwner(ctx context.Context, ownerID string) ([]*model.FriendshipStats, error)
}

// Timelines holds the rebuilt read-model aggregate per directed pair.
type Timelines interface {
	Get(ctx context.Context, ownerID, friendID string) (*model.FriendshipTimeline, error)
	Put(ctx context.Context, t *model.FriendshipTimeline) error
}

// Profiles maps user ids to display names captured from ingestion payloads.
type Profiles interface {
	Upsert(ctx context.Context, userID, displayName string) error
	DisplayName(ctx context.Context, userID string) (string, error)
}
