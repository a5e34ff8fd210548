// Package sqlite is the optional durable store driver, selected via
// DB_DRIVER=sqlite. It keeps the same contract as memstore; durability is a
// convenience for local development, not a recovery guarantee.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/keepsakelabs/keepsake-memory/internal/model"
	"github.com/keepsakelabs/keepsake-memory/internal/store"
)

type Store struct {
	db *sql.DB
}

// New opens the database at path and applies the schema.
func New(path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := Bootstrap(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wires an existing connection (used by tests and the factory).
func NewWithDB(db *sql.DB) (*Store, error) {
	if err := Bootstrap(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Events() store.Events       { return &events{db: s.db} }
func (s *Store) Stats() store.Stats         { return &stats{db: s.db} }
func (s *Store) Timelines() store.Timelines { return &timelines{db: s.db} }
func (s *Store) Profiles() store.Profiles   { return &profiles{db: s.db} }

func (s *Store) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

func marshalList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func unmarshalList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// --- Events ---

type events struct{ db *sql.DB }

func (e *events) Append(ctx context.Context, ev *model.SnapEvent) error {
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO Events (EventId, PairKey, SenderId, RecipientId, Timestamp, Caption, Mood, Tags, Location) VALUES (?,?,?,?,?,?,?,?,?)`,
		ev.EventID, model.PairKey(ev.SenderID, ev.RecipientID), ev.SenderID, ev.RecipientID,
		ev.Timestamp.UTC().Format(time.RFC3339Nano), ev.Caption, ev.Mood, marshalList(ev.Tags), ev.Location)
	return err
}

func (e *events) ListForPair(ctx context.Context, userA, userB string, limit int) ([]model.SnapEvent, error) {
	q := `SELECT EventId, SenderId, RecipientId, Timestamp, Caption, Mood, Tags, Location FROM Events WHERE PairKey = ? ORDER BY rowid DESC`
	args := []interface{}{model.PairKey(userA, userB)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := e.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.SnapEvent
	for rows.Next() {
		var ev model.SnapEvent
		var ts, tags string
		if err := rows.Scan(&ev.EventID, &ev.SenderID, &ev.RecipientID, &ts, &ev.Caption, &ev.Mood, &tags, &ev.Location); err != nil {
			return nil, err
		}
		ev.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, err
		}
		ev.Tags = unmarshalList(tags)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// query returned newest first; callers expect oldest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (e *events) CountForPair(ctx context.Context, userA, userB string) (int, error) {
	var n int
	err := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Events WHERE PairKey = ?`, model.PairKey(userA, userB)).Scan(&n)
	return n, err
}

// --- Stats ---

type stats struct{ db *sql.DB }

func (s *stats) Get(ctx context.Context, ownerID, friendID string) (*model.FriendshipStats, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT TotalSnaps, MonthSnaps, WeekSnaps, LastSnapDate, Moods, Locations, Trend FROM FriendshipStats WHERE OwnerId = ? AND FriendId = ?`,
		ownerID, friendID)
	rec := model.FriendshipStats{OwnerID: ownerID, FriendID: friendID}
	var last, moods, locations, trend string
	err := row.Scan(&rec.TotalSnaps, &rec.ThisMonthSnaps, &rec.ThisWeekSnaps, &last, &moods, &locations, &trend)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.LastSnapDate, err = time.Parse(time.RFC3339Nano, last)
	if err != nil {
		return nil, err
	}
	rec.RecentMoods = unmarshalList(moods)
	rec.RecentLocations = unmarshalList(locations)
	rec.Trend = model.Trend(trend)
	return &rec, nil
}

func (s *stats) Put(ctx context.Context, rec *model.FriendshipStats) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO FriendshipStats (OwnerId, FriendId, TotalSnaps, MonthSnaps, WeekSnaps, LastSnapDate, Moods, Locations, Trend)
		 VALUES (?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(OwnerId, FriendId) DO UPDATE SET
		   TotalSnaps=excluded.TotalSnaps, MonthSnaps=excluded.MonthSnaps, WeekSnaps=excluded.WeekSnaps,
		   LastSnapDate=excluded.LastSnapDate, Moods=excluded.Moods, Locations=excluded.Locations, Trend=excluded.Trend`,
		rec.OwnerID, rec.FriendID, rec.TotalSnaps, rec.ThisMonthSnaps, rec.ThisWeekSnaps,
		rec.LastSnapDate.UTC().Format(time.RFC3339Nano), marshalList(rec.RecentMoods), marshalList(rec.RecentLocations), string(rec.Trend))
	return err
}

func (s *stats) ListByOwner(ctx context.Context, ownerID string) ([]*model.FriendshipStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT FriendId, TotalSnaps, MonthSnaps, WeekSnaps, LastSnapDate, Moods, Locations, Trend FROM FriendshipStats WHERE OwnerId = ?`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.FriendshipStats
	for rows.Next() {
		rec := model.FriendshipStats{OwnerID: ownerID}
		var last, moods, locations, trend string
		if err := rows.Scan(&rec.FriendID, &rec.TotalSnaps, &rec.ThisMonthSnaps, &rec.ThisWeekSnaps, &last, &moods, &locations, &trend); err != nil {
			return nil, err
		}
		rec.LastSnapDate, err = time.Parse(time.RFC3339Nano, last)
		if err != nil {
			return nil, err
		}
		rec.RecentMoods = unmarshalList(moods)
		rec.RecentLocations = unmarshalList(locations)
		rec.Trend = model.Trend(trend)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// --- Timelines ---

type timelines struct{ db *sql.DB }

func (t *timelines) Get(ctx context.Context, ownerID, friendID string) (*model.FriendshipTimeline, error) {
	var doc string
	err := t.db.QueryRowContext(ctx, `SELECT Doc FROM Timelines WHERE OwnerId = ? AND FriendId = ?`, ownerID, friendID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var tl model.FriendshipTimeline
	if err := json.Unmarshal([]byte(doc), &tl); err != nil {
		return nil, err
	}
	return &tl, nil
}

func (t *timelines) Put(ctx context.Context, tl *model.FriendshipTimeline) error {
	doc, err := json.Marshal(tl)
	if err != nil {
		return err
	}
	_, err = t.db.ExecContext(ctx,
		`INSERT INTO Timelines (OwnerId, FriendId, Doc) VALUES (?,?,?)
		 ON CONFLICT(OwnerId, FriendId) DO UPDATE SET Doc=excluded.Doc`,
		tl.OwnerID, tl.FriendID, string(doc))
	return err
}

// --- Profiles ---

type profiles struct{ db *sql.DB }

func (p *profiles) Upsert(ctx context.Context, userID, displayName string) error {
	if displayName == "" {
		return nil
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO Profiles (UserId, DisplayName) VALUES (?,?)
		 ON CONFLICT(UserId) DO UPDATE SET DisplayName=excluded.DisplayName`,
		userID, displayName)
	return err
}

func (p *profiles) DisplayName(ctx context.Context, userID string) (string, error) {
	var name string
	err := p.db.QueryRowContext(ctx, `SELECT DisplayName FROM Profiles WHERE UserId = ?`, userID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", model.ErrNotFound
	}
	return name, err
}
