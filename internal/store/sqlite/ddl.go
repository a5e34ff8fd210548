package sqlite

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS Events (
    EventId     TEXT PRIMARY KEY,
    PairKey     TEXT NOT NULL,
    SenderId    TEXT NOT NULL,
    RecipientId TEXT NOT NULL,
    Timestamp   TEXT NOT NULL,
    Caption     TEXT NOT NULL DEFAULT '',
    Mood        TEXT NOT NULL DEFAULT '',
    Tags        TEXT NOT NULL DEFAULT '[]',
    Location    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_events_pair ON Events(PairKey);

CREATE TABLE IF NOT EXISTS FriendshipStats (
    OwnerId      TEXT NOT NULL,
    FriendId     TEXT NOT NULL,
    TotalSnaps   INTEGER NOT NULL,
    MonthSnaps   INTEGER NOT NULL,
    WeekSnaps    INTEGER NOT NULL,
    LastSnapDate TEXT NOT NULL,
    Moods        TEXT NOT NULL DEFAULT '[]',
    Locations    TEXT NOT NULL DEFAULT '[]',
    Trend        TEXT NOT NULL,
    PRIMARY KEY (OwnerId, FriendId)
);

CREATE TABLE IF NOT EXISTS Timelines (
    OwnerId  TEXT NOT NULL,
    FriendId TEXT NOT NULL,
    Doc      TEXT NOT NULL,
    PRIMARY KEY (OwnerId, FriendId)
);

CREATE TABLE IF NOT EXISTS Profiles (
    UserId      TEXT PRIMARY KEY,
    DisplayName TEXT NOT NULL
);
`

// Bootstrap applies the schema; statements are idempotent.
func Bootstrap(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
