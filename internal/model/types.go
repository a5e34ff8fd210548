package model

import "time"

// SnapEvent is an immutable fact: one snap sent between two users.
type SnapEvent struct {
	EventID     string    `json:"eventId"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Timestamp   time.Time `json:"timestamp"`
	Caption     string    `json:"caption,omitempty"`
	Mood        string    `json:"mood,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// Trend is a coarse classification of recent relative activity.
type Trend string

const (
	TrendGrowing   Trend = "growing"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// FriendshipStats is maintained per directed (owner, friend) pair. Two records
// exist per undirected friendship and are updated independently from the same
// event stream.
type FriendshipStats struct {
	OwnerID         string    `json:"ownerId"`
	FriendID        string    `json:"friendId"`
	TotalSnaps      int       `json:"totalSnaps"`
	ThisMonthSnaps  int       `json:"thisMonthSnaps"`
	ThisWeekSnaps   int       `json:"thisWeekSnaps"`
	LastSnapDate    time.Time `json:"lastSnapDate"`
	RecentMoods     []string  `json:"recentMoods,omitempty"`
	RecentLocations []string  `json:"recentLocations,omitempty"`
	Trend           Trend     `json:"relationshipTrend"`
}

// EmbeddingRecord captures a caption embedding plus a metadata snapshot taken
// at embedding time. Created once per event that carries caption text.
type EmbeddingRecord struct {
	RecordID  string    `json:"recordId"`
	EventID   string    `json:"eventId"`
	OwnerID   string    `json:"ownerId"`
	FriendID  string    `json:"friendId"`
	Caption   string    `json:"caption"`
	Vector    []float32 `json:"vector"`
	Mood      string    `json:"mood,omitempty"`
	Timestamp string    `json:"timestamp"`
	Location  string    `json:"location,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
}

// AnalysisSource distinguishes AI-derived content from heuristic defaults.
type AnalysisSource string

const (
	SourceModel    AnalysisSource = "model"
	SourceFallback AnalysisSource = "fallback"
)

// SharedMoment is a derived projection: a clustered, characterized group of
// same-day events between two people. Recreated whenever its source day is
// re-clustered; it has no durable identity across recomputation.
type SharedMoment struct {
	MomentID     string         `json:"momentId"`
	Participants []string       `json:"participants"`
	Events       []SnapEvent    `json:"events"`
	Theme        string         `json:"theme"`
	Mood         string         `json:"mood"`
	Significance float64        `json:"significance"`
	Summary      string         `json:"summary"`
	Highlight    string         `json:"highlightCaption"`
	StartTime    time.Time      `json:"startTime"`
	Location     string         `json:"location,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Source       AnalysisSource `json:"source"`
}

// FriendshipTimeline is the externally consumed read model for one directed
// pair. It embeds copies, not live references, of stats and moments, and is
// rebuilt wholesale on every new event for the pair.
type FriendshipTimeline struct {
	OwnerID    string          `json:"ownerId"`
	FriendID   string          `json:"friendId"`
	FriendName string          `json:"friendName"`
	Stats      FriendshipStats `json:"stats"`
	Moments    []SharedMoment  `json:"moments"`
	Highlights []SharedMoment  `json:"highlights"`
	Insights   []string        `json:"insights"`
	InsightSrc AnalysisSource  `json:"insightSource"`
	RebuiltAt  time.Time       `json:"rebuiltAt"`
}

// TrendingPatterns aggregates activity signals across all of a user's
// friendships.
type TrendingPatterns struct {
	MostActiveTime     string   `json:"mostActiveTime"`
	FavoriteActivity   string   `json:"favoriteActivity"`
	GrowingFriendships []string `json:"growingFriendships"`
	CommonMoods        []string `json:"commonMoods"`
}

// SnapPayload is the caller-supplied portion of an ingested event.
type SnapPayload struct {
	Caption       string    `json:"caption,omitempty"`
	Mood          string    `json:"mood,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Location      string    `json:"location,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitempty"`
	SenderName    string    `json:"senderName,omitempty"`
	RecipientName string    `json:"recipientName,omitempty"`
}
