package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsakelabs/keepsake-memory/internal/api/recovery"
	"github.com/keepsakelabs/keepsake-memory/internal/collab/collabtest"
	"github.com/keepsakelabs/keepsake-memory/internal/model"
	"github.com/keepsakelabs/keepsake-memory/internal/recall"
	"github.com/keepsakelabs/keepsake-memory/internal/services"
	"github.com/keepsakelabs/keepsake-memory/internal/store/memstore"
)

func newTestServer(fake *collabtest.Fake) *httptest.Server {
	svc := services.NewEngine(memstore.New(), recall.NewInMemoryIndex(), fake, zerolog.Nop())
	h := NewEngineHandler(svc)

	r := mux.NewRouter()
	r.Use(recovery.Middleware)
	r.HandleFunc("/api/snaps", h.IngestSnap).Methods("POST")
	r.HandleFunc("/api/users/{userId}/friends/{friendId}/timeline", h.GetTimeline).Methods("GET")
	r.HandleFunc("/api/users/{userId}/friendships", h.GetFriendships).Methods("GET")
	r.HandleFunc("/api/users/{userId}/patterns", h.GetTrendingPatterns).Methods("GET")
	r.HandleFunc("/api/search", h.Search).Methods("POST")
	return httptest.NewServer(r)
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func ingestSnap(t *testing.T, base, sender, recipient, caption string, ts time.Time) {
	t.Helper()
	resp := postJSON(t, base+"/api/snaps", map[string]interface{}{
		"senderId":    sender,
		"recipientId": recipient,
		"caption":     caption,
		"timestamp":   ts.Format(time.RFC3339),
	})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func offlineFake() *collabtest.Fake {
	return &collabtest.Fake{DefaultVector: []float32{1, 0}, GenerateErr: errors.New("offline")}
}

func TestIngestSnap_Validation(t *testing.T) {
	ts := newTestServer(offlineFake())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/snaps", map[string]interface{}{"senderId": "", "recipientId": "bob"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTimeline_NotFoundThenAvailable(t *testing.T) {
	ts := newTestServer(offlineFake())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/users/alice/friends/bob/timeline")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	day := time.Now().Add(-24 * time.Hour).Truncate(time.Hour)
	for i := 0; i < 3; i++ {
		ingestSnap(t, ts.URL, "alice", "bob", fmt.Sprintf("snap %d", i), day.Add(time.Duration(i)*time.Hour))
	}

	resp, err = http.Get(ts.URL + "/api/users/alice/friends/bob/timeline")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tl model.FriendshipTimeline
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tl))
	assert.Equal(t, "alice", tl.OwnerID)
	assert.Equal(t, "bob", tl.FriendID)
	assert.Len(t, tl.Moments, 1)
	assert.Len(t, tl.Insights, 3)
}

func TestFriendships_EmptyListNotError(t *testing.T) {
	ts := newTestServer(offlineFake())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/users/nobody/friendships")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Friendships []model.FriendshipStats `json:"friendships"`
		Count       int                     `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 0, out.Count)
	assert.NotNil(t, out.Friendships)
}

func TestSearch_RequiresQueryAndUser(t *testing.T) {
	ts := newTestServer(offlineFake())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/search", map[string]interface{}{"query": ""})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearch_EmptyResultOnCollaboratorOutage(t *testing.T) {
	fake := offlineFake()
	ts := newTestServer(fake)
	defer ts.Close()

	day := time.Now().Add(-24 * time.Hour).Truncate(time.Hour)
	for i := 0; i < 3; i++ {
		ingestSnap(t, ts.URL, "alice", "bob", "beach", day.Add(time.Duration(i)*time.Hour))
	}

	fake.EmbedErr = errors.New("embedding outage")
	resp := postJSON(t, ts.URL+"/api/search", map[string]interface{}{"query": "beach", "userId": "alice"})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Moments []model.SharedMoment `json:"moments"`
		Count   int                  `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 0, out.Count)
}

func TestPatterns_DefaultsWhenNoData(t *testing.T) {
	ts := newTestServer(offlineFake())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/users/alice/patterns")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p model.TrendingPatterns
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, "evening", p.MostActiveTime)
	assert.Equal(t, "hanging out", p.FavoriteActivity)
}
