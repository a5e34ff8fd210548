// Package api exposes the engine's operations over HTTP. The REST surface is
// a thin projection of the in-process API; all domain behavior lives in
// internal/services.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/keepsakelabs/keepsake-memory/internal/api/respond"
	"github.com/keepsakelabs/keepsake-memory/internal/model"
	"github.com/keepsakelabs/keepsake-memory/internal/services"
)

type EngineHandler struct {
	svc *services.Engine
}

func NewEngineHandler(svc *services.Engine) *EngineHandler {
	return &EngineHandler{svc: svc}
}

// IngestSnap POST /api/snaps
func (h *EngineHandler) IngestSnap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SenderID    string `json:"senderId"`
		RecipientID string `json:"recipientId"`
		model.SnapPayload
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.svc.Ingest(r.Context(), req.SenderID, req.RecipientID, req.SnapPayload); err != nil {
		if errors.Is(err, model.ErrValidation) {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// GetTimeline GET /api/users/{userId}/friends/{friendId}/timeline
func (h *EngineHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	tl, err := h.svc.GetTimeline(r.Context(), v["userId"], v["friendId"])
	if errors.Is(err, model.ErrNotFound) {
		// absent, not an error: callers render an onboarding state
		respond.WriteNotFound(w, "timeline not available yet")
		return
	}
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, tl)
}

// GetFriendships GET /api/users/{userId}/friendships
func (h *EngineHandler) GetFriendships(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	out, err := h.svc.GetFriendships(r.Context(), v["userId"])
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if out == nil {
		out = []*model.FriendshipStats{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"friendships": out, "count": len(out)})
}

// Search POST /api/search
func (h *EngineHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query    string `json:"query"`
		UserID   string `json:"userId"`
		FriendID string `json:"friendId,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Query == "" || req.UserID == "" {
		respond.WriteBadRequest(w, "query and userId are required")
		return
	}
	out, err := h.svc.Search(r.Context(), req.Query, req.UserID, req.FriendID)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"moments": out, "count": len(out)})
}

// GetTrendingPatterns GET /api/users/{userId}/patterns
func (h *EngineHandler) GetTrendingPatterns(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	out, err := h.svc.TrendingPatterns(r.Context(), v["userId"])
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
