package handlers

import (
	"net/http"

	"github.com/AnshRaj112/lighttribe-backend/internal/services"
)

type FollowRequest struct {
	UserID string `json:"userId" validate:"required,mongodb"`
}

// ListFollows handles GET /users/{userId}/follows.
func (h *Handler) ListFollows(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	following, err := h.svc.Follows.Following(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, following)
}

// Follow handles POST /users/{userId}/follows.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	u, err := self(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req FollowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	target, err := services.ParseID("userId", req.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.svc.Follows.Follow(r.Context(), u.ID, target)
	if err != nil {
		respondError(w, r, err)
		return
	}
	view, err := h.svc.Projector.Settings(r.Context(), updated)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Unfollow handles DELETE /users/{userId}/follows/{targetId}.
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	u, err := self(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	target, err := pathID(r, "targetId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.svc.Follows.Unfollow(r.Context(), u.ID, target)
	if err != nil {
		respondError(w, r, err)
		return
	}
	view, err := h.svc.Projector.Settings(r.Context(), updated)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
