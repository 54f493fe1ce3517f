package handlers

import (
	"net/http"

	"github.com/AnshRaj112/lighttribe-backend/internal/services"
)

type RegisterRequest struct {
	Username  string   `json:"username" validate:"required,min=2,max=30"`
	Password  string   `json:"password" validate:"required,max=256"`
	Interests []string `json:"interests" validate:"omitempty,max=50,dive,max=64"`
}

// Register handles POST /users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	u, err := h.svc.Users.Register(r.Context(), services.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Interests: req.Interests,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, IDResponse{ID: u.ID.Hex()})
}

// GetSettings handles GET /users/{userId}.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	u, err := self(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondSettings(w, r, u.ID)
}

type UpdateSettingsRequest struct {
	Username         *string  `json:"username" validate:"omitempty,min=2,max=30"`
	Interests        []string `json:"interests" validate:"omitempty,max=50,dive,max=64"`
	UserImage        *string  `json:"userImage" validate:"omitempty,mongodb"`
	ShortDescription *string  `json:"shortDescription" validate:"omitempty,max=280"`
}

// UpdateSettings handles POST /users/{userId}.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	u, err := self(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req UpdateSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.svc.Users.UpdateSettings(r.Context(), u.ID, services.SettingsUpdate{
		Username:         req.Username,
		Interests:        req.Interests,
		UserImage:        req.UserImage,
		ShortDescription: req.ShortDescription,
	})
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

// ListUserPosts handles GET /users/{userId}/posts.
func (h *Handler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	me, err := viewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	authorID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	p, err := page(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	posts, err := h.svc.Posts.ListByUser(r.Context(), me.ID, authorID, p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// ListUserReviews handles GET /users/{userId}/reviews.
func (h *Handler) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	submitter, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	reviews, err := h.svc.Reviews.ListBySubmitter(r.Context(), submitter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}
