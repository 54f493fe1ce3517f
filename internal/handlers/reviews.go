package handlers

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/lighttribe-backend/internal/services"
)

type CreateReviewRequest struct {
	Company     string     `json:"company" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Rating      int        `json:"rating" validate:"required,gte=1,lte=5"`
	Datetime    *time.Time `json:"datetime"`
	Location    string     `json:"location" validate:"max=200"`
	Images      []string   `json:"images" validate:"omitempty,max=20,dive,mongodb"`
}

// CreateReview handles POST /reviews.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	me, err := viewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req CreateReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	review, err := h.svc.Reviews.Create(r.Context(), me.ID, services.ReviewInput{
		Company:     req.Company,
		Description: req.Description,
		Rating:      req.Rating,
		Datetime:    req.Datetime,
		Location:    req.Location,
		Images:      req.Images,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, review)
}

// GetReview handles GET /reviews/{reviewId}.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reviewId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	review, err := h.svc.Reviews.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, review)
}
