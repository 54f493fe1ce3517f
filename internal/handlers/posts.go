package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/lighttribe-backend/internal/models"
	"github.com/AnshRaj112/lighttribe-backend/internal/services"
	"github.com/AnshRaj112/lighttribe-backend/pkg/geo"
)

type CreatePostRequest struct {
	Text      string            `json:"text" validate:"max=10000"`
	Images    []string          `json:"images" validate:"omitempty,max=20,dive,mongodb"`
	Latitude  *float64          `json:"latitude" validate:"required,latitude"`
	Longitude *float64          `json:"longitude" validate:"required,longitude"`
	Interests []string          `json:"interests" validate:"omitempty,max=50,dive,max=64"`
	Privacy   string            `json:"privacy" validate:"omitempty,oneof=public private"`
	PostType  string            `json:"postType" validate:"omitempty,oneof=post lightPage"`
	LightPage *models.LightPage `json:"lightPage"`
}

// CreatePost handles POST /posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	me, err := viewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	post, err := h.svc.Posts.Create(r.Context(), me.ID, services.CreatePostInput{
		Text:      req.Text,
		Images:    req.Images,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Interests: req.Interests,
		Privacy:   req.Privacy,
		PostType:  req.PostType,
		LightPage: req.LightPage,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, IDResponse{ID: post.ID})
}

// GetPost handles GET /posts/{postId}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	me, err := viewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathID(r, "postId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	post, err := h.svc.Posts.Get(r.Context(), me.ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// SearchPosts handles GET /posts. latitude, longitude and radius (km) are
// given together or not at all; interests is a comma-separated list.
func (h *Handler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	me, err := viewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	q, err := searchQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	posts, err := h.svc.Posts.Search(r.Context(), me.ID, q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

func searchQuery(r *http.Request) (services.SearchQuery, error) {
	values := r.URL.Query()
	p, err := page(r)
	if err != nil {
		return services.SearchQuery{}, err
	}
	q := services.SearchQuery{Page: p}

	if raw := values.Get("interests"); raw != "" {
		q.Interests = strings.Split(raw, ",")
	}

	names := []string{"latitude", "longitude", "radius"}
	nums := make([]float64, 0, len(names))
	for _, name := range names {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return services.SearchQuery{}, &services.ValidationError{Field: name, Message: name + " must be a finite number"}
		}
		nums = append(nums, f)
	}
	switch len(nums) {
	case 0:
		return q, nil
	case len(names):
		q.Center = &geo.Point{Lat: nums[0], Lon: nums[1]}
		q.RadiusKm = nums[2]
		return q, nil
	}
	return services.SearchQuery{}, &services.ValidationError{
		Field:   "radius",
		Message: "latitude, longitude and radius must be given together",
	}
}
