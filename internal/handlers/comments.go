package handlers

import (
	"net/http"
)

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// CreateComment handles POST /posts/{postId}/comments.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	me, err := viewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	postID, err := pathID(r, "postId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req CreateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	comment, err := h.svc.Comments.Create(r.Context(), me.ID, postID, req.Text)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, IDResponse{ID: comment.ID})
}

// ListComments handles GET /posts/{postId}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	me, err := viewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	postID, err := pathID(r, "postId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	p, err := page(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	comments, err := h.svc.Comments.List(r.Context(), me.ID, postID, p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}
