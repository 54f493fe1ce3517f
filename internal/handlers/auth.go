package handlers

import (
	"net/http"

	"github.com/AnshRaj112/lighttribe-backend/internal/services"
)

type BasicAuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// BasicAuth handles POST /auth/basic. Credentials come from an HTTP Basic
// Authorization header or, failing that, the JSON body.
func (h *Handler) BasicAuth(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok {
		var req BasicAuthRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, r, err)
			return
		}
		username, password = req.Username, req.Password
	}

	sess, err := h.svc.Auth.Basic(r.Context(), username, password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondLogin(w, sess)
}

type AnonymousAuthRequest struct {
	ID        string   `json:"id" validate:"required,max=256"`
	Username  string   `json:"username" validate:"omitempty,max=64"`
	Interests []string `json:"interests" validate:"omitempty,max=50,dive,max=64"`
}

// AnonymousAuth handles POST /auth/anonymous.
func (h *Handler) AnonymousAuth(w http.ResponseWriter, r *http.Request) {
	var req AnonymousAuthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	sess, err := h.svc.Auth.Anonymous(r.Context(), services.AnonymousInput{
		DeviceID:  req.ID,
		Username:  req.Username,
		Interests: req.Interests,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondLogin(w, sess)
}

type FacebookAuthRequest struct {
	FacebookToken string   `json:"facebookToken" validate:"required"`
	Interests     []string `json:"interests" validate:"omitempty,max=50,dive,max=64"`
}

// FacebookAuth handles POST /auth/facebook.
func (h *Handler) FacebookAuth(w http.ResponseWriter, r *http.Request) {
	var req FacebookAuthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	sess, err := h.svc.Auth.Facebook(r.Context(), req.FacebookToken, req.Interests)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondLogin(w, sess)
}

func respondLogin(w http.ResponseWriter, sess *services.Session) {
	noCache(w)
	respondJSON(w, http.StatusOK, services.Login(sess))
}
