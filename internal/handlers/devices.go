package handlers

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/internal/models"
)

type DeviceRequest struct {
	Token    string          `json:"token" validate:"required,max=512"`
	Platform models.Platform `json:"platform" validate:"required,oneof=ios android"`
	// Before only applies to removal.
	Before *time.Time `json:"before"`
}

// AddDevice handles POST /users/{userId}/devices.
func (h *Handler) AddDevice(w http.ResponseWriter, r *http.Request) {
	u, err := self(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req DeviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := h.svc.Devices.Add(r.Context(), u.ID, req.Token, req.Platform); err != nil {
		respondError(w, r, err)
		return
	}
	h.respondSettings(w, r, u.ID)
}

// RemoveDevice handles DELETE /users/{userId}/devices.
func (h *Handler) RemoveDevice(w http.ResponseWriter, r *http.Request) {
	u, err := self(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req DeviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := h.svc.Devices.Remove(r.Context(), u.ID, req.Token, req.Platform, req.Before); err != nil {
		respondError(w, r, err)
		return
	}
	h.respondSettings(w, r, u.ID)
}

// respondSettings reloads the user and writes its settings view.
func (h *Handler) respondSettings(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	u, err := h.svc.Users.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	view, err := h.svc.Projector.Settings(r.Context(), u)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
