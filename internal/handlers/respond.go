package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/services"
	"github.com/AnshRaj112/lighttribe-backend/internal/validation"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// IDResponse is returned by endpoints that create a document.
type IDResponse struct {
	ID string `json:"_id"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("failed to encode response")
	}
}

func respondErrorCode(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	respondJSON(w, status, ErrorResponse{
		Message: message,
		Error:   APIError{Code: code, Details: details},
	})
}

// respondError maps service errors to HTTP statuses. Unclassified errors are
// logged and reported as a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *validation.Error
	var fieldErr *services.ValidationError

	switch {
	case errors.As(err, &reqErr):
		respondErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", reqErr.Error(), map[string]any{"fields": reqErr.Fields})
	case errors.As(err, &fieldErr):
		respondErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", fieldErr.Message, map[string]any{"field": fieldErr.Field})
	case errors.Is(err, services.ErrInvalidCredentials):
		respondErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", nil)
	case errors.Is(err, services.ErrInvalidToken):
		respondErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired access token", nil)
	case errors.Is(err, services.ErrForbidden):
		respondErrorCode(w, http.StatusForbidden, "FORBIDDEN", "You are not allowed to do that", nil)
	case errors.Is(err, services.ErrNotFound):
		respondErrorCode(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrConflict):
		respondErrorCode(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, services.ErrUnavailable):
		respondErrorCode(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", err.Error(), nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondErrorCode(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		msg := "Request body must be valid JSON"
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		return &validation.Error{Fields: []validation.FieldError{{Field: "body", Tag: "json", Message: msg}}}
	}
	return validation.Struct(dst)
}

// noCache marks a response as containing credentials.
func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}
