package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/internal/config"
	"github.com/AnshRaj112/lighttribe-backend/internal/middleware"
	"github.com/AnshRaj112/lighttribe-backend/internal/models"
	"github.com/AnshRaj112/lighttribe-backend/internal/services"
)

// Handler serves the REST API on top of the domain services.
type Handler struct {
	svc *services.Services
	cfg *config.Config
}

func New(svc *services.Services, cfg *config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

// viewer is the authenticated caller. Routes using it sit behind RequireAuth.
func viewer(r *http.Request) (*models.User, error) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return nil, services.ErrInvalidToken
	}
	return u, nil
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	return services.ParseID(name, chi.URLParam(r, name))
}

// self returns the caller when the {userId} path parameter names them and
// ErrForbidden otherwise.
func self(r *http.Request) (*models.User, error) {
	u, err := viewer(r)
	if err != nil {
		return nil, err
	}
	id, err := pathID(r, "userId")
	if err != nil {
		return nil, err
	}
	if id != u.ID {
		return nil, services.ErrForbidden
	}
	return u, nil
}

// page reads the 1-based page query parameter, defaulting to 1.
func page(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > services.MaxPage {
		return 0, &services.ValidationError{Field: "page", Message: "page must be a positive integer no larger than " + strconv.Itoa(services.MaxPage)}
	}
	return n, nil
}
