package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/models"
	"github.com/AnshRaj112/lighttribe-backend/internal/services"
)

// AccessTokenParam is the query, form and JSON field carrying the token.
const AccessTokenParam = "access_token"

// maxPeekBody bounds how much of a JSON body is buffered to find the token.
const maxPeekBody = 1 << 20

// maxMultipartMemory is passed to ParseMultipartForm when the token may be a
// multipart field.
const maxMultipartMemory = 10 << 20

// TokenResolver maps a bearer token to its user.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

type userContextKey struct{}

// UserFromContext returns the authenticated user set by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*models.User)
	return u, ok && u != nil
}

// ContextWithUser stores u as the authenticated user.
func ContextWithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// RequireAuth rejects requests without a valid access token with 401.
func RequireAuth(tokens TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required")
				return
			}

			u, err := tokens.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, services.ErrInvalidToken) {
					logging.Ctx(r.Context()).Error().Err(err).Msg("token lookup failed")
					writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
					return
				}
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), u)))
		})
	}
}

// AccessToken extracts the token from, in order, the query string, an
// Authorization: Bearer header, a form field or a top-level JSON field. A
// JSON body is restored after inspection.
func AccessToken(r *http.Request) string {
	if t := r.URL.Query().Get(AccessTokenParam); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if r.Body == nil || r.Method == http.MethodGet {
		return ""
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		return r.PostFormValue(AccessTokenParam)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return ""
		}
		return r.PostFormValue(AccessTokenParam)
	case "application/json":
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
		if err != nil {
			return ""
		}
		r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
		return gjson.GetBytes(body, AccessTokenParam).String()
	}
	return ""
}
