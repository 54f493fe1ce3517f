package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/256dpi/lungo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/metrics"
	"github.com/AnshRaj112/lighttribe-backend/internal/models"
	"github.com/AnshRaj112/lighttribe-backend/pkg/utils"
)

// usernameAttempts bounds the search for a free generated username.
const usernameAttempts = 5

// AuthService turns credentials into a user plus bearer token.
type AuthService struct {
	users    lungo.ICollection
	tokens   *TokenService
	facebook FacebookVerifier
	defaults models.UserDefaults
	now      func() time.Time
}

// Session is the outcome of a successful authentication.
type Session struct {
	User  *models.User
	Token string
}

// Basic authenticates a username/password pair. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Basic(ctx context.Context, username, password string) (sess *Session, err error) {
	defer func() { metrics.RecordAuth("basic", err) }()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.findOne(ctx, bson.M{"username": username})
	if errors.Is(err, ErrNotFound) {
		logging.Ctx(ctx).Debug().Str("username", username).Msg("basic auth: unknown user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.CheckPassword(password) {
		logging.Ctx(ctx).Debug().Str("username", username).Msg("basic auth: password mismatch")
		return nil, ErrInvalidCredentials
	}
	return s.login(ctx, u)
}

type AnonymousInput struct {
	DeviceID  string
	Username  string
	Interests []string
}

// Anonymous returns the user bound to a device id, creating it on first use.
// Calls with the same device id always resolve to the same user.
func (s *AuthService) Anonymous(ctx context.Context, in AnonymousInput) (sess *Session, err error) {
	defer func() { metrics.RecordAuth("anonymous", err) }()

	deviceID := strings.TrimSpace(in.DeviceID)
	if deviceID == "" {
		return nil, invalid("id", "Device id is required")
	}

	u, err := s.upsertFederated(ctx, "auths.anonymous.id", deviceID, nil, in.Username, in.Interests)
	if err != nil {
		return nil, err
	}
	return s.login(ctx, u)
}

// Facebook verifies a Facebook user access token and signs in the linked
// user, creating one on first login.
func (s *AuthService) Facebook(ctx context.Context, accessToken string, interests []string) (sess *Session, err error) {
	defer func() { metrics.RecordAuth("facebook", err) }()

	if s.facebook == nil {
		return nil, fmt.Errorf("facebook login: %w", ErrUnavailable)
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, invalid("facebookToken", "Facebook access token is required")
	}

	profile, err := s.facebook.Me(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	u, err := s.upsertFederated(ctx, "auths.facebook.id", profile.ID,
		bson.M{"auths.facebook.enabled": true}, profile.Name, interests)
	if err != nil {
		return nil, err
	}
	if u.Auths.Facebook != nil && !u.Auths.Facebook.Enabled {
		return nil, fmt.Errorf("facebook login disabled for user: %w", ErrForbidden)
	}
	return s.login(ctx, u)
}

func (s *AuthService) login(ctx context.Context, u *models.User) (*Session, error) {
	token, err := s.tokens.CurrentOrIssue(ctx, u)
	if err != nil {
		return nil, err
	}
	now := nowUTC(s.now)
	touchLogin(ctx, s.users, u.ID, now)
	u.LastLogin = &now
	return &Session{User: u, Token: token}, nil
}

// upsertFederated finds the user whose key equals value or inserts a new one
// in a single upsert, so concurrent first logins cannot create duplicates.
func (s *AuthService) upsertFederated(ctx context.Context, key, value string, extra bson.M, proposed string, interests []string) (*models.User, error) {
	if u, err := s.findOne(ctx, bson.M{key: value}); err == nil {
		return u, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		username, err := s.freeUsername(ctx, proposed, attempt)
		if err != nil {
			return nil, err
		}
		token, err := s.tokens.NewToken()
		if err != nil {
			return nil, err
		}
		// never used to log in; the account is keyed by key
		fresh, err := models.NewUser(models.UserParams{
			Username:  username,
			Password:  uuid.NewString(),
			Interests: interests,
			Token:     token,
		}, s.defaults, nowUTC(s.now))
		if err != nil {
			return nil, err
		}

		insert := bson.M{
			"_id":        fresh.ID,
			"created_at": fresh.CreatedAt,
			"updated_at": fresh.UpdatedAt,
			"username":   fresh.Username,
			"password":   fresh.Password,
			"token":      fresh.Token,
			"profile":    fresh.Profile,
			"interests":  fresh.Interests,
			"devices":    fresh.Devices,
			"follows":    fresh.Follows,
		}
		for k, v := range extra {
			insert[k] = v
		}
		insert[key] = value

		u, err := s.upsert(ctx, bson.M{key: value}, insert)
		if err == nil {
			if u.ID == fresh.ID {
				logging.Ctx(ctx).Info().Str("user_id", u.ID.Hex()).Str("auth", key).Msg("created federated user")
			}
			return u, nil
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
		// lost a race on either the key or the username
		lastErr = err
		if existing, ferr := s.findOne(ctx, bson.M{key: value}); ferr == nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("create user: %w", lastErr)
}

func (s *AuthService) upsert(ctx context.Context, filter, insert bson.M) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var u models.User
	err := s.users.FindOneAndUpdate(ctx, filter,
		bson.M{"$setOnInsert": insert},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// freeUsername derives an unused username from proposed. Later attempts
// append a random suffix.
func (s *AuthService) freeUsername(ctx context.Context, proposed string, attempt int) (string, error) {
	base := utils.SanitizeUsername(proposed)
	if base == "" {
		base = "anon"
		attempt++
	}

	candidate := base
	if attempt > 0 || len(base) < utils.MinUsernameLength {
		candidate = base + "-" + uuid.NewString()[:4]
	}

	taken, err := usernameTaken(ctx, s.users, candidate, primitive.NilObjectID)
	if err != nil {
		return "", err
	}
	if taken {
		return base + "-" + uuid.NewString()[:4], nil
	}
	return candidate, nil
}

func (s *AuthService) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var u models.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
