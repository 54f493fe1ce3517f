package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/256dpi/lungo"

	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/models"
	"github.com/AnshRaj112/lighttribe-backend/pkg/utils"
)

// TokenService issues and resolves the single bearer token stored on each user.
type TokenService struct {
	users lungo.ICollection
	cache *SessionCache
	ttl   time.Duration
	now   func() time.Time
}

// NewToken generates a token value with a fresh expiry without storing it.
func (s *TokenService) NewToken() (models.Token, error) {
	value, err := utils.NewSessionToken()
	if err != nil {
		return models.Token{}, fmt.Errorf("generate token: %w", err)
	}
	return models.Token{Value: value, Expiry: nowUTC(s.now).Add(s.ttl)}, nil
}

// Issue rotates the user's token, overwriting the previous one.
func (s *TokenService) Issue(ctx context.Context, userID primitive.ObjectID) (string, error) {
	token, err := s.NewToken()
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var previous models.User
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"token": token, "updated_at": nowUTC(s.now)}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&previous)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", notFound("user")
	}
	if err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	s.cache.Forget(ctx, previous.Token.Value)
	s.cache.Remember(ctx, token.Value, userID.Hex(), s.ttl)
	return token.Value, nil
}

// CurrentOrIssue returns the user's token while it is still valid and
// rotates it otherwise.
func (s *TokenService) CurrentOrIssue(ctx context.Context, u *models.User) (string, error) {
	if u.Token.Valid(u.Token.Value, s.now()) {
		return u.Token.Value, nil
	}
	return s.Issue(ctx, u.ID)
}

// Resolve returns the user whose current, unexpired token is token.
func (s *TokenService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"token.value": token}
	cachedID, hit := s.cache.Lookup(ctx, token)
	if hit {
		if id, err := primitive.ObjectIDFromHex(cachedID); err == nil {
			filter["_id"] = id
		}
	}

	var u models.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		s.cache.Forget(ctx, token)
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	now := s.now()
	if !u.Token.Valid(token, now) {
		logging.Ctx(ctx).Debug().Str("user_id", u.ID.Hex()).Msg("rejected expired token")
		s.cache.Forget(ctx, token)
		return nil, ErrInvalidToken
	}

	if !hit {
		s.cache.Remember(ctx, token, u.ID.Hex(), u.Token.Expiry.Sub(now))
	}
	return &u, nil
}
