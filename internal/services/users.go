package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/models"
	"github.com/AnshRaj112/lighttribe-backend/pkg/utils"
)

// UserService owns registration and account settings.
type UserService struct {
	users    lungo.ICollection
	images   lungo.ICollection
	tokens   *TokenService
	defaults models.UserDefaults
	now      func() time.Time
}

type RegisterInput struct {
	Username  string
	Password  string
	Interests []string
}

// Register creates a password-backed account. A taken username yields ErrConflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := utils.ValidateUsername(username); err != nil {
		return nil, fromUtils(err)
	}
	if in.Password == "" {
		return nil, invalid("password", "Password is required")
	}

	taken, err := s.usernameTaken(ctx, username, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		return nil, err
	}
	u, err := models.NewUser(models.UserParams{
		Username:  username,
		Password:  in.Password,
		Interests: in.Interests,
		Token:     token,
	}, s.defaults, nowUTC(s.now))
	if err != nil {
		return nil, invalid("user", err.Error())
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var u models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// SettingsUpdate is a partial update; nil fields are left unchanged.
type SettingsUpdate struct {
	Username         *string
	Interests        []string
	UserImage        *string
	ShortDescription *string
}

// UpdateSettings applies a partial update in a single atomic $set.
func (s *UserService) UpdateSettings(ctx context.Context, id primitive.ObjectID, in SettingsUpdate) (*models.User, error) {
	set := bson.M{"updated_at": nowUTC(s.now)}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := utils.ValidateUsername(username); err != nil {
			return nil, fromUtils(err)
		}
		taken, err := s.usernameTaken(ctx, username, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
		}
		set["username"] = username
	}

	if in.Interests != nil {
		interests := models.NormalizeInterests(in.Interests)
		if len(interests) == 0 {
			return nil, invalid("interests", "At least one interest is required")
		}
		set["interests"] = interests
	}

	if in.UserImage != nil {
		imageID, err := ParseID("userImage", *in.UserImage)
		if err != nil {
			return nil, err
		}
		if err := s.requireImage(ctx, imageID); err != nil {
			return nil, err
		}
		set["user_image"] = imageID
	}

	if in.ShortDescription != nil {
		set["profile.short_description"] = strings.TrimSpace(*in.ShortDescription)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("user")
	}
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("username: %w", ErrConflict)
		}
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return &u, nil
}

// touchLogin records a successful login.
func touchLogin(ctx context.Context, users lungo.ICollection, id primitive.ObjectID, at time.Time) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login": at}}); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", id.Hex()).Msg("failed to record last login")
	}
}

func (s *UserService) usernameTaken(ctx context.Context, username string, except primitive.ObjectID) (bool, error) {
	return usernameTaken(ctx, s.users, username, except)
}

func usernameTaken(ctx context.Context, users lungo.ICollection, username string, except primitive.ObjectID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"username": username}
	if !except.IsZero() {
		filter["_id"] = bson.M{"$ne": except}
	}
	n, err := users.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

func (s *UserService) requireImage(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := s.images.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("check image: %w", err)
	}
	if n == 0 {
		return invalid("userImage", "Image does not exist")
	}
	return nil
}
