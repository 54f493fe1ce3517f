package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/lighttribe-backend/internal/models"
)

// FollowService maintains the follow set of each user with atomic set
// operators, so concurrent follows and unfollows commute.
type FollowService struct {
	users     lungo.ICollection
	projector *Projector
}

// Follow adds target to the user's follow set. Repeated calls are no-ops.
func (s *FollowService) Follow(ctx context.Context, userID, targetID primitive.ObjectID) (*models.User, error) {
	if userID == targetID {
		return nil, invalid("userId", "Users cannot follow themselves")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := s.users.CountDocuments(ctx, bson.M{"_id": targetID})
	if err != nil {
		return nil, fmt.Errorf("check follow target: %w", err)
	}
	if n == 0 {
		return nil, notFound("user to follow")
	}

	return s.apply(ctx, userID, bson.M{"$addToSet": bson.M{"follows": targetID}})
}

// Unfollow removes target from the follow set if present.
func (s *FollowService) Unfollow(ctx context.Context, userID, targetID primitive.ObjectID) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.apply(ctx, userID, bson.M{"$pullAll": bson.M{"follows": []primitive.ObjectID{targetID}}})
}

// Following returns summaries of the users userID follows, in follow order.
func (s *FollowService) Following(ctx context.Context, userID primitive.ObjectID) ([]models.AuthorView, error) {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	var u models.User
	err := s.users.FindOne(qctx, bson.M{"_id": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("load follows: %w", err)
	}

	authors, err := s.projector.Authors(ctx, u.Follows)
	if err != nil {
		return nil, err
	}
	out := make([]models.AuthorView, 0, len(u.Follows))
	for _, id := range u.Follows {
		if a, ok := authors[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *FollowService) apply(ctx context.Context, userID primitive.ObjectID, update bson.M) (*models.User, error) {
	var u models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("update follows: %w", err)
	}
	return &u, nil
}
