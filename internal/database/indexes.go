package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the services rely on. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "token.value", Value: 1}}},
			{
				Keys: bson.D{{Key: "auths.anonymous.id", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"auths.anonymous.id": bson.M{"$exists": true}}),
			},
			{
				Keys: bson.D{{Key: "auths.facebook.id", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"auths.facebook.id": bson.M{"$exists": true}}),
			},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "latitude", Value: 1}, {Key: "longitude", Value: 1}}},
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "parent", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		ReviewsCollection: {
			{Keys: bson.D{{Key: "submitter", Value: 1}}},
		},
	}

	for coll, models := range specs {
		for _, model := range models {
			if _, err := s.C(coll).Indexes().CreateOne(ctx, model); err != nil {
				return fmt.Errorf("create index on %s: %w", coll, err)
			}
		}
	}
	return nil
}
