package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is an uploaded asset hosted on the CDN.
type Image struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	Owner     primitive.ObjectID `bson:"owner"`
	URL       string             `bson:"url"`
	PublicID  string             `bson:"public_id"`
}
