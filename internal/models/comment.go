package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	Author    primitive.ObjectID `bson:"author"`
	Parent    primitive.ObjectID `bson:"parent"`
	Text      string             `bson:"text"`
}
