package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	CreatedAt   time.Time            `bson:"created_at"`
	Company     string               `bson:"company"`
	Description string               `bson:"description"`
	Rating      int                  `bson:"rating"`
	Datetime    time.Time            `bson:"datetime"`
	Location    string               `bson:"location"`
	Images      []primitive.ObjectID `bson:"images"`
	Submitter   primitive.ObjectID   `bson:"submitter"`
}
