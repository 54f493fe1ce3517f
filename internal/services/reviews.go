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

	"github.com/AnshRaj112/lighttribe-backend/internal/models"
)

// ReviewService stores company reviews.
type ReviewService struct {
	reviews   lungo.ICollection
	images    lungo.ICollection
	projector *Projector
	now       func() time.Time
}

type ReviewInput struct {
	Company     string
	Description string
	Rating      int
	Datetime    *time.Time
	Location    string
	Images      []string
}

// Create stores a review submitted by submitter. Datetime defaults to now.
func (s *ReviewService) Create(ctx context.Context, submitter primitive.ObjectID, in ReviewInput) (*models.ReviewView, error) {
	company := strings.TrimSpace(in.Company)
	if company == "" {
		return nil, invalid("company", "Company is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, invalid("rating", "Rating must be between 1 and 5")
	}
	imageIDs, err := parseIDs("images", in.Images)
	if err != nil {
		return nil, err
	}
	if err := requireImages(ctx, s.images, imageIDs); err != nil {
		return nil, err
	}

	now := nowUTC(s.now)
	datetime := now
	if in.Datetime != nil {
		datetime = in.Datetime.UTC().Truncate(time.Millisecond)
	}

	review := models.Review{
		ID:          primitive.NewObjectID(),
		CreatedAt:   now,
		Company:     company,
		Description: strings.TrimSpace(in.Description),
		Rating:      in.Rating,
		Datetime:    datetime,
		Location:    strings.TrimSpace(in.Location),
		Images:      imageIDs,
		Submitter:   submitter,
	}

	ictx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := s.reviews.InsertOne(ictx, review); err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	views, err := s.projector.Reviews(ctx, []models.Review{review})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Get returns one review.
func (s *ReviewService) Get(ctx context.Context, id primitive.ObjectID) (*models.ReviewView, error) {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	var review models.Review
	err := s.reviews.FindOne(qctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("review")
	}
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}

	views, err := s.projector.Reviews(ctx, []models.Review{review})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListBySubmitter returns every review of a user, oldest first.
func (s *ReviewService) ListBySubmitter(ctx context.Context, submitter primitive.ObjectID) ([]models.ReviewView, error) {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := s.reviews.Find(qctx, bson.M{"submitter": submitter}, options.Find().SetSort(creationOrder))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	var reviews []models.Review
	if err := cur.All(qctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return s.projector.Reviews(ctx, reviews)
}
