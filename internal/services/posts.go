package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/metrics"
	"github.com/AnshRaj112/lighttribe-backend/internal/models"
	"github.com/AnshRaj112/lighttribe-backend/pkg/geo"
)

// PostService stores posts and answers listing and geo-radius queries.
type PostService struct {
	posts     lungo.ICollection
	images    lungo.ICollection
	projector *Projector
	pageSize  int
	now       func() time.Time
}

type CreatePostInput struct {
	Text      string
	Images    []string
	Latitude  float64
	Longitude float64
	Interests []string
	Privacy   string
	PostType  string
	LightPage *models.LightPage
}

// Create stores a post authored by authorID and returns its populated view.
func (s *PostService) Create(ctx context.Context, authorID primitive.ObjectID, in CreatePostInput) (*models.PostView, error) {
	imageIDs, err := parseIDs("images", in.Images)
	if err != nil {
		return nil, err
	}
	if err := s.requireImages(ctx, imageIDs); err != nil {
		return nil, err
	}

	post, err := models.NewPost(models.PostParams{
		Author:    authorID,
		Text:      in.Text,
		Images:    imageIDs,
		Location:  geo.Point{Lat: in.Latitude, Lon: in.Longitude},
		Interests: in.Interests,
		Privacy:   models.Privacy(in.Privacy),
		PostType:  models.PostType(in.PostType),
		LightPage: in.LightPage,
	}, nowUTC(s.now))
	if err != nil {
		return nil, postFieldError(err)
	}

	ictx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := s.posts.InsertOne(ictx, post); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	metrics.PostsCreated.WithLabelValues(string(post.PostType)).Inc()

	views, err := s.projector.Posts(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Get returns a post visible to viewer.
func (s *PostService) Get(ctx context.Context, viewer, id primitive.ObjectID) (*models.PostView, error) {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	var post models.Post
	err := s.posts.FindOne(qctx, bson.M{"$and": []bson.M{{"_id": id}, visibleTo(viewer)}}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("post")
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}

	views, err := s.projector.Posts(ctx, []models.Post{post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListByUser pages through the posts of authorID visible to viewer, oldest first.
func (s *PostService) ListByUser(ctx context.Context, viewer, authorID primitive.ObjectID, page int) ([]models.PostView, error) {
	filter := bson.M{"$and": []bson.M{{"author": authorID}, visibleTo(viewer)}}
	return s.list(ctx, filter, page)
}

// SearchQuery selects posts. Center nil lists every visible post; otherwise
// only posts within RadiusKm of Center qualify. Interests, when set, must
// intersect the post's interests.
type SearchQuery struct {
	Center    *geo.Point
	RadiusKm  float64
	Interests []string
	Page      int
}

// Search answers q. Results are ordered by creation time, then id, so pages
// are stable; no distance ordering is applied.
func (s *PostService) Search(ctx context.Context, viewer primitive.ObjectID, q SearchQuery) ([]models.PostView, error) {
	conds := []bson.M{visibleTo(viewer)}
	if interests := models.NormalizeInterests(q.Interests); len(interests) > 0 {
		conds = append(conds, bson.M{"interests": bson.M{"$in": interests}})
	}

	if q.Center == nil {
		return s.list(ctx, bson.M{"$and": conds}, q.Page)
	}

	if !q.Center.Valid() {
		return nil, invalid("latitude", "Coordinates are out of range")
	}
	if math.IsNaN(q.RadiusKm) || math.IsInf(q.RadiusKm, 0) || q.RadiusKm < 0 {
		return nil, invalid("radius", "Radius must be a non-negative number")
	}

	box := geo.BoundingBox(*q.Center, q.RadiusKm)
	conds = append(conds, bson.M{"latitude": bson.M{"$gte": box.MinLat, "$lte": box.MaxLat}})
	switch len(box.Lon) {
	case 1:
		conds = append(conds, lonRange(box.Lon[0]))
	case 2:
		conds = append(conds, bson.M{"$or": []bson.M{lonRange(box.Lon[0]), lonRange(box.Lon[1])}})
	}

	qctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := s.posts.Find(qctx, bson.M{"$and": conds}, options.Find().SetSort(creationOrder))
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer cur.Close(qctx)

	skip := pageOffset(q.Page, s.pageSize)
	matches := make([]models.Post, 0, s.pageSize)
	scanned := 0
	for len(matches) < s.pageSize && cur.Next(qctx) {
		var post models.Post
		if err := cur.Decode(&post); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		scanned++
		if !geo.Within(*q.Center, post.Location(), q.RadiusKm) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		matches = append(matches, post)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	metrics.GeoSearchScanned.Observe(float64(scanned))
	logging.Ctx(ctx).Debug().Int("scanned", scanned).Int("matched", len(matches)).Float64("radius_km", q.RadiusKm).Msg("geo search")

	return s.projector.Posts(ctx, matches)
}

var creationOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

func (s *PostService) list(ctx context.Context, filter bson.M, page int) ([]models.PostView, error) {
	qctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(creationOrder).
		SetSkip(pageOffset(page, s.pageSize)).
		SetLimit(int64(s.pageSize))

	cur, err := s.posts.Find(qctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	var posts []models.Post
	if err := cur.All(qctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return s.projector.Posts(ctx, posts)
}

func (s *PostService) requireImages(ctx context.Context, ids []primitive.ObjectID) error {
	return requireImages(ctx, s.images, ids)
}

// requireImages rejects references to images that were never uploaded.
func requireImages(ctx context.Context, images lungo.ICollection, ids []primitive.ObjectID) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := images.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("check images: %w", err)
	}
	if int(n) != len(ids) {
		return invalid("images", "One or more images do not exist")
	}
	return nil
}

// visibleTo matches public posts and the viewer's own private posts.
func visibleTo(viewer primitive.ObjectID) bson.M {
	if viewer.IsZero() {
		return bson.M{"privacy": models.PrivacyPublic}
	}
	return bson.M{"$or": []bson.M{
		{"privacy": models.PrivacyPublic},
		{"author": viewer},
	}}
}

func lonRange(r geo.LonRange) bson.M {
	return bson.M{"longitude": bson.M{"$gte": r.Min, "$lte": r.Max}}
}

func postFieldError(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidLocation):
		return invalid("latitude", err.Error())
	case errors.Is(err, models.ErrUnknownPostType):
		return invalid("postType", err.Error())
	case errors.Is(err, models.ErrUnknownPrivacy):
		return invalid("privacy", err.Error())
	case errors.Is(err, models.ErrLightPagePayload), errors.Is(err, models.ErrLightPageDates):
		return invalid("lightPage", err.Error())
	}
	return err
}
