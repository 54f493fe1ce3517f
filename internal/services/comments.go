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
	"github.com/AnshRaj112/lighttribe-backend/internal/metrics"
	"github.com/AnshRaj112/lighttribe-backend/internal/models"
)

// maxCommentLength caps comment text in bytes.
const maxCommentLength = 4000

// CommentService stores comments on posts.
type CommentService struct {
	comments  lungo.ICollection
	posts     lungo.ICollection
	projector *Projector
	live      *LiveFeed
	pageSize  int
	now       func() time.Time
}

// Create adds a comment to a post visible to the author and announces it on
// the live feed.
func (s *CommentService) Create(ctx context.Context, authorID, postID primitive.ObjectID, text string) (*models.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "Comment text is required")
	}
	if len(text) > maxCommentLength {
		return nil, invalid("text", fmt.Sprintf("Comment must be at most %d characters", maxCommentLength))
	}
	if err := s.requirePost(ctx, authorID, postID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		CreatedAt: nowUTC(s.now),
		Author:    authorID,
		Parent:    postID,
		Text:      text,
	}

	ictx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := s.comments.InsertOne(ictx, comment); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	metrics.CommentsCreated.Inc()

	views, err := s.projector.Comments(ctx, []models.Comment{comment})
	if err != nil {
		return nil, err
	}
	view := &views[0]

	if err := s.live.Publish(ctx, postID.Hex(), view); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("post_id", postID.Hex()).Msg("failed to publish live comment")
	}
	return view, nil
}

// List pages through a post's comments, oldest first.
func (s *CommentService) List(ctx context.Context, viewer, postID primitive.ObjectID, page int) ([]models.CommentView, error) {
	if err := s.requirePost(ctx, viewer, postID); err != nil {
		return nil, err
	}

	qctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(creationOrder).
		SetSkip(pageOffset(page, s.pageSize)).
		SetLimit(int64(s.pageSize))
	cur, err := s.comments.Find(qctx, bson.M{"parent": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	var comments []models.Comment
	if err := cur.All(qctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return s.projector.Comments(ctx, comments)
}

// RequirePost reports ErrNotFound unless postID exists and viewer may see it.
func (s *CommentService) RequirePost(ctx context.Context, viewer, postID primitive.ObjectID) error {
	return s.requirePost(ctx, viewer, postID)
}

func (s *CommentService) requirePost(ctx context.Context, viewer, postID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var post models.Post
	err := s.posts.FindOne(ctx, bson.M{"$and": []bson.M{{"_id": postID}, visibleTo(viewer)}}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound("post")
	}
	if err != nil {
		return fmt.Errorf("find post: %w", err)
	}
	return nil
}
