package services

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/internal/config"
	"github.com/AnshRaj112/lighttribe-backend/internal/database"
	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/models"
)

// storeTimeout bounds every single store round trip.
const storeTimeout = 5 * time.Second

// Services bundles the domain services wired to one store.
type Services struct {
	Users     *UserService
	Tokens    *TokenService
	Auth      *AuthService
	Devices   *DeviceService
	Follows   *FollowService
	Posts     *PostService
	Comments  *CommentService
	Images    *ImageService
	Reviews   *ReviewService
	Live      *LiveFeed
	Projector *Projector
}

// New wires all services. rdb may be nil.
func New(store *database.Store, rdb *redis.Client, cfg *config.Config) *Services {
	users := store.C(database.UsersCollection)
	posts := store.C(database.PostsCollection)
	comments := store.C(database.CommentsCollection)
	images := store.C(database.ImagesCollection)
	reviews := store.C(database.ReviewsCollection)

	defaults := models.UserDefaults{
		Interests:        cfg.Content.DefaultInterests,
		ShortDescription: cfg.Content.DefaultShortDescription,
	}

	projector := &Projector{users: users, images: images}
	tokens := &TokenService{users: users, cache: NewSessionCache(rdb), ttl: cfg.Auth.TokenTTL, now: time.Now}
	live := NewLiveFeed(rdb)

	var uploader Uploader
	if cfg.Cloudinary.Enabled() {
		cld, err := NewCloudinaryService(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			logging.Warn().Err(err).Msg("cloudinary disabled")
		} else {
			uploader = cld
		}
	}

	var facebook FacebookVerifier
	if fb := NewFacebookClient(cfg.Facebook); fb != nil {
		facebook = fb
	}

	return &Services{
		Users:  &UserService{users: users, images: images, tokens: tokens, defaults: defaults, now: time.Now},
		Tokens: tokens,
		Auth: &AuthService{
			users:    users,
			tokens:   tokens,
			facebook: facebook,
			defaults: defaults,
			now:      time.Now,
		},
		Devices: &DeviceService{users: users, now: time.Now},
		Follows: &FollowService{users: users, projector: projector},
		Posts: &PostService{
			posts:     posts,
			images:    images,
			projector: projector,
			pageSize:  cfg.Content.PostPageSize,
			now:       time.Now,
		},
		Comments: &CommentService{
			comments:  comments,
			posts:     posts,
			projector: projector,
			live:      live,
			pageSize:  cfg.Content.CommentPageSize,
			now:       time.Now,
		},
		Images:    &ImageService{images: images, uploader: uploader, folder: cfg.Cloudinary.Folder, now: time.Now},
		Reviews:   &ReviewService{reviews: reviews, images: images, projector: projector, now: time.Now},
		Live:      live,
		Projector: projector,
	}
}

// ParseID parses a hex object id, reporting field on failure.
func ParseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, invalid(field, "must be a valid id")
	}
	return id, nil
}

func parseIDs(field string, hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := ParseID(field, h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MaxPage is the largest page number a listing accepts.
const MaxPage = math.MaxInt32

// pageOffset converts a 1-based page number into a skip count. Pages are
// clamped to [1, MaxPage] so the offset cannot overflow.
func pageOffset(page, size int) int64 {
	page = min(max(page, 1), MaxPage)
	return int64(page-1) * int64(size)
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}

// nowUTC truncates to milliseconds, the precision BSON dates keep.
func nowUTC(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Millisecond)
}
