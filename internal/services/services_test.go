package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/internal/config"
	"github.com/AnshRaj112/lighttribe-backend/internal/database"
	"github.com/AnshRaj112/lighttribe-backend/internal/models"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	svc   *Services
	store *database.Store
	clock *testClock
	ctx   context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := database.OpenMemory("lighttribe_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.EnsureIndexes(ctx))

	cfg := config.Default()
	cfg.Redis.URI = ""
	cfg.Facebook.GraphURL = ""

	svc := New(store, nil, cfg)
	clock := &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.setClock(clock.Now)

	return &testEnv{svc: svc, store: store, clock: clock, ctx: ctx}
}

func (s *Services) setClock(now func() time.Time) {
	s.Users.now = now
	s.Tokens.now = now
	s.Auth.now = now
	s.Devices.now = now
	s.Posts.now = now
	s.Comments.now = now
	s.Images.now = now
	s.Reviews.now = now
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.svc.Users.Register(e.ctx, RegisterInput{Username: username, Password: "secret"})
	require.NoError(t, err)
	return u
}

func (e *testEnv) image(t *testing.T, owner primitive.ObjectID, url string) models.Image {
	t.Helper()
	img := models.Image{ID: primitive.NewObjectID(), CreatedAt: e.clock.Now(), Owner: owner, URL: url}
	_, err := e.store.C(database.ImagesCollection).InsertOne(e.ctx, img)
	require.NoError(t, err)
	return img
}
