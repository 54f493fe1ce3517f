package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/internal/models"
	"github.com/AnshRaj112/lighttribe-backend/pkg/geo"
)

var (
	sanFrancisco = geo.Point{Lat: 37.796096, Lon: -122.418145}
	losAngeles   = geo.Point{Lat: 34.0204989, Lon: -118.4117325}
)

func (e *testEnv) post(t *testing.T, author primitive.ObjectID, at geo.Point, mutate ...func(*CreatePostInput)) *models.PostView {
	t.Helper()
	in := CreatePostInput{Text: "hello", Latitude: at.Lat, Longitude: at.Lon, Interests: []string{"yoga"}}
	for _, m := range mutate {
		m(&in)
	}
	view, err := e.svc.Posts.Create(e.ctx, author, in)
	require.NoError(t, err)
	return view
}

func ids(views []models.PostView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestCreatePostPopulatesAuthorAndImages(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")
	avatar := env.image(t, u.ID, "https://cdn.example/avatar.png")
	photo := env.image(t, u.ID, "https://cdn.example/photo.png")

	avatarID := avatar.ID.Hex()
	_, err := env.svc.Users.UpdateSettings(env.ctx, u.ID, SettingsUpdate{UserImage: &avatarID})
	require.NoError(t, err)

	view := env.post(t, u.ID, sanFrancisco, func(in *CreatePostInput) {
		in.Images = []string{photo.ID.Hex()}
	})

	assert.Equal(t, "hello", view.Text)
	assert.Equal(t, models.PrivacyPublic, view.Privacy)
	assert.Equal(t, models.PostTypePost, view.PostType)
	assert.Nil(t, view.LightPage)
	assert.Equal(t, "sam", view.Author.Username)
	require.NotNil(t, view.Author.UserImage)
	assert.Equal(t, "https://cdn.example/avatar.png", view.Author.UserImage.URL)
	require.Len(t, view.Images, 1)
	assert.Equal(t, "https://cdn.example/photo.png", view.Images[0].URL)

	got, err := env.svc.Posts.Get(env.ctx, primitive.NilObjectID, mustID(t, view.ID))
	require.NoError(t, err)
	assert.Equal(t, view, got)
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")

	cases := map[string]CreatePostInput{
		"latitude":       {Latitude: 91},
		"longitude":      {Longitude: -181},
		"post type":      {PostType: "story"},
		"privacy":        {Privacy: "friends"},
		"stray payload":  {PostType: "post", LightPage: &models.LightPage{Website: "x"}},
		"bad image id":   {Images: []string{"nope"}},
		"missing image":  {Images: []string{primitive.NewObjectID().Hex()}},
		"reversed dates": {PostType: "lightPage", LightPage: &models.LightPage{StartDate: timePtr(time.Unix(100, 0)), EndDate: timePtr(time.Unix(50, 0))}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.svc.Posts.Create(env.ctx, u.ID, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateLightPage(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")

	start := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	view := env.post(t, u.ID, sanFrancisco, func(in *CreatePostInput) {
		in.PostType = "lightPage"
		in.LightPage = &models.LightPage{
			Street:           "1 Market St",
			Country:          "US",
			State:            "CA",
			Zip:              "94105",
			Website:          "https://studio.example",
			EventType:        "class",
			ShortDescription: "Bikram",
			StartDate:        &start,
		}
	})

	assert.Equal(t, models.PostTypeLightPage, view.PostType)
	require.NotNil(t, view.LightPage)
	assert.Equal(t, "Bikram", view.LightPage.ShortDescription)

	got, err := env.svc.Posts.Get(env.ctx, primitive.NilObjectID, mustID(t, view.ID))
	require.NoError(t, err)
	require.NotNil(t, got.LightPage)
	assert.Equal(t, "94105", got.LightPage.Zip)
	require.NotNil(t, got.LightPage.StartDate)
	assert.True(t, start.Equal(*got.LightPage.StartDate))
}

func TestSearchRadius(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")
	sf := env.post(t, u.ID, sanFrancisco)
	la := env.post(t, u.ID, losAngeles)

	center := sanFrancisco
	got, err := env.svc.Posts.Search(env.ctx, primitive.NilObjectID, SearchQuery{Center: &center, RadiusKm: 500})
	require.NoError(t, err)
	assert.Equal(t, []string{sf.ID}, ids(got))

	got, err = env.svc.Posts.Search(env.ctx, primitive.NilObjectID, SearchQuery{Center: &center, RadiusKm: 600})
	require.NoError(t, err)
	assert.Equal(t, []string{sf.ID, la.ID}, ids(got))

	got, err = env.svc.Posts.Search(env.ctx, primitive.NilObjectID, SearchQuery{Center: &center, RadiusKm: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{sf.ID}, ids(got))
}

func TestSearchAcrossAntimeridian(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")
	east := env.post(t, u.ID, geo.Point{Lat: 0, Lon: 179.9})
	west := env.post(t, u.ID, geo.Point{Lat: 0, Lon: -179.9})
	env.post(t, u.ID, geo.Point{Lat: 0, Lon: 0})

	center := geo.Point{Lat: 0, Lon: 180}
	got, err := env.svc.Posts.Search(env.ctx, primitive.NilObjectID, SearchQuery{Center: &center, RadiusKm: 50})
	require.NoError(t, err)
	assert.Equal(t, []string{east.ID, west.ID}, ids(got))
}

func TestSearchInterests(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")
	bikram := env.post(t, u.ID, sanFrancisco, func(in *CreatePostInput) { in.Interests = []string{"yogaBikram"} })
	env.post(t, u.ID, sanFrancisco, func(in *CreatePostInput) { in.Interests = []string{"running"} })
	hot := env.post(t, u.ID, sanFrancisco, func(in *CreatePostInput) { in.Interests = []string{"running", "yogaBikram2"} })

	center := sanFrancisco
	got, err := env.svc.Posts.Search(env.ctx, primitive.NilObjectID, SearchQuery{
		Center:    &center,
		RadiusKm:  10,
		Interests: []string{"yogaBikram", " yogaBikram2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{bikram.ID, hot.ID}, ids(got))

	got, err = env.svc.Posts.Search(env.ctx, primitive.NilObjectID, SearchQuery{Interests: []string{"running"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchPagination(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Posts.pageSize = 2
	u := env.register(t, "sam")

	var near []string
	for i := 0; i < 5; i++ {
		near = append(near, env.post(t, u.ID, sanFrancisco).ID)
		env.post(t, u.ID, losAngeles)
	}

	center := sanFrancisco
	var all []string
	for page := 1; page <= 4; page++ {
		got, err := env.svc.Posts.Search(env.ctx, primitive.NilObjectID, SearchQuery{Center: &center, RadiusKm: 100, Page: page})
		require.NoError(t, err)
		if page < 3 {
			assert.Len(t, got, 2)
		}
		all = append(all, ids(got)...)
	}
	assert.Equal(t, near, all)
}

func TestSearchRejectsBadCenter(t *testing.T) {
	env := newTestEnv(t)

	center := geo.Point{Lat: 100}
	_, err := env.svc.Posts.Search(env.ctx, primitive.NilObjectID, SearchQuery{Center: &center, RadiusKm: 1})
	assert.ErrorIs(t, err, ErrValidation)

	center = sanFrancisco
	for _, radius := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err = env.svc.Posts.Search(env.ctx, primitive.NilObjectID, SearchQuery{Center: &center, RadiusKm: radius})
		assert.ErrorIs(t, err, ErrValidation, "radius %v", radius)
	}
}

func TestPagesPastTheEndAreEmpty(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")
	post := env.post(t, u.ID, sanFrancisco)

	center := sanFrancisco
	for _, q := range []SearchQuery{
		{Page: math.MaxInt},
		{Center: &center, RadiusKm: 10, Page: math.MaxInt},
	} {
		got, err := env.svc.Posts.Search(env.ctx, u.ID, q)
		require.NoError(t, err)
		assert.Empty(t, got)
	}

	got, err := env.svc.Posts.ListByUser(env.ctx, u.ID, u.ID, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, got)

	comments, err := env.svc.Comments.List(env.ctx, u.ID, mustID(t, post.ID), math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestPageOffsetClamps(t *testing.T) {
	assert.Equal(t, int64(0), pageOffset(0, 20))
	assert.Equal(t, int64(20), pageOffset(2, 20))
	assert.Equal(t, int64(MaxPage-1)*40, pageOffset(math.MaxInt, 40))
}

func TestPrivatePostsAreVisibleToAuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	sam := env.register(t, "sam")
	alex := env.register(t, "alex")
	public := env.post(t, sam.ID, sanFrancisco)
	private := env.post(t, sam.ID, sanFrancisco, func(in *CreatePostInput) { in.Privacy = "private" })

	_, err := env.svc.Posts.Get(env.ctx, alex.ID, mustID(t, private.ID))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.Posts.Get(env.ctx, sam.ID, mustID(t, private.ID))
	assert.NoError(t, err)

	center := sanFrancisco
	got, err := env.svc.Posts.Search(env.ctx, alex.ID, SearchQuery{Center: &center, RadiusKm: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{public.ID}, ids(got))

	got, err = env.svc.Posts.ListByUser(env.ctx, alex.ID, sam.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{public.ID}, ids(got))

	got, err = env.svc.Posts.ListByUser(env.ctx, sam.ID, sam.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{public.ID, private.ID}, ids(got))
}

func TestGetUnknownPost(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Posts.Get(env.ctx, primitive.NilObjectID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func mustID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}

func timePtr(t time.Time) *time.Time { return &t }
