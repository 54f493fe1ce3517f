package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/pkg/geo"
)

var testDefaults = UserDefaults{
	Interests:        []string{"yoga", "meditation"},
	ShortDescription: "I love lightTribe",
}

func TestNewUserAppliesDefaults(t *testing.T) {
	now := time.Now()
	u, err := NewUser(UserParams{
		Username: "u1",
		Password: "p",
		Token:    Token{Value: "tok", Expiry: now.Add(time.Hour)},
	}, testDefaults, now)
	require.NoError(t, err)

	assert.Equal(t, []string{"yoga", "meditation"}, u.Interests)
	assert.Equal(t, "I love lightTribe", u.Profile.ShortDescription)
	assert.NotEqual(t, "p", u.Password)
	assert.True(t, u.CheckPassword("p"))
	assert.False(t, u.CheckPassword("q"))
	assert.Empty(t, u.Devices)
	assert.False(t, u.ID.IsZero())
}

func TestNewUserKeepsInterests(t *testing.T) {
	now := time.Now()
	u, err := NewUser(UserParams{
		Username:  "u1",
		Password:  "p",
		Interests: []string{" surf ", "surf", "", "climb"},
		Token:     Token{Value: "tok", Expiry: now.Add(time.Hour)},
	}, testDefaults, now)
	require.NoError(t, err)

	assert.Equal(t, []string{"surf", "climb"}, u.Interests)
}

func TestNewUserRequiresFields(t *testing.T) {
	now := time.Now()
	_, err := NewUser(UserParams{Password: "p", Token: Token{Value: "t"}}, testDefaults, now)
	assert.Error(t, err)

	_, err = NewUser(UserParams{Username: "u", Token: Token{Value: "t"}}, testDefaults, now)
	assert.Error(t, err)

	_, err = NewUser(UserParams{Username: "u", Password: "p"}, testDefaults, now)
	assert.Error(t, err)
}

func TestTokenValid(t *testing.T) {
	now := time.Now()
	tok := Token{Value: "abc", Expiry: now.Add(time.Minute)}

	assert.True(t, tok.Valid("abc", now))
	assert.False(t, tok.Valid("abd", now))
	assert.False(t, tok.Valid("abc", now.Add(2*time.Minute)))
	assert.False(t, Token{}.Valid("", now))
}

func TestNewPostDefaults(t *testing.T) {
	author := primitive.NewObjectID()
	p, err := NewPost(PostParams{
		Author:   author,
		Text:     " hi ",
		Location: geo.Point{Lat: 37.7, Lon: -122.4},
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, PostTypePost, p.PostType)
	assert.Equal(t, PrivacyPublic, p.Privacy)
	assert.Equal(t, "hi", p.Text)
	assert.Nil(t, p.LightPage)
	assert.NotNil(t, p.Images)
	assert.Equal(t, geo.Point{Lat: 37.7, Lon: -122.4}, p.Location())
}

func TestNewPostLightPageVariant(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	p, err := NewPost(PostParams{
		PostType:  PostTypeLightPage,
		LightPage: &LightPage{Street: "1 Main", StartDate: &start, EndDate: &end},
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "1 Main", p.LightPage.Street)

	_, err = NewPost(PostParams{LightPage: &LightPage{}}, time.Now())
	assert.ErrorIs(t, err, ErrLightPagePayload)

	_, err = NewPost(PostParams{
		PostType:  PostTypeLightPage,
		LightPage: &LightPage{StartDate: &end, EndDate: &start},
	}, time.Now())
	assert.ErrorIs(t, err, ErrLightPageDates)
}

func TestNewPostRejectsBadInput(t *testing.T) {
	_, err := NewPost(PostParams{Location: geo.Point{Lat: 100}}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidLocation)

	_, err = NewPost(PostParams{PostType: "story"}, time.Now())
	assert.ErrorIs(t, err, ErrUnknownPostType)

	_, err = NewPost(PostParams{Privacy: "friends"}, time.Now())
	assert.ErrorIs(t, err, ErrUnknownPrivacy)
}

func TestPlatformValid(t *testing.T) {
	assert.True(t, PlatformIOS.Valid())
	assert.True(t, PlatformAndroid.Valid())
	assert.False(t, Platform("web").Valid())
}
