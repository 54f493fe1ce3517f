package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateAndReadReviews(t *testing.T) {
	env := newTestEnv(t)
	sam := env.register(t, "sam")
	img := env.image(t, sam.ID, "https://cdn.example/studio.png")

	when := time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)
	review, err := env.svc.Reviews.Create(env.ctx, sam.ID, ReviewInput{
		Company:     " Sunrise Yoga ",
		Description: "Great instructors",
		Rating:      5,
		Datetime:    &when,
		Location:    "Oakland",
		Images:      []string{img.ID.Hex()},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Yoga", review.Company)
	assert.Equal(t, when, review.Datetime)
	assert.Equal(t, sam.ID.Hex(), review.Submitter)
	require.Len(t, review.Images, 1)
	assert.Equal(t, img.URL, review.Images[0].URL)

	got, err := env.svc.Reviews.Get(env.ctx, mustID(t, review.ID))
	require.NoError(t, err)
	assert.Equal(t, review, got)

	second, err := env.svc.Reviews.Create(env.ctx, sam.ID, ReviewInput{Company: "Moon Studio", Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now(), second.Datetime)
	assert.Empty(t, second.Images)

	list, err := env.svc.Reviews.ListBySubmitter(env.ctx, sam.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, review.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	other, err := env.svc.Reviews.ListBySubmitter(env.ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCreateReviewValidation(t *testing.T) {
	env := newTestEnv(t)
	sam := env.register(t, "sam")

	cases := map[string]ReviewInput{
		"no company":    {Rating: 3},
		"rating low":    {Company: "x", Rating: 0},
		"rating high":   {Company: "x", Rating: 6},
		"bad image":     {Company: "x", Rating: 3, Images: []string{"zzz"}},
		"missing image": {Company: "x", Rating: 3, Images: []string{primitive.NewObjectID().Hex()}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.svc.Reviews.Create(env.ctx, sam.ID, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestGetUnknownReview(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Reviews.Get(env.ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}
