package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/internal/models"
)

const apnsToken = "a591bde2720d89d4086beaa843f9b061a18b36b48cd0008a1f347a5ad844be95"

func TestAddDeviceNormalizesToken(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")

	updated, err := env.svc.Devices.Add(env.ctx, u.ID,
		"<A591BDE2 720D89D4 086BEAA8 43F9B061 A18B36B4 8CD0008A 1F347A5A D844BE95>", models.PlatformIOS)
	require.NoError(t, err)
	require.Len(t, updated.Devices, 1)
	assert.Equal(t, apnsToken, updated.Devices[0].Token)
	assert.Equal(t, models.PlatformIOS, updated.Devices[0].Platform)
	assert.Equal(t, env.clock.Now(), updated.Devices[0].RegisteredAt)

	// a second registration is recorded as well
	updated, err = env.svc.Devices.Add(env.ctx, u.ID, apnsToken, models.PlatformIOS)
	require.NoError(t, err)
	assert.Len(t, updated.Devices, 2)
}

func TestAddDeviceValidation(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")

	_, err := env.svc.Devices.Add(env.ctx, u.ID, "xyz", models.PlatformIOS)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.Devices.Add(env.ctx, u.ID, apnsToken, "windows")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.Devices.Add(env.ctx, env.register(t, "alex").ID, "", models.PlatformAndroid)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddDeviceUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Devices.Add(env.ctx, primitive.NewObjectID(), apnsToken, models.PlatformIOS)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveDevice(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")

	_, err := env.svc.Devices.Add(env.ctx, u.ID, apnsToken, models.PlatformIOS)
	require.NoError(t, err)
	_, err = env.svc.Devices.Add(env.ctx, u.ID, apnsToken, models.PlatformAndroid)
	require.NoError(t, err)

	updated, err := env.svc.Devices.Remove(env.ctx, u.ID, apnsToken, models.PlatformIOS, nil)
	require.NoError(t, err)
	require.Len(t, updated.Devices, 1)
	assert.Equal(t, models.PlatformAndroid, updated.Devices[0].Platform)

	stored, err := env.svc.Users.Get(env.ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Devices, 1)

	// removing an absent device is a no-op
	updated, err = env.svc.Devices.Remove(env.ctx, u.ID, apnsToken, models.PlatformIOS, nil)
	require.NoError(t, err)
	assert.Len(t, updated.Devices, 1)
}

func TestRemoveDeviceHonorsCutoff(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "sam")

	first := env.clock.Now()
	_, err := env.svc.Devices.Add(env.ctx, u.ID, apnsToken, models.PlatformIOS)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.svc.Devices.Add(env.ctx, u.ID, apnsToken, models.PlatformIOS)
	require.NoError(t, err)

	before := first.Add(-time.Minute)
	updated, err := env.svc.Devices.Remove(env.ctx, u.ID, apnsToken, models.PlatformIOS, &before)
	require.NoError(t, err)
	assert.Len(t, updated.Devices, 2)

	before = first.Add(time.Minute)
	updated, err = env.svc.Devices.Remove(env.ctx, u.ID, apnsToken, models.PlatformIOS, &before)
	require.NoError(t, err)
	require.Len(t, updated.Devices, 1)
	assert.Equal(t, first.Add(time.Hour), updated.Devices[0].RegisteredAt)
}
