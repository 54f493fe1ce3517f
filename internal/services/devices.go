package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/lighttribe-backend/internal/models"
	"github.com/AnshRaj112/lighttribe-backend/pkg/utils"
)

// removeAttempts bounds the compare-and-swap loop in Remove.
const removeAttempts = 5

// DeviceService maintains the push notification devices of a user.
type DeviceService struct {
	users lungo.ICollection
	now   func() time.Time
}

// Add appends a device record with the current time. Registering the same
// (token, platform) twice keeps both records.
func (s *DeviceService) Add(ctx context.Context, userID primitive.ObjectID, rawToken string, platform models.Platform) (*models.User, error) {
	token, err := utils.NormalizeDeviceToken(rawToken)
	if err != nil {
		return nil, fromUtils(err)
	}
	if !platform.Valid() {
		return nil, invalid("platform", "Platform must be ios or android")
	}

	now := nowUTC(s.now)
	device := models.Device{Token: token, Platform: platform, RegisteredAt: now}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var u models.User
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"devices": device},
			"$set":  bson.M{"updated_at": now},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("add device: %w", err)
	}
	return &u, nil
}

// Remove deletes every record of (token, platform) registered at or before
// before; a nil before means now. A device registered again after before
// survives a late invalid-token report.
func (s *DeviceService) Remove(ctx context.Context, userID primitive.ObjectID, rawToken string, platform models.Platform, before *time.Time) (*models.User, error) {
	token, err := utils.NormalizeDeviceToken(rawToken)
	if err != nil {
		return nil, fromUtils(err)
	}
	if !platform.Valid() {
		return nil, invalid("platform", "Platform must be ios or android")
	}
	cutoff := nowUTC(s.now)
	if before != nil {
		cutoff = before.UTC()
	}

	// The update is guarded by the device list it was computed from, so a
	// concurrent Add makes it miss and retry instead of being overwritten.
	for attempt := 0; attempt < removeAttempts; attempt++ {
		u, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}

		kept := make([]models.Device, 0, len(u.Devices))
		for _, d := range u.Devices {
			if d.Token == token && d.Platform == platform && !d.RegisteredAt.After(cutoff) {
				continue
			}
			kept = append(kept, d)
		}
		if len(kept) == len(u.Devices) {
			return u, nil
		}

		swapped, err := s.swap(ctx, userID, u.Devices, kept)
		if err != nil {
			return nil, err
		}
		if swapped {
			u.Devices = kept
			return u, nil
		}
	}
	return nil, fmt.Errorf("remove device: too much contention: %w", ErrConflict)
}

func (s *DeviceService) load(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var u models.User
	err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("load devices: %w", err)
	}
	return &u, nil
}

func (s *DeviceService) swap(ctx context.Context, userID primitive.ObjectID, expected, kept []models.Device) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, "devices": expected},
		bson.M{"$set": bson.M{"devices": kept, "updated_at": nowUTC(s.now)}},
	)
	if err != nil {
		return false, fmt.Errorf("remove device: %w", err)
	}
	return res.MatchedCount == 1, nil
}
