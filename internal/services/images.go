package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/internal/models"
)

// ImageService uploads images and records them as referenceable documents.
type ImageService struct {
	images   lungo.ICollection
	uploader Uploader
	folder   string
	now      func() time.Time
}

// Enabled reports whether an uploader is configured.
func (s *ImageService) Enabled() bool {
	return s.uploader != nil
}

// Upload stores file on the CDN and records it as owned by owner.
func (s *ImageService) Upload(ctx context.Context, owner primitive.ObjectID, file io.Reader) (*models.ImageView, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("image uploads: %w", ErrUnavailable)
	}

	res, err := s.uploader.Upload(ctx, file, s.folder)
	if err != nil {
		return nil, err
	}

	img := models.Image{
		ID:        primitive.NewObjectID(),
		CreatedAt: nowUTC(s.now),
		Owner:     owner,
		URL:       res.URL,
		PublicID:  res.PublicID,
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := s.images.InsertOne(ctx, img); err != nil {
		return nil, fmt.Errorf("insert image: %w", err)
	}

	view := imageView(img)
	return &view, nil
}
