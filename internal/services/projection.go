package services

import (
	"context"
	"fmt"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/internal/models"
)

// Projector turns stored documents into response views, resolving author
// and image references in batched lookups.
type Projector struct {
	users  lungo.ICollection
	images lungo.ICollection
}

// Images loads the referenced images keyed by id. Unknown ids are skipped.
func (p *Projector) Images(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.ImageView, error) {
	out := make(map[primitive.ObjectID]models.ImageView, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := p.images.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	var images []models.Image
	if err := cur.All(ctx, &images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	for _, img := range images {
		out[img.ID] = imageView(img)
	}
	return out, nil
}

// Authors loads author summaries, including their profile image, keyed by id.
func (p *Projector) Authors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AuthorView, error) {
	out := make(map[primitive.ObjectID]models.AuthorView, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	qctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := p.users.Find(qctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	var users []models.User
	if err := cur.All(qctx, &users); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}

	imageIDs := make([]primitive.ObjectID, 0, len(users))
	for _, u := range users {
		if u.UserImage != nil {
			imageIDs = append(imageIDs, *u.UserImage)
		}
	}
	images, err := p.Images(ctx, imageIDs)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		view := models.AuthorView{ID: u.ID.Hex(), Username: u.Username}
		if u.UserImage != nil {
			if img, ok := images[*u.UserImage]; ok {
				view.UserImage = &img
			}
		}
		out[u.ID] = view
	}
	return out, nil
}

// Posts projects posts in order with authors and images populated.
func (p *Projector) Posts(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	authorIDs := make([]primitive.ObjectID, 0, len(posts))
	var imageIDs []primitive.ObjectID
	for _, post := range posts {
		authorIDs = append(authorIDs, post.Author)
		imageIDs = append(imageIDs, post.Images...)
	}

	authors, err := p.Authors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	images, err := p.Images(ctx, imageIDs)
	if err != nil {
		return nil, err
	}

	out := make([]models.PostView, 0, len(posts))
	for _, post := range posts {
		view := models.PostView{
			ID:        post.ID.Hex(),
			CreatedAt: post.CreatedAt,
			Author:    authorOrStub(authors, post.Author),
			Text:      post.Text,
			Images:    make([]models.ImageView, 0, len(post.Images)),
			Latitude:  post.Latitude,
			Longitude: post.Longitude,
			Interests: nonNil(post.Interests),
			Privacy:   post.Privacy,
			PostType:  post.PostType,
		}
		for _, id := range post.Images {
			if img, ok := images[id]; ok {
				view.Images = append(view.Images, img)
			}
		}
		if post.PostType == models.PostTypeLightPage {
			view.LightPage = post.LightPage
		}
		out = append(out, view)
	}
	return out, nil
}

// Comments projects comments in order with authors populated.
func (p *Projector) Comments(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	authorIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.Author)
	}
	authors, err := p.Authors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, models.CommentView{
			ID:        c.ID.Hex(),
			CreatedAt: c.CreatedAt,
			Author:    authorOrStub(authors, c.Author),
			Parent:    c.Parent.Hex(),
			Text:      c.Text,
		})
	}
	return out, nil
}

// Settings projects a user for its owner. Device tokens, the session token
// and the password hash are never included.
func (p *Projector) Settings(ctx context.Context, u *models.User) (*models.SettingsView, error) {
	view := &models.SettingsView{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Interests: nonNil(u.Interests),
		Profile:   u.Profile,
		Devices:   make([]models.DeviceView, 0, len(u.Devices)),
		Auths:     models.AuthsView{Anonymous: u.Auths.Anonymous != nil},
		Follows:   make([]string, 0, len(u.Follows)),
		LastLogin: u.LastLogin,
	}
	for _, d := range u.Devices {
		view.Devices = append(view.Devices, models.DeviceView{Platform: d.Platform, RegisteredAt: d.RegisteredAt})
	}
	for _, id := range u.Follows {
		view.Follows = append(view.Follows, id.Hex())
	}
	if u.Auths.Facebook != nil {
		view.Auths.Facebook = &models.FacebookAuthView{Enabled: u.Auths.Facebook.Enabled}
	}
	if u.UserImage != nil {
		images, err := p.Images(ctx, []primitive.ObjectID{*u.UserImage})
		if err != nil {
			return nil, err
		}
		if img, ok := images[*u.UserImage]; ok {
			view.UserImage = &img
		}
	}
	return view, nil
}

// Reviews projects reviews with their images populated.
func (p *Projector) Reviews(ctx context.Context, reviews []models.Review) ([]models.ReviewView, error) {
	var imageIDs []primitive.ObjectID
	for _, r := range reviews {
		imageIDs = append(imageIDs, r.Images...)
	}
	images, err := p.Images(ctx, imageIDs)
	if err != nil {
		return nil, err
	}

	out := make([]models.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		view := models.ReviewView{
			ID:          r.ID.Hex(),
			Company:     r.Company,
			Description: r.Description,
			Rating:      r.Rating,
			Datetime:    r.Datetime,
			Location:    r.Location,
			Images:      make([]models.ImageView, 0, len(r.Images)),
			Submitter:   r.Submitter.Hex(),
		}
		for _, id := range r.Images {
			if img, ok := images[id]; ok {
				view.Images = append(view.Images, img)
			}
		}
		out = append(out, view)
	}
	return out, nil
}

// Login is the only projection that exposes a token.
func Login(sess *Session) models.LoginView {
	return models.LoginView{UID: sess.User.ID.Hex(), Username: sess.User.Username, Token: sess.Token}
}

func imageView(img models.Image) models.ImageView {
	return models.ImageView{ID: img.ID.Hex(), URL: img.URL}
}

func authorOrStub(authors map[primitive.ObjectID]models.AuthorView, id primitive.ObjectID) models.AuthorView {
	if a, ok := authors[id]; ok {
		return a
	}
	return models.AuthorView{ID: id.Hex()}
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
