package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/pkg/geo"
)

type PostType string

const (
	PostTypePost      PostType = "post"
	PostTypeLightPage PostType = "lightPage"
)

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	CreatedAt time.Time            `bson:"created_at"`
	Author    primitive.ObjectID   `bson:"author"`
	Text      string               `bson:"text"`
	Images    []primitive.ObjectID `bson:"images"`
	Latitude  float64              `bson:"latitude"`
	Longitude float64              `bson:"longitude"`
	Interests []string             `bson:"interests"`
	Privacy   Privacy              `bson:"privacy"`
	PostType  PostType             `bson:"post_type"`

	// LightPage is set if and only if PostType is PostTypeLightPage.
	LightPage *LightPage `bson:"light_page,omitempty"`
}

// Location returns the post coordinates.
func (p *Post) Location() geo.Point {
	return geo.Point{Lat: p.Latitude, Lon: p.Longitude}
}

// LightPage is the business or event listing payload.
type LightPage struct {
	Street           string     `bson:"street,omitempty" json:"street,omitempty"`
	Country          string     `bson:"country,omitempty" json:"country,omitempty"`
	State            string     `bson:"state,omitempty" json:"state,omitempty"`
	Zip              string     `bson:"zip,omitempty" json:"zip,omitempty"`
	Website          string     `bson:"website,omitempty" json:"website,omitempty"`
	EventType        string     `bson:"event_type,omitempty" json:"eventType,omitempty"`
	ShortDescription string     `bson:"short_description,omitempty" json:"shortDescription,omitempty"`
	LongDescription  string     `bson:"long_description,omitempty" json:"longDescription,omitempty"`
	StartDate        *time.Time `bson:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate          *time.Time `bson:"end_date,omitempty" json:"endDate,omitempty"`
}

// PostParams are the inputs to NewPost.
type PostParams struct {
	Author    primitive.ObjectID
	Text      string
	Images    []primitive.ObjectID
	Location  geo.Point
	Interests []string
	Privacy   Privacy
	PostType  PostType
	LightPage *LightPage
}

var (
	ErrInvalidLocation  = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrUnknownPostType  = errors.New("postType must be post or lightPage")
	ErrUnknownPrivacy   = errors.New("privacy must be public or private")
	ErrLightPagePayload = errors.New("lightPage payload is only allowed when postType is lightPage")
	ErrLightPageDates   = errors.New("lightPage endDate must not be before startDate")
)

// NewPost validates params and builds a post. The lightPage payload is
// required for lightPage posts and rejected for every other type.
func NewPost(p PostParams, now time.Time) (*Post, error) {
	if !p.Location.Valid() {
		return nil, ErrInvalidLocation
	}

	postType := p.PostType
	if postType == "" {
		postType = PostTypePost
	}
	privacy := p.Privacy
	if privacy == "" {
		privacy = PrivacyPublic
	}

	switch postType {
	case PostTypePost:
		if p.LightPage != nil {
			return nil, ErrLightPagePayload
		}
	case PostTypeLightPage:
		if p.LightPage == nil {
			p.LightPage = &LightPage{}
		}
		lp := p.LightPage
		if lp.StartDate != nil && lp.EndDate != nil && lp.EndDate.Before(*lp.StartDate) {
			return nil, ErrLightPageDates
		}
	default:
		return nil, ErrUnknownPostType
	}
	if privacy != PrivacyPublic && privacy != PrivacyPrivate {
		return nil, ErrUnknownPrivacy
	}

	images := p.Images
	if images == nil {
		images = []primitive.ObjectID{}
	}

	return &Post{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		Author:    p.Author,
		Text:      strings.TrimSpace(p.Text),
		Images:    images,
		Latitude:  p.Location.Lat,
		Longitude: p.Location.Lon,
		Interests: NormalizeInterests(p.Interests),
		Privacy:   privacy,
		PostType:  postType,
		LightPage: p.LightPage,
	}, nil
}
