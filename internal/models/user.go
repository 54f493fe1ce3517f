package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/lighttribe-backend/pkg/utils"
)

// Platform identifies a push notification service.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`

	Username string `bson:"username" json:"username"`
	Password string `bson:"password" json:"-"` // argon2id hash
	Token    Token  `bson:"token" json:"-"`

	Auths     Auths                `bson:"auths" json:"auths"`
	Profile   Profile              `bson:"profile" json:"profile"`
	Interests []string             `bson:"interests" json:"interests"`
	Devices   []Device             `bson:"devices" json:"-"`
	Follows   []primitive.ObjectID `bson:"follows" json:"follows"`
	UserImage *primitive.ObjectID  `bson:"user_image,omitempty" json:"userImage,omitempty"`
	LastLogin *time.Time           `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
}

// Token is the single active bearer token of a user.
type Token struct {
	Value  string    `bson:"value"`
	Expiry time.Time `bson:"expiry"`
}

// Valid reports whether the token matches value and has not expired at now.
func (t Token) Valid(value string, now time.Time) bool {
	return t.Value != "" && t.Value == value && now.Before(t.Expiry)
}

type Auths struct {
	Anonymous *AnonymousAuth `bson:"anonymous,omitempty"`
	Facebook  *FacebookAuth  `bson:"facebook,omitempty"`
}

type AnonymousAuth struct {
	ID string `bson:"id"`
}

type FacebookAuth struct {
	ID      string `bson:"id"`
	Enabled bool   `bson:"enabled"`
}

type Profile struct {
	ShortDescription string `bson:"short_description" json:"shortDescription"`
}

// Device is a push notification registration. A device is identified by
// (Token, Platform); Token is always normalized lower-case hex.
type Device struct {
	Token        string    `bson:"token"`
	Platform     Platform  `bson:"platform"`
	RegisteredAt time.Time `bson:"registered_at"`
}

// UserParams are the inputs to NewUser.
type UserParams struct {
	Username         string
	Password         string
	Interests        []string
	ShortDescription string
	Token            Token
	Anonymous        *AnonymousAuth
	Facebook         *FacebookAuth
}

// UserDefaults are applied by NewUser when the caller leaves a field empty.
type UserDefaults struct {
	Interests        []string
	ShortDescription string
}

// NewUser builds a user with defaults applied and the password hashed.
func NewUser(p UserParams, defaults UserDefaults, now time.Time) (*User, error) {
	username := strings.TrimSpace(p.Username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if p.Token.Value == "" {
		return nil, errors.New("token is required")
	}

	u := &User{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Username:  username,
		Token:     p.Token,
		Auths:     Auths{Anonymous: p.Anonymous, Facebook: p.Facebook},
		Profile:   Profile{ShortDescription: p.ShortDescription},
		Interests: NormalizeInterests(p.Interests),
		Devices:   []Device{},
		Follows:   []primitive.ObjectID{},
	}
	if len(u.Interests) == 0 {
		u.Interests = append([]string(nil), defaults.Interests...)
	}
	if u.Profile.ShortDescription == "" {
		u.Profile.ShortDescription = defaults.ShortDescription
	}
	if err := u.SetPassword(p.Password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash with a hash of plain.
func (u *User) SetPassword(plain string) error {
	if plain == "" {
		return errors.New("password is required")
	}
	hash, err := utils.HashPassword(plain)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	ok, err := utils.VerifyPassword(plain, u.Password)
	return err == nil && ok
}

// IsFollowing reports whether u follows id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Follows {
		if f == id {
			return true
		}
	}
	return false
}

// NormalizeInterests trims tags and drops blanks and duplicates, keeping order.
func NormalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
