package models

import "time"

// The types below are the only shapes that leave the service. None of them
// carries a password hash or a session token, except LoginView.

type ImageView struct {
	ID  string `json:"_id"`
	URL string `json:"url"`
}

// AuthorView is the populated summary of a user embedded in posts and comments.
type AuthorView struct {
	ID        string     `json:"_id"`
	Username  string     `json:"username"`
	UserImage *ImageView `json:"userImage,omitempty"`
}

type PostView struct {
	ID        string      `json:"_id"`
	CreatedAt time.Time   `json:"createdAt"`
	Author    AuthorView  `json:"author"`
	Text      string      `json:"text"`
	Images    []ImageView `json:"images"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Interests []string    `json:"interests"`
	Privacy   Privacy     `json:"privacy"`
	PostType  PostType    `json:"postType"`
	LightPage *LightPage  `json:"lightPage,omitempty"`
}

type CommentView struct {
	ID        string     `json:"_id"`
	CreatedAt time.Time  `json:"createdAt"`
	Author    AuthorView `json:"author"`
	Parent    string     `json:"parent"`
	Text      string     `json:"text"`
}

type DeviceView struct {
	Platform     Platform  `json:"platform"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type FacebookAuthView struct {
	Enabled bool `json:"enabled"`
}

type AuthsView struct {
	Anonymous bool              `json:"anonymous"`
	Facebook  *FacebookAuthView `json:"facebook,omitempty"`
}

// SettingsView is what a user sees of their own account.
type SettingsView struct {
	ID        string       `json:"_id"`
	Username  string       `json:"username"`
	Interests []string     `json:"interests"`
	Profile   Profile      `json:"profile"`
	Devices   []DeviceView `json:"devices"`
	Auths     AuthsView    `json:"auths"`
	Follows   []string     `json:"follows"`
	UserImage *ImageView   `json:"userImage,omitempty"`
	LastLogin *time.Time   `json:"lastLogin,omitempty"`
}

// LoginView is returned by the auth endpoints and is the only view with a token.
type LoginView struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type ReviewView struct {
	ID          string      `json:"_id"`
	Company     string      `json:"company"`
	Description string      `json:"description"`
	Rating      int         `json:"rating"`
	Datetime    time.Time   `json:"datetime"`
	Location    string      `json:"location"`
	Images      []ImageView `json:"images"`
	Submitter   string      `json:"submitter"`
}
