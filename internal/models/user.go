package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultAvatarURL is served for users that never set an avatar.
	DefaultAvatarURL = "https://i.pravatar.cc/100"
	// DefaultUserStatus is the status of every freshly registered user.
	DefaultUserStatus = "active"
)

// User is a document in the users collection.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`

	Username     string `bson:"username"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"` // Never leaves the service layer

	AvatarName string   `bson:"avatar_name,omitempty"`
	AvatarURL  string   `bson:"avatar_url,omitempty"`
	Badges     []string `bson:"badges"`
	Bio        string   `bson:"bio"`
	Status     string   `bson:"status,omitempty"`
}

// NewUser builds a registration document with every default filled in.
func NewUser(username, email, passwordHash string, now time.Time) *User {
	return &User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		AvatarName:   username,
		AvatarURL:    DefaultAvatarURL,
		Badges:       []string{},
		Status:       DefaultUserStatus,
	}
}

// ApplyDefaults fills fields that older or hand-written documents may lack.
// Stores call it right after decoding so the rest of the code never checks.
func (u *User) ApplyDefaults() {
	if u.AvatarName == "" {
		u.AvatarName = u.Username
	}
	if u.AvatarURL == "" {
		u.AvatarURL = DefaultAvatarURL
	}
	if u.Badges == nil {
		u.Badges = []string{}
	}
	if u.Status == "" {
		u.Status = DefaultUserStatus
	}
}

// UserResponse is the public shape of a user; the password hash is never part of it.
type UserResponse struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	AvatarName string   `json:"avatar_name"`
	Email      string   `json:"email"`
	Avatar     string   `json:"avatar"`
	Badges     []string `json:"badges"`
}

func (u *User) Response() UserResponse {
	badges := u.Badges
	if badges == nil {
		badges = []string{}
	}
	return UserResponse{
		ID:         u.ID.Hex(),
		Username:   u.Username,
		AvatarName: u.AvatarName,
		Email:      u.Email,
		Avatar:     u.AvatarURL,
		Badges:     badges,
	}
}

// UserSummary is what user search returns about somebody else; no email.
type UserSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	AvatarName string `json:"avatar_name"`
	Avatar     string `json:"avatar"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID.Hex(),
		Username:   u.Username,
		AvatarName: u.AvatarName,
		Avatar:     u.AvatarURL,
	}
}
