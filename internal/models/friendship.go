package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendshipStatus is the state of an edge. Only FriendshipAccepted is ever
// written: adding a friend is mutual and immediate.
type FriendshipStatus string

const (
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is one stored edge. It is kept in a single orientation
// (UserID added FriendID) but means the same thing from both sides.
type Friendship struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	FriendID  primitive.ObjectID `bson:"friend_id"`
	PairKey   string             `bson:"pair_key"`
	Status    FriendshipStatus   `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// NewFriendship builds an accepted edge from userID to friendID.
func NewFriendship(userID, friendID primitive.ObjectID, now time.Time) *Friendship {
	return &Friendship{
		UserID:    userID,
		FriendID:  friendID,
		PairKey:   PairKey(userID, friendID),
		Status:    FriendshipAccepted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PairKey is identical for (a, b) and (b, a); a unique index on it keeps
// one edge per unordered pair.
func PairKey(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}

// Other returns the side of the edge that is not id.
func (f *Friendship) Other(id primitive.ObjectID) primitive.ObjectID {
	if f.UserID == id {
		return f.FriendID
	}
	return f.UserID
}

// FriendItem is a display-ready friend entry. The messaging and presence
// fields are placeholders: there is no message or presence subsystem.
type FriendItem struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Avatar          string     `json:"avatar"`
	LastMessage     string     `json:"lastMessage"`
	Online          bool       `json:"online"`
	Unread          int        `json:"unread"`
	LastMessageTime *time.Time `json:"lastMessageTime"`
	Status          string     `json:"status"`
}

func NewFriendItem(u *User) FriendItem {
	name := u.AvatarName
	if name == "" {
		name = u.Username
	}
	avatar := u.AvatarURL
	if avatar == "" {
		avatar = DefaultAvatarURL
	}
	status := u.Status
	if status == "" {
		status = DefaultUserStatus
	}
	return FriendItem{
		ID:     u.ID.Hex(),
		Name:   name,
		Avatar: avatar,
		Status: status,
	}
}
