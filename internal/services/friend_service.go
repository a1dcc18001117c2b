package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/internal/models"
	"github.com/AnshRaj112/niknak-backend/internal/repository"
)

// FriendService owns the friendship graph and the friends view built from it.
type FriendService struct {
	users       repository.UserStore
	friendships repository.FriendshipStore
	now         func() time.Time
}

func NewFriendService(users repository.UserStore, friendships repository.FriendshipStore) *FriendService {
	return &FriendService{
		users:       users,
		friendships: friendships,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Add links caller with the user named by target (an id or a username)
// and returns the caller's updated friend list. The edge is accepted
// immediately and is visible from both sides.
func (s *FriendService) Add(ctx context.Context, caller *models.User, target string) ([]models.FriendItem, error) {
	if target == "" {
		return nil, apperr.InvalidArgument("friend_id is required")
	}

	friend, err := s.resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	if friend.ID == caller.ID {
		return nil, apperr.InvalidArgument(msgSelfFriend)
	}

	exists, err := s.friendships.Exists(ctx, caller.ID, friend.ID)
	if err != nil {
		return nil, storeError("check friendship", err)
	}
	if exists {
		return nil, apperr.Conflict(msgAlreadyFriends)
	}

	edge := models.NewFriendship(caller.ID, friend.ID, s.now())
	if err := s.friendships.Create(ctx, edge); err != nil {
		return nil, duplicateConflict("create friendship", err)
	}

	slog.InfoContext(ctx, "friend added", "user_id", caller.ID.Hex(), "friend_id", friend.ID.Hex())
	return s.List(ctx, caller.ID)
}

// resolve tries target as an id first, then as an exact username.
func (s *FriendService) resolve(ctx context.Context, target string) (*models.User, error) {
	if id, err := primitive.ObjectIDFromHex(target); err == nil {
		u, err := s.users.FindByID(ctx, id)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, storeError("find user", err)
		}
	}

	u, err := s.users.FindByUsername(ctx, target)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(msgUserGone)
	}
	if err != nil {
		return nil, storeError("find user", err)
	}
	return u, nil
}

// List returns userID's friends, most recently updated edge first. Edges
// whose other side no longer exists are skipped.
func (s *FriendService) List(ctx context.Context, userID primitive.ObjectID) ([]models.FriendItem, error) {
	edges, err := s.friendships.ListAccepted(ctx, userID)
	if err != nil {
		return nil, storeError("list friendships", err)
	}

	items := make([]models.FriendItem, 0, len(edges))
	if len(edges) == 0 {
		return items, nil
	}

	ids := make([]primitive.ObjectID, 0, len(edges))
	for i := range edges {
		ids = append(ids, edges[i].Other(userID))
	}

	found, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("find friends", err)
	}

	// Edge order wins; the batch lookup has none of its own
	for _, id := range ids {
		u, ok := found[id]
		if !ok {
			slog.DebugContext(ctx, "friend record missing, skipping", "user_id", userID.Hex(), "friend_id", id.Hex())
			continue
		}
		items = append(items, models.NewFriendItem(u))
	}
	return items, nil
}
