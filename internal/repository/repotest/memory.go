// Package repotest provides in-memory stores that enforce the same unique
// constraints as the Mongo indexes, for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/niknak-backend/internal/models"
	"github.com/AnshRaj112/niknak-backend/internal/repository"
)

var (
	_ repository.UserStore       = (*UserStore)(nil)
	_ repository.FriendshipStore = (*FriendshipStore)(nil)
)

type UserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	// Err, when set, is returned by every call.
	Err error
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if err := s.checkUnique(user.Username, user.Email, primitive.NilObjectID); err != nil {
		return err
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.ID == id })
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Username == username })
}

func (s *UserStore) FindByLogin(_ context.Context, login string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Username == login || u.Email == login })
}

func (s *UserStore) FindByIDOrUsername(_ context.Context, q string) (*models.User, error) {
	id, _ := primitive.ObjectIDFromHex(q)
	return s.find(func(u *models.User) bool {
		return u.Username == q || (!id.IsZero() && u.ID == id)
	})
}

func (s *UserStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	found := make(map[primitive.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			found[id] = s.copyOut(u)
		}
	}
	return found, nil
}

func (s *UserStore) UsernameTaken(_ context.Context, username string, exclude primitive.ObjectID) (bool, error) {
	u, err := s.find(func(u *models.User) bool { return u.Username == username && u.ID != exclude })
	return u != nil, ignoreNotFound(err)
}

func (s *UserStore) EmailTaken(_ context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	u, err := s.find(func(u *models.User) bool { return u.Email == email && u.ID != exclude })
	return u != nil, ignoreNotFound(err)
}

func (s *UserStore) Update(_ context.Context, id primitive.ObjectID, upd repository.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	next := *u
	if upd.Username != nil {
		next.Username = *upd.Username
	}
	if upd.Email != nil {
		next.Email = *upd.Email
	}
	if upd.AvatarName != nil {
		next.AvatarName = *upd.AvatarName
	}
	if upd.AvatarURL != nil {
		next.AvatarURL = *upd.AvatarURL
	}
	if err := s.checkUnique(next.Username, next.Email, id); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()
	s.users[id] = &next
	return s.copyOut(&next), nil
}

// Put stores u as-is, bypassing defaults, to mimic documents written by
// older code.
func (s *UserStore) Put(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	s.users[u.ID] = &cp
}

func (s *UserStore) Delete(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *UserStore) find(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if match(u) {
			return s.copyOut(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) checkUnique(username, email string, self primitive.ObjectID) error {
	for _, u := range s.users {
		if u.ID == self {
			continue
		}
		if u.Username == username {
			return &repository.DuplicateKeyError{Index: repository.IndexUsername}
		}
		if u.Email == email {
			return &repository.DuplicateKeyError{Index: repository.IndexEmail}
		}
	}
	return nil
}

func (s *UserStore) copyOut(u *models.User) *models.User {
	cp := *u
	cp.Badges = append([]string(nil), u.Badges...)
	cp.ApplyDefaults()
	return &cp
}

func ignoreNotFound(err error) error {
	if err == repository.ErrNotFound {
		return nil
	}
	return err
}

type FriendshipStore struct {
	mu    sync.Mutex
	edges []models.Friendship

	// Err, when set, is returned by every call.
	Err error
}

func NewFriendshipStore() *FriendshipStore {
	return &FriendshipStore{}
}

func (s *FriendshipStore) Exists(_ context.Context, a, b primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, e := range s.edges {
		if (e.UserID == a && e.FriendID == b) || (e.UserID == b && e.FriendID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (s *FriendshipStore) Create(_ context.Context, f *models.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if f.PairKey == "" {
		f.PairKey = models.PairKey(f.UserID, f.FriendID)
	}
	for _, e := range s.edges {
		if e.PairKey == f.PairKey {
			return &repository.DuplicateKeyError{Index: repository.IndexPairKey}
		}
	}
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.edges = append(s.edges, *f)
	return nil
}

func (s *FriendshipStore) ListAccepted(_ context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Friendship{}
	for _, e := range s.edges {
		if e.Status != models.FriendshipAccepted {
			continue
		}
		if e.UserID == userID || e.FriendID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

// Put stores an edge verbatim, e.g. one with a non-accepted status.
func (s *FriendshipStore) Put(f models.Friendship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.edges = append(s.edges, f)
}

func (s *FriendshipStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}
