package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/internal/auth"
	"github.com/AnshRaj112/niknak-backend/internal/models"
	"github.com/AnshRaj112/niknak-backend/internal/repository"
	"github.com/AnshRaj112/niknak-backend/internal/repository/repotest"
)

type fixture struct {
	users       *repotest.UserStore
	friendships *repotest.FriendshipStore
	tokens      *auth.TokenService
	auth        *AuthService
	profile     *ProfileService
	friends     *FriendService
	search      *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret", 7*24*time.Hour)
	require.NoError(t, err)

	users := repotest.NewUserStore()
	friendships := repotest.NewFriendshipStore()
	return &fixture{
		users:       users,
		friendships: friendships,
		tokens:      tokens,
		auth:        NewAuthService(users, tokens),
		profile:     NewProfileService(users, nil),
		friends:     NewFriendService(users, friendships),
		search:      NewUserService(users),
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) *Session {
	t.Helper()
	s, err := f.auth.Register(context.Background(), RegisterInput{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	return s
}

func ptr(s string) *string { return &s }

func TestRegister(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "alice", "alice@x.com", "pw1")

	assert.False(t, s.User.ID.IsZero())
	assert.Equal(t, "alice", s.User.AvatarName)
	assert.Equal(t, models.DefaultAvatarURL, s.User.AvatarURL)
	assert.NotEqual(t, "pw1", s.User.PasswordHash)

	claims, err := f.tokens.Verify(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID.Hex(), claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@x.com", "pw1")

	_, err := f.auth.Register(context.Background(), RegisterInput{Username: "alice", Email: "other@x.com", Password: "pw"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, msgUsernameTaken, apperr.PublicMessage(err))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@x.com", "pw1")

	_, err := f.auth.Register(context.Background(), RegisterInput{Username: "alice2", Email: "alice@x.com", Password: "pw"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, msgEmailTaken, apperr.PublicMessage(err))
}

func TestRegister_UsernameCheckedFirst(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@x.com", "pw1")
	f.register(t, "bob", "bob@x.com", "pw2")

	_, err := f.auth.Register(context.Background(), RegisterInput{Username: "alice", Email: "bob@x.com", Password: "pw"})
	assert.Equal(t, msgUsernameTaken, apperr.PublicMessage(err))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	for name, in := range map[string]RegisterInput{
		"short username": {Username: "al", Email: "a@x.com", Password: "pw"},
		"long username":  {Username: strings.Repeat("a", 33), Email: "a@x.com", Password: "pw"},
		"bad email":      {Username: "alice", Email: "not-an-email", Password: "pw"},
		"no password":    {Username: "alice", Email: "a@x.com"},
	} {
		_, err := f.auth.Register(context.Background(), in)
		assert.True(t, apperr.Is(err, apperr.KindInvalidArgument), name)
	}
	assert.Zero(t, f.users.Len())
}

// racingUserStore reports every name as free, as two concurrent requests would see it.
type racingUserStore struct {
	*repotest.UserStore
}

func (racingUserStore) UsernameTaken(context.Context, string, primitive.ObjectID) (bool, error) {
	return false, nil
}

func (racingUserStore) EmailTaken(context.Context, string, primitive.ObjectID) (bool, error) {
	return false, nil
}

func TestRegister_RaceLostToUniqueIndex(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@x.com", "pw1")

	svc := NewAuthService(racingUserStore{f.users}, f.tokens)
	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "new@x.com", Password: "pw"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, msgUsernameTaken, apperr.PublicMessage(err))
	assert.Equal(t, 1, f.users.Len())
}

type failingTokens struct {
	*auth.TokenService
	err error
}

func (f failingTokens) Issue(primitive.ObjectID, string) (string, error) {
	return "", f.err
}

func TestRegister_TokenFailureLeavesAccount(t *testing.T) {
	f := newFixture(t)
	signErr := errors.New("sign failed")

	svc := NewAuthService(f.users, failingTokens{TokenService: f.tokens, err: signErr})
	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@x.com", Password: "pw1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, signErr)
	assert.Contains(t, err.Error(), "issue token")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, 1, f.users.Len())

	// Login is the way back in
	s, err := f.auth.Login(context.Background(), LoginInput{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "alice", "alice@x.com", "pw1")

	for _, login := range []string{"alice", "alice@x.com"} {
		s, err := f.auth.Login(context.Background(), LoginInput{Username: login, Password: "pw1"})
		require.NoError(t, err, login)
		assert.Equal(t, reg.User.ID, s.User.ID)
		assert.NotEmpty(t, s.Token)
	}
}

func TestLogin_GenericFailure(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@x.com", "pw1")

	_, wrongPassword := f.auth.Login(context.Background(), LoginInput{Username: "alice", Password: "nope"})
	_, unknownUser := f.auth.Login(context.Background(), LoginInput{Username: "mallory", Password: "pw1"})

	for _, err := range []error{wrongPassword, unknownUser} {
		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
		assert.Equal(t, msgBadCredentials, apperr.PublicMessage(err))
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "alice", "alice@x.com", "pw1")

	u, err := f.auth.Authenticate(context.Background(), "Bearer "+s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, u.ID)

	for _, header := range []string{"", s.Token, "Bearer garbage", "Basic " + s.Token} {
		_, err := f.auth.Authenticate(context.Background(), header)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized), header)
	}
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "alice", "alice@x.com", "pw1")

	f.users.Delete(s.User.ID)

	_, err := f.auth.Authenticate(context.Background(), "Bearer "+s.Token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, msgUserGone, apperr.PublicMessage(err))
}

func TestAuthenticate_StoreDown(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "alice", "alice@x.com", "pw1")

	f.users.Err = repository.ErrUnavailable
	_, err := f.auth.Authenticate(context.Background(), "Bearer "+s.Token)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestProfileUpdate_NoFields(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "alice", "alice@x.com", "pw1")

	u, err := f.profile.Update(context.Background(), s.User, ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, s.User.Response(), u.Response())

	u, err = f.profile.Update(context.Background(), s.User, ProfileUpdate{Username: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestProfileUpdate_Fields(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "alice", "alice@x.com", "pw1")

	u, err := f.profile.Update(context.Background(), s.User, ProfileUpdate{
		Username:   ptr("alicia"),
		AvatarName: ptr("Ali"),
		Avatar:     ptr("https://cdn.example.com/a.png"),
		Email:      ptr("alicia@x.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.Username)
	assert.Equal(t, "Ali", u.AvatarName)
	assert.Equal(t, "https://cdn.example.com/a.png", u.AvatarURL)
	assert.Equal(t, "alicia@x.com", u.Email)

	stored, err := f.users.FindByID(context.Background(), s.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", stored.Username)
}

func TestProfileUpdate_EmptyAvatarNameFallsBack(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "alice", "alice@x.com", "pw1")

	u, err := f.profile.Update(context.Background(), s.User, ProfileUpdate{Username: ptr("alicia"), AvatarName: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.AvatarName)

	u, err = f.profile.Update(context.Background(), u, ProfileUpdate{AvatarName: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.AvatarName)
}

func TestProfileUpdate_Conflicts(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")
	f.register(t, "bob", "bob@x.com", "pw2")

	_, err := f.profile.Update(context.Background(), alice.User, ProfileUpdate{Username: ptr("bob")})
	assert.Equal(t, msgUsernameTaken, apperr.PublicMessage(err))
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.profile.Update(context.Background(), alice.User, ProfileUpdate{Email: ptr("bob@x.com")})
	assert.Equal(t, msgEmailTaken, apperr.PublicMessage(err))

	// Keeping your own name is not a clash
	u, err := f.profile.Update(context.Background(), alice.User, ProfileUpdate{Username: ptr("alice"), Email: ptr("alice@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestProfileUpdate_Validation(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "alice", "alice@x.com", "pw1")

	for name, in := range map[string]ProfileUpdate{
		"short username":   {Username: ptr("ab")},
		"bad email":        {Email: ptr("nope")},
		"bad avatar":       {Avatar: ptr("not a url")},
		"long avatar name": {AvatarName: ptr(strings.Repeat("x", 65))},
	} {
		_, err := f.profile.Update(context.Background(), s.User, in)
		assert.True(t, apperr.Is(err, apperr.KindInvalidArgument), name)
	}
}

type stubUploader struct {
	url  string
	err  error
	got  string
	body string
}

func (s *stubUploader) UploadAvatar(_ context.Context, userID string, image io.Reader) (string, error) {
	s.got = userID
	b, _ := io.ReadAll(image)
	s.body = string(b)
	return s.url, s.err
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "alice", "alice@x.com", "pw1")

	up := &stubUploader{url: "https://res.cloudinary.com/demo/avatars/x.png"}
	svc := NewProfileService(f.users, up)

	u, err := svc.UploadAvatar(context.Background(), s.User, strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, up.url, u.AvatarURL)
	assert.Equal(t, s.User.ID.Hex(), up.got)
	assert.Equal(t, "png", up.body)

	up.err = errors.New("quota")
	_, err = svc.UploadAvatar(context.Background(), s.User, strings.NewReader("png"))
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))

	_, err = f.profile.UploadAvatar(context.Background(), s.User, strings.NewReader("png"))
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestAddFriend_Mutual(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")
	bob := f.register(t, "bob", "bob@x.com", "pw2")

	items, err := f.friends.Add(context.Background(), alice.User, "bob")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, bob.User.ID.Hex(), items[0].ID)
	assert.Equal(t, "bob", items[0].Name)
	assert.Equal(t, models.DefaultAvatarURL, items[0].Avatar)
	assert.Equal(t, "", items[0].LastMessage)
	assert.False(t, items[0].Online)
	assert.Zero(t, items[0].Unread)
	assert.Nil(t, items[0].LastMessageTime)
	assert.Equal(t, "active", items[0].Status)

	items, err = f.friends.List(context.Background(), bob.User.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, alice.User.ID.Hex(), items[0].ID)
	assert.Equal(t, "alice", items[0].Name)

	assert.Equal(t, 1, f.friendships.Len())
}

func TestAddFriend_ByID(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")
	bob := f.register(t, "bob", "bob@x.com", "pw2")

	items, err := f.friends.Add(context.Background(), alice.User, bob.User.ID.Hex())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, bob.User.ID.Hex(), items[0].ID)
}

func TestAddFriend_UsernameThatLooksLikeID(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")
	hexName := primitive.NewObjectID().Hex()
	f.register(t, hexName, "hex@x.com", "pw")

	items, err := f.friends.Add(context.Background(), alice.User, hexName)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, hexName, items[0].Name)
}

func TestAddFriend_Reverse(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")
	bob := f.register(t, "bob", "bob@x.com", "pw2")

	_, err := f.friends.Add(context.Background(), alice.User, "bob")
	require.NoError(t, err)

	_, err = f.friends.Add(context.Background(), bob.User, "alice")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, msgAlreadyFriends, apperr.PublicMessage(err))

	_, err = f.friends.Add(context.Background(), alice.User, "bob")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 1, f.friendships.Len())
}

func TestAddFriend_Self(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")

	for _, target := range []string{"alice", alice.User.ID.Hex()} {
		_, err := f.friends.Add(context.Background(), alice.User, target)
		assert.True(t, apperr.Is(err, apperr.KindInvalidArgument), target)
	}
	assert.Zero(t, f.friendships.Len())
}

func TestAddFriend_UnknownTarget(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")

	for _, target := range []string{"nobody", primitive.NewObjectID().Hex()} {
		_, err := f.friends.Add(context.Background(), alice.User, target)
		assert.True(t, apperr.Is(err, apperr.KindNotFound), target)
	}

	_, err := f.friends.Add(context.Background(), alice.User, "")
	assert.True(t, apperr.Is(err, apperr.KindInvalidArgument))
}

// racingFriendshipStore never sees an existing edge, like a request that
// lost the race between the check and the insert.
type racingFriendshipStore struct {
	*repotest.FriendshipStore
}

func (racingFriendshipStore) Exists(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error) {
	return false, nil
}

func TestAddFriend_RaceLostToUniqueIndex(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")
	bob := f.register(t, "bob", "bob@x.com", "pw2")

	_, err := f.friends.Add(context.Background(), alice.User, "bob")
	require.NoError(t, err)

	svc := NewFriendService(f.users, racingFriendshipStore{f.friendships})
	_, err = svc.Add(context.Background(), bob.User, "alice")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 1, f.friendships.Len())
}

func TestListFriends_Order(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")
	bob := f.register(t, "bob", "bob@x.com", "pw2")
	carol := f.register(t, "carol", "carol@x.com", "pw3")

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.friends.now = func() time.Time { return clock }
	_, err := f.friends.Add(context.Background(), alice.User, "bob")
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	items, err := f.friends.Add(context.Background(), carol.User, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = f.friends.List(context.Background(), alice.User.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, carol.User.ID.Hex(), items[0].ID)
	assert.Equal(t, bob.User.ID.Hex(), items[1].ID)
}

func TestListFriends_SameTimestampNewestFirst(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")
	bob := f.register(t, "bob", "bob@x.com", "pw2")
	carol := f.register(t, "carol", "carol@x.com", "pw3")

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.friends.now = func() time.Time { return clock }

	_, err := f.friends.Add(context.Background(), alice.User, "bob")
	require.NoError(t, err)
	items, err := f.friends.Add(context.Background(), alice.User, "carol")
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, carol.User.ID.Hex(), items[0].ID)
	assert.Equal(t, bob.User.ID.Hex(), items[1].ID)
}

func TestListFriends_SkipsMissingAndPending(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")
	bob := f.register(t, "bob", "bob@x.com", "pw2")
	carol := f.register(t, "carol", "carol@x.com", "pw3")

	_, err := f.friends.Add(context.Background(), alice.User, "bob")
	require.NoError(t, err)
	_, err = f.friends.Add(context.Background(), alice.User, "carol")
	require.NoError(t, err)
	f.users.Delete(bob.User.ID)

	f.friendships.Put(models.Friendship{
		UserID:    primitive.NewObjectID(),
		FriendID:  alice.User.ID,
		Status:    "pending",
		UpdatedAt: time.Now(),
	})

	items, err := f.friends.List(context.Background(), alice.User.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, carol.User.ID.Hex(), items[0].ID)
}

func TestListFriends_Empty(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")

	items, err := f.friends.List(context.Background(), alice.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListFriends_LegacyDocumentDefaults(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")

	legacy := &models.User{Username: "dave", Email: "dave@x.com"}
	f.users.Put(legacy)
	f.friendships.Put(models.Friendship{
		UserID:    legacy.ID,
		FriendID:  alice.User.ID,
		Status:    models.FriendshipAccepted,
		UpdatedAt: time.Now(),
	})

	items, err := f.friends.List(context.Background(), alice.User.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "dave", items[0].Name)
	assert.Equal(t, models.DefaultAvatarURL, items[0].Avatar)
	assert.Equal(t, models.DefaultUserStatus, items[0].Status)
}

func TestListFriends_StoreDown(t *testing.T) {
	f := newFixture(t)
	f.friendships.Err = errors.Join(repository.ErrUnavailable, errors.New("dial tcp: refused"))

	_, err := f.friends.List(context.Background(), primitive.NewObjectID())
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@x.com", "pw1")
	bob := f.register(t, "bob", "bob@x.com", "pw2")

	u, err := f.search.Search(context.Background(), bob.User, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.User.ID, u.ID)

	u, err = f.search.Search(context.Background(), bob.User, alice.User.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = f.search.Search(context.Background(), alice.User, "alice")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.search.Search(context.Background(), alice.User, "nobody")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.search.Search(context.Background(), alice.User, "")
	assert.True(t, apperr.Is(err, apperr.KindInvalidArgument))
}
