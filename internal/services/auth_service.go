package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/internal/auth"
	"github.com/AnshRaj112/niknak-backend/internal/models"
	"github.com/AnshRaj112/niknak-backend/internal/repository"
	"github.com/AnshRaj112/niknak-backend/pkg/utils"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	// Username may also hold the email address.
	Username string
	Password string
}

// Session is what a successful register or login returns.
type Session struct {
	User  *models.User
	Token string
}

// Tokens issues and verifies bearer tokens. *auth.TokenService implements it.
type Tokens interface {
	Issue(userID primitive.ObjectID, username string) (string, error)
	Verify(tokenString string) (*auth.Claims, error)
}

// AuthService handles registration, login and bearer token checks.
type AuthService struct {
	users  repository.UserStore
	tokens Tokens
	now    func() time.Time
}

func NewAuthService(users repository.UserStore, tokens Tokens) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the account and logs it in. Username uniqueness is
// checked before email, so a clash on both reports the username.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, apperr.InvalidArgument("Password is required")
	}

	taken, err := s.users.UsernameTaken(ctx, in.Username, primitive.NilObjectID)
	if err != nil {
		return nil, storeError("check username", err)
	}
	if taken {
		return nil, apperr.Conflict(msgUsernameTaken)
	}

	taken, err = s.users.EmailTaken(ctx, in.Email, primitive.NilObjectID)
	if err != nil {
		return nil, storeError("check email", err)
	}
	if taken {
		return nil, apperr.Conflict(msgEmailTaken)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.NewUser(in.Username, in.Email, hash, s.now())
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		return nil, duplicateConflict("create user", err)
	}

	// The account already exists at this point; a client that misses the
	// token recovers by logging in.
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token for new user %s: %w", user.ID.Hex(), err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID.Hex(), "username", user.Username)
	return &Session{User: user, Token: token}, nil
}

// Login accepts a username or an email. Failures never say which part was wrong.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if in.Username == "" || in.Password == "" {
		return nil, apperr.Unauthenticated(msgBadCredentials)
	}

	user, err := s.users.FindByLogin(ctx, in.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthenticated(msgBadCredentials)
	}
	if err != nil {
		return nil, storeError("find user", err)
	}

	ok, err := utils.VerifyPassword(in.Password, user.PasswordHash)
	if err != nil {
		slog.WarnContext(ctx, "stored password hash unreadable", "user_id", user.ID.Hex(), "error", err)
	}
	if !ok {
		return nil, apperr.Unauthenticated(msgBadCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

// Authenticate resolves an Authorization header to the live user record.
// Nothing is cached: a deleted user is rejected on the very next call.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*models.User, error) {
	raw, err := auth.BearerToken(header)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, msgUnauthorized, err)
	}

	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, msgInvalidToken, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, msgInvalidToken, err)
	}

	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized(msgUserGone)
	}
	if err != nil {
		return nil, storeError("find user", err)
	}
	return user, nil
}
