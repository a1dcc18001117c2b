package services

import (
	"context"
	"errors"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/internal/models"
	"github.com/AnshRaj112/niknak-backend/internal/repository"
)

type UserService struct {
	users repository.UserStore
}

func NewUserService(users repository.UserStore) *UserService {
	return &UserService{users: users}
}

// Search finds another user by exact username or id. The caller never
// finds themselves.
func (s *UserService) Search(ctx context.Context, caller *models.User, q string) (*models.User, error) {
	if q == "" {
		return nil, apperr.InvalidArgument("Query parameter q is required")
	}

	u, err := s.users.FindByIDOrUsername(ctx, q)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, storeError("search user", err)
	}
	if u.ID == caller.ID {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	return u, nil
}
