package services

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/internal/models"
	"github.com/AnshRaj112/niknak-backend/internal/repository"
)

// ProfileUpdate carries the fields present in the request. Nil means absent.
type ProfileUpdate struct {
	Username   *string
	AvatarName *string
	Avatar     *string
	Email      *string
}

// AvatarUploader stores an image and returns its public URL.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, userID string, image io.Reader) (string, error)
}

type ProfileService struct {
	users    repository.UserStore
	uploader AvatarUploader
}

// NewProfileService builds the service. uploader may be nil, in which case
// UploadAvatar reports the feature as unavailable.
func NewProfileService(users repository.UserStore, uploader AvatarUploader) *ProfileService {
	return &ProfileService{users: users, uploader: uploader}
}

// Update applies a partial profile change for current. With no field to
// change it returns current untouched.
func (s *ProfileService) Update(ctx context.Context, current *models.User, in ProfileUpdate) (*models.User, error) {
	var upd repository.UserUpdate

	// An empty username means "not supplied", not "clear it"
	if in.Username != nil && *in.Username != "" {
		username := *in.Username
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		taken, err := s.users.UsernameTaken(ctx, username, current.ID)
		if err != nil {
			return nil, storeError("check username", err)
		}
		if taken {
			return nil, apperr.Conflict(msgUsernameTaken)
		}
		upd.Username = &username
	}

	if in.Avatar != nil {
		avatar := *in.Avatar
		if err := validateAvatarURL(avatar); err != nil {
			return nil, err
		}
		upd.AvatarURL = &avatar
	}

	if in.AvatarName != nil {
		name := *in.AvatarName
		if err := validateAvatarName(name); err != nil {
			return nil, err
		}
		if name == "" && upd.Username != nil {
			name = *upd.Username
		}
		if name == "" {
			name = current.Username
		}
		upd.AvatarName = &name
	}

	if in.Email != nil {
		email := *in.Email
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		taken, err := s.users.EmailTaken(ctx, email, current.ID)
		if err != nil {
			return nil, storeError("check email", err)
		}
		if taken {
			return nil, apperr.Conflict(msgEmailTaken)
		}
		upd.Email = &email
	}

	if upd.Empty() {
		return current, nil
	}

	updated, err := s.users.Update(ctx, current.ID, upd)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized(msgUserGone)
	}
	if err != nil {
		return nil, duplicateConflict("update profile", err)
	}

	slog.InfoContext(ctx, "profile updated", "user_id", current.ID.Hex())
	return updated, nil
}

// UploadAvatar stores the image and makes it the user's avatar.
func (s *ProfileService) UploadAvatar(ctx context.Context, current *models.User, image io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, apperr.New(apperr.KindUnavailable, "Avatar upload is not configured")
	}

	url, err := s.uploader.UploadAvatar(ctx, current.ID.Hex(), image)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "Avatar upload failed", err)
	}

	return s.Update(ctx, current, ProfileUpdate{Avatar: &url})
}
