package services

import (
	"errors"
	"fmt"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/internal/repository"
)

// Client-facing messages.
const (
	msgUsernameTaken    = "Username already exists"
	msgEmailTaken       = "Email already exists"
	msgBadCredentials   = "Wrong username or password"
	msgUnauthorized     = "Unauthorized"
	msgInvalidToken     = "Invalid token"
	msgUserGone         = "User does not exist"
	msgUserNotFound     = "User not found"
	msgSelfFriend       = "Cannot add yourself as a friend"
	msgAlreadyFriends   = "Already friends or request already exists"
	msgStoreUnavailable = "Service temporarily unavailable"
)

// storeError wraps a repository failure for the caller. Outages become
// KindUnavailable; everything else stays internal.
func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return apperr.Wrap(apperr.KindUnavailable, msgStoreUnavailable, fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// duplicateConflict maps a unique index violation to the Conflict the
// matching pre-check would have reported. Other errors go to storeError.
func duplicateConflict(op string, err error) error {
	switch {
	case repository.IsDuplicate(err, repository.IndexUsername):
		return apperr.Wrap(apperr.KindConflict, msgUsernameTaken, err)
	case repository.IsDuplicate(err, repository.IndexEmail):
		return apperr.Wrap(apperr.KindConflict, msgEmailTaken, err)
	case repository.IsDuplicate(err, repository.IndexPairKey):
		return apperr.Wrap(apperr.KindConflict, msgAlreadyFriends, err)
	case repository.IsDuplicate(err, ""):
		return apperr.Wrap(apperr.KindConflict, "Record already exists", err)
	default:
		return storeError(op, err)
	}
}
