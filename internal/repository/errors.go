package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable wraps network failures and timeouts talking to the store.
	ErrUnavailable = errors.New("store unavailable")
)

// DuplicateKeyError reports a unique index violation. Index is the index
// name, e.g. IndexUsername, when the server message includes it.
type DuplicateKeyError struct {
	Index string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key on index %q", e.Index)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// IsDuplicate reports whether err is a unique index violation on index
// (any index when index is empty).
func IsDuplicate(err error, index string) bool {
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) {
		return false
	}
	return index == "" || dup.Index == index
}

var duplicateIndexPattern = regexp.MustCompile(`index: (\S+)`)

// translate turns driver errors into the package's sentinel errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		dup := &DuplicateKeyError{Err: err}
		if m := duplicateIndexPattern.FindStringSubmatch(err.Error()); m != nil {
			dup.Index = m[1]
		}
		return dup
	case mongo.IsNetworkError(err), mongo.IsTimeout(err),
		errors.Is(err, mongo.ErrClientDisconnected), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		return err
	}
}
