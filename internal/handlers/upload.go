package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/internal/middleware"
	"github.com/AnshRaj112/niknak-backend/internal/response"
)

// MaxAvatarSize is the largest accepted avatar image (5MB)
const MaxAvatarSize = 5 << 20

// UploadAvatar handles POST /api/profile/avatar with a multipart "file" field.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}

	// Leave headroom for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+64<<10)
	if err := r.ParseMultipartForm(MaxAvatarSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, r, apperr.InvalidArgument("File too large (max 5MB)"))
			return
		}
		response.Error(w, r, apperr.Wrap(apperr.KindInvalidArgument, "Failed to parse form", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, r, apperr.Wrap(apperr.KindInvalidArgument, "No file provided", err))
		return
	}
	defer file.Close()

	if header.Size > MaxAvatarSize {
		response.Error(w, r, apperr.InvalidArgument("File too large (max 5MB)"))
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		response.Error(w, r, apperr.Wrap(apperr.KindInvalidArgument, "Failed to read file", err))
		return
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		response.Error(w, r, apperr.InvalidArgument("File must be an image"))
		return
	}

	updated, err := h.profiles.UploadAvatar(r.Context(), user, io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.Success(w, ProfileData{User: updated.Response()})
}
