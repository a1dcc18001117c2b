package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/internal/middleware"
	"github.com/AnshRaj112/niknak-backend/internal/models"
	"github.com/AnshRaj112/niknak-backend/internal/response"
	"github.com/AnshRaj112/niknak-backend/internal/services"
)

type ProfileUpdater interface {
	Update(ctx context.Context, current *models.User, in services.ProfileUpdate) (*models.User, error)
	UploadAvatar(ctx context.Context, current *models.User, image io.Reader) (*models.User, error)
}

type ProfileHandler struct {
	profiles ProfileUpdater
}

func NewProfileHandler(profiles ProfileUpdater) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// ProfileRequest is the body of PUT /api/profile. Absent fields are left alone.
type ProfileRequest struct {
	Username   *string `json:"username"`
	AvatarName *string `json:"avatar_name"`
	Avatar     *string `json:"avatar"`
	Email      *string `json:"email"`
}

type ProfileData struct {
	User models.UserResponse `json:"user"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}

	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	updated, err := h.profiles.Update(r.Context(), user, services.ProfileUpdate{
		Username:   req.Username,
		AvatarName: req.AvatarName,
		Avatar:     req.Avatar,
		Email:      req.Email,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.Success(w, ProfileData{User: updated.Response()})
}
