package handlers

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/internal/middleware"
	"github.com/AnshRaj112/niknak-backend/internal/models"
	"github.com/AnshRaj112/niknak-backend/internal/response"
)

type UserFinder interface {
	Search(ctx context.Context, caller *models.User, q string) (*models.User, error)
}

type UsersHandler struct {
	users UserFinder
}

func NewUsersHandler(users UserFinder) *UsersHandler {
	return &UsersHandler{users: users}
}

// Search handles GET /api/users/search?q=<id or username>
func (h *UsersHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}

	found, err := h.users.Search(r.Context(), user, r.URL.Query().Get("q"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Success(w, found.Summary())
}
