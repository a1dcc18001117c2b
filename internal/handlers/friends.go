package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/internal/middleware"
	"github.com/AnshRaj112/niknak-backend/internal/models"
	"github.com/AnshRaj112/niknak-backend/internal/response"
)

type FriendGraph interface {
	Add(ctx context.Context, caller *models.User, target string) ([]models.FriendItem, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]models.FriendItem, error)
}

type FriendsHandler struct {
	friends FriendGraph
}

func NewFriendsHandler(friends FriendGraph) *FriendsHandler {
	return &FriendsHandler{friends: friends}
}

// AddFriendRequest is the body of POST /api/friends/add. FriendID is an id or a username.
type AddFriendRequest struct {
	FriendID string `json:"friend_id" validate:"required"`
}

func (h *FriendsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}

	items, err := h.friends.List(r.Context(), user.ID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Success(w, items)
}

func (h *FriendsHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}

	var req AddFriendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	items, err := h.friends.Add(r.Context(), user, req.FriendID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Success(w, items)
}
