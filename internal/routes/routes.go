package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/niknak-backend/internal/handlers"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Profile *handlers.ProfileHandler
	Friends *handlers.FriendsHandler
	Users   *handlers.UsersHandler

	// RequireUser guards every route below /api except /api/auth
	RequireUser func(http.Handler) http.Handler
	// AuthLimit, when set, wraps /api/auth
	AuthLimit func(http.Handler) http.Handler
}

func SetupRoutes(r chi.Router, h Handlers) {
	r.Get("/", handlers.Root)

	// Auth routes
	r.Route("/api/auth", func(r chi.Router) {
		if h.AuthLimit != nil {
			r.Use(h.AuthLimit)
		}
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.RequireUser)

		// Profile routes
		r.Put("/api/profile", h.Profile.Update)
		r.Post("/api/profile/avatar", h.Profile.UploadAvatar)

		// Friends routes
		r.Get("/api/friends", h.Friends.List)
		r.Post("/api/friends/add", h.Friends.Add)

		// User search
		r.Get("/api/users/search", h.Users.Search)
	})
}
