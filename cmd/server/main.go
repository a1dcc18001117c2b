package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/niknak-backend/internal/auth"
	"github.com/AnshRaj112/niknak-backend/internal/config"
	"github.com/AnshRaj112/niknak-backend/internal/database"
	"github.com/AnshRaj112/niknak-backend/internal/handlers"
	"github.com/AnshRaj112/niknak-backend/internal/logger"
	"github.com/AnshRaj112/niknak-backend/internal/middleware"
	"github.com/AnshRaj112/niknak-backend/internal/repository"
	"github.com/AnshRaj112/niknak-backend/internal/routes"
	"github.com/AnshRaj112/niknak-backend/internal/services"
)

const serviceName = "niknak-backend"

func main() {
	// Load env
	envErr := godotenv.Load()

	// Load configuration
	cfg := config.Load()
	logger.Setup(serviceName, cfg.LogLevel, cfg.IsProduction())
	if envErr != nil {
		slog.Info("No .env file found")
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		slog.Warn("⚠️  JWT_SECRET_KEY not set, using the development default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	slog.Info("Connecting to MongoDB...")
	mongo, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongo.Disconnect(); err != nil {
			slog.Warn("mongo disconnect", "error", err)
		}
	}()

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = repository.EnsureIndexes(indexCtx, mongo.DB)
	cancel()
	if err != nil {
		return err
	}
	slog.Info("✅ MongoDB indexes ensured")

	// Redis is optional: without it auth routes are not rate limited
	var rdb *redis.Client
	if cfg.RedisURI != "" {
		slog.Info("Connecting to Redis...")
		rdb, err = database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			slog.Warn("⚠️  Redis unavailable, auth rate limiting disabled", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	// Initialize Cloudinary service
	var uploader services.AvatarUploader
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryUploader(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			slog.Warn("Failed to initialize Cloudinary, avatar uploads disabled", "error", err)
		} else {
			uploader = cld
			slog.Info("✅ Cloudinary service initialized")
		}
	} else {
		slog.Info("Cloudinary credentials not found, avatar uploads disabled")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	users := repository.NewMongoUserStore(mongo.DB)
	friendships := repository.NewMongoFriendshipStore(mongo.DB)

	authService := services.NewAuthService(users, tokens)
	h := routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Profile:     handlers.NewProfileHandler(services.NewProfileService(users, uploader)),
		Friends:     handlers.NewFriendsHandler(services.NewFriendService(users, friendships)),
		Users:       handlers.NewUsersHandler(services.NewUserService(users)),
		RequireUser: middleware.RequireUser(authService),
	}
	if rdb != nil {
		h.AuthLimit = middleware.NewAuthRateLimiter(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow).Handler
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.ClientIP(cfg.TrustProxy))
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.NewMetrics(prometheus.DefaultRegisterer).Handler)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → per-IP rate limit
	if cfg.IsProduction() {
		limiter := middleware.NewGlobalRateLimiter()
		go limiter.RunCleanup(ctx)
		r.Use(middleware.SecurityHeaders)
		r.Use(limiter.Handler)
		slog.Info("✅ Production security enabled (security headers, per-IP rate limiting)")
	}

	// Health check and metrics
	r.Get("/health", handlers.Health(mongo.Ping))
	r.Handle("/metrics", promhttp.Handler())

	// Setup routes
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("🚀 niknak backend running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
