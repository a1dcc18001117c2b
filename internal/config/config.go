package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	MongoURI            string
	MongoDatabase       string   // Empty means: take it from the URI path, else "niknak_chat"
	RedisURI            string   // Empty disables Redis-backed rate limiting
	JWTSecret           string
	TokenTTL            time.Duration
	Port                string
	AllowedOrigins      []string // CORS: from ALLOWED_ORIGINS, "*" allows any origin
	Environment         string   // ENV: production, development, etc.
	LogLevel            string
	TrustProxy          bool // TRUSTED_PROXY: honour X-Forwarded-For / X-Real-IP
	AuthRateLimit       int
	AuthRateWindow      time.Duration
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func Load() *Config {
	origins := parseOrigins(getEnv("ALLOWED_ORIGINS", "*"))
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Config{
		MongoURI:            getEnv("MONGO_URI", getEnv("MONGODB_URI", "mongodb://localhost:27017")),
		MongoDatabase:       getEnv("MONGO_DB", ""),
		RedisURI:            getEnv("REDIS_URI", ""),
		JWTSecret:           getEnv("JWT_SECRET_KEY", getEnv("JWT_SECRET", DefaultJWTSecret)),
		TokenTTL:            getDuration("TOKEN_TTL", 7*24*time.Hour),
		Port:                getEnv("PORT", "8000"),
		AllowedOrigins:      origins,
		Environment:         strings.ToLower(strings.TrimSpace(getEnv("ENV", "development"))),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		TrustProxy:          getBool("TRUSTED_PROXY", false),
		AuthRateLimit:       getInt("AUTH_RATE_LIMIT", 25),
		AuthRateWindow:      getDuration("AUTH_RATE_WINDOW", 2*time.Minute),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

// Validate rejects settings the server must not start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT secret must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET_KEY must be set in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func parseOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
