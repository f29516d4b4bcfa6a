package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort         string        `env:"APP_PORT" envDefault:"8080"`
	AppBaseURL      string        `env:"APP_BASE_URL"`
	DBDSN           string        `env:"DB_DSN,required,notEmpty"`
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiresMin   int           `env:"JWT_EXPIRES_MIN" envDefault:"10080"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	GoogleClientID  string        `env:"GOOGLE_CLIENT_ID"`
	GoogleSecret    string        `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirect  string        `env:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL string        `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`
	CORSOrigins     string        `env:"CORS_ORIGINS" envDefault:"http://127.0.0.1:3000, http://localhost:3000"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	UploadDir       string        `env:"UPLOAD_DIR" envDefault:"./uploads"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTExpiresMin <= 0 {
		return Config{}, fmt.Errorf("parse env: JWT_EXPIRES_MIN must be positive, got %d", cfg.JWTExpiresMin)
	}
	return cfg, nil
}

// GoogleEnabled reports whether the Google sign-in routes have credentials.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleSecret != "" && c.GoogleRedirect != ""
}

// PublicURL prefixes a server-relative path with APP_BASE_URL when it is set.
func (c Config) PublicURL(path string) string {
	if c.AppBaseURL == "" {
		return path
	}
	return strings.TrimRight(c.AppBaseURL, "/") + path
}
