package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	PublicBaseURL string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration
	TokenLeeway     time.Duration

	OAuthRedirectURI      string
	GoogleClientID        string
	GoogleClientSecret    string
	MicrosoftClientID     string
	MicrosoftClientSecret string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "legaldraft"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		JWTSecret:       strings.TrimSpace(getenv("JWT_SECRET", "")),
		AccessTokenTTL:  time.Duration(getenvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL: time.Duration(getenvInt("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		ResetTokenTTL:   time.Duration(getenvInt("PASSWORD_RESET_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
		TokenLeeway:     time.Duration(getenvInt("TOKEN_LEEWAY_SECONDS", 0)) * time.Second,

		OAuthRedirectURI:      getenv("OAUTH_REDIRECT_URI", "http://localhost:3000/oauth/callback"),
		GoogleClientID:        strings.TrimSpace(getenv("GOOGLE_CLIENT_ID", "")),
		GoogleClientSecret:    strings.TrimSpace(getenv("GOOGLE_CLIENT_SECRET", "")),
		MicrosoftClientID:     strings.TrimSpace(getenv("MICROSOFT_CLIENT_ID", "")),
		MicrosoftClientSecret: strings.TrimSpace(getenv("MICROSOFT_CLIENT_SECRET", "")),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "legaldraft"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", "no-reply@legaldraft.app"),
	}
}

func getenv(key, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return def
}

func getenvInt(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}
