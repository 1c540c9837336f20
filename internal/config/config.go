package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	DBDriver string
	Database DatabaseConfig
	Session  SessionConfig
	Cookie   CookieConfig
	Security SecurityConfig
	Admin    AdminConfig
	Twilio   TwilioConfig
	Log      LogConfig
	Stats    StatsConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// SessionConfig holds the signing secret and lifetime of session tokens
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite string
	Domain   string
}

// SecurityConfig holds password hashing settings
type SecurityConfig struct {
	BcryptCost int
}

// AdminConfig holds the bootstrap admin account created at startup.
// Empty username or password disables the bootstrap.
type AdminConfig struct {
	Username string
	Password string
}

// TwilioConfig holds messaging webhook settings. An empty AuthToken disables
// signature validation (dev only).
type TwilioConfig struct {
	AuthToken  string
	WebhookURL string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
}

// StatsConfig holds the ledger stats job schedule (robfig/cron expression)
type StatsConfig struct {
	Schedule string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	dbDriver := strings.TrimSpace(getEnv("DB_DRIVER", "mysql"))
	if dbDriver != "mysql" && dbDriver != "memory" {
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'memory')", dbDriver)
	}

	session, err := loadSessionConfig(appMode)
	if err != nil {
		return nil, err
	}

	cost, _ := strconv.Atoi(getEnv("BCRYPT_COST", "12"))

	return &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		DBDriver: dbDriver,
		Database: loadDatabaseConfig(appMode),
		Session:  session,
		Cookie:   loadCookieConfig(appMode),
		Security: SecurityConfig{BcryptCost: cost},
		Admin: AdminConfig{
			Username: strings.TrimSpace(getEnv("ADMIN_USERNAME", "")),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Twilio: TwilioConfig{
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			WebhookURL: getEnv("TWILIO_WEBHOOK_URL", ""),
		},
		Log:   LogConfig{Level: getEnv("LOG_LEVEL", "info")},
		Stats: StatsConfig{Schedule: getEnv("LEDGER_STATS_SCHEDULE", "@every 1h")},
	}, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "stockdesk"),
	}
}

// loadSessionConfig loads the session secret and TTL. Production refuses to
// start with the built-in secret.
func loadSessionConfig(mode string) (SessionConfig, error) {
	secret := getEnv(modePrefix(mode)+"SESSION_SECRET", "default_secret")
	if mode == "prod" && secret == "default_secret" {
		return SessionConfig{}, fmt.Errorf("PROD_SESSION_SECRET must be set in prod mode")
	}

	hours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "12"))
	if err != nil || hours <= 0 {
		return SessionConfig{}, fmt.Errorf("invalid SESSION_TTL_HOURS: '%s'", getEnv("SESSION_TTL_HOURS", "12"))
	}

	return SessionConfig{
		Secret: secret,
		TTL:    time.Duration(hours) * time.Hour,
	}, nil
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Name:     getEnv("COOKIE_NAME", "session"),
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://admin.stockdesk.local"
	}
	return origins
}
