package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultJWTSecret     = "your-secret-key-change-in-production"
	defaultAdminPassword = "admin123"

	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App     AppConfig
	Redis   RedisConfig
	Admin   AdminConfig
	Email   EmailConfig
	Booking BookingConfig
	Queue   QueueConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string

	// TrustedProxies are CIDRs/IPs allowed to set X-Forwarded-For.
	// Empty keeps gin's default of trusting every peer.
	TrustedProxies []string
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// AdminConfig covers admin sessions and login throttling.
type AdminConfig struct {
	JWTSecret string
	// PasswordHash is a bcrypt hash. When empty, Password is hashed at startup.
	PasswordHash     string
	Password         string
	SessionTTL       time.Duration
	MaxLoginAttempts int
	LoginWindow      time.Duration
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
	// StudioEmail receives a copy of every booking request.
	StudioEmail string
}

// Enabled reports whether an SMTP relay is configured.
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != ""
}

type BookingConfig struct {
	StoreDriver     string // postgres | memory
	StoreTimeout    time.Duration
	NotifyTimeout   time.Duration
	AvailabilityTTL time.Duration
	RecentLimit     int
	// SubmitRatePerMinute throttles public booking submissions per IP.
	SubmitRatePerMinute int
	SubmitBurst         int
}

type QueueConfig struct {
	RedisAddr   string
	Concurrency int
	// HealthAddr is the listen address of the worker's probe endpoints.
	HealthAddr string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Wave House API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),

			TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
			PasswordHash:     getEnv("ADMIN_PASSWORD_HASH", ""),
			Password:         getEnv("ADMIN_PASSWORD", defaultAdminPassword),
			SessionTTL:       getEnvDuration("ADMIN_SESSION_TTL", 8*time.Hour),
			MaxLoginAttempts: getEnvInt("ADMIN_MAX_LOGIN_ATTEMPTS", 5),
			LoginWindow:      getEnvDuration("ADMIN_LOGIN_WINDOW", 15*time.Minute),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			From:         getEnv("EMAIL_FROM", "noreply@wavehouse.studio"),
			StudioEmail:  getEnv("STUDIO_EMAIL", "bookings@wavehouse.studio"),
		},
		Booking: BookingConfig{
			StoreDriver:         strings.ToLower(getEnv("BOOKING_STORE_DRIVER", StoreDriverPostgres)),
			StoreTimeout:        getEnvDuration("BOOKING_STORE_TIMEOUT", 5*time.Second),
			NotifyTimeout:       getEnvDuration("BOOKING_NOTIFY_TIMEOUT", 30*time.Second),
			AvailabilityTTL:     getEnvDuration("BOOKING_AVAILABILITY_TTL", time.Minute),
			RecentLimit:         getEnvInt("BOOKING_RECENT_LIMIT", 10),
			SubmitRatePerMinute: getEnvInt("BOOKING_SUBMIT_RATE_PER_MINUTE", 10),
			SubmitBurst:         getEnvInt("BOOKING_SUBMIT_BURST", 3),
		},
		Queue: QueueConfig{
			RedisAddr:   getEnv("QUEUE_REDIS_ADDR", getEnv("REDIS_HOST", "localhost:6379")),
			Concurrency: getEnvInt("QUEUE_CONCURRENCY", 10),
			HealthAddr:  getEnv("WORKER_HEALTH_ADDR", ":9999"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Booking.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("BOOKING_STORE_DRIVER must be %q or %q, got %q",
			StoreDriverPostgres, StoreDriverMemory, c.Booking.StoreDriver)
	}
	if c.Booking.StoreTimeout <= 0 {
		return fmt.Errorf("BOOKING_STORE_TIMEOUT must be positive")
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("ADMIN_SESSION_TTL must be positive")
	}
	if c.Admin.PasswordHash == "" && c.Admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH or ADMIN_PASSWORD must be set")
	}

	if c.App.IsProduction() {
		if c.Admin.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Admin.PasswordHash == "" {
			return fmt.Errorf("ADMIN_PASSWORD_HASH must be set in production")
		}
		if c.Booking.StoreDriver == StoreDriverMemory {
			return fmt.Errorf("the memory store cannot be used in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
