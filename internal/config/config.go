// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server and metroctl.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request body sizes. Defaults to 1 MiB.
	MaxBodyBytes int64

	// AutoMigrate applies pending migrations on server start when true.
	AutoMigrate bool

	// ScheduleCacheTTL is how long segment listings are reused between
	// searches. Zero disables the cache. Defaults to one minute.
	ScheduleCacheTTL time.Duration

	// FallbackStationOrder is the line order used when no station record
	// carries a position. FALLBACK_STATION_ORDER, comma separated.
	FallbackStationOrder []string

	// QRSigningSecret signs ticket QR payloads. Required.
	QRSigningSecret string

	// QRTokenTTL is the validity of a ticket QR payload. Defaults to 24h.
	QRTokenTTL time.Duration

	// PaymentCheckoutURL is the base URL the sandbox gateway hands to riders.
	PaymentCheckoutURL string

	Fare FareConfig
	Fine FineConfig
}

// FareConfig tunes the time-based fare estimate used when a run's segments
// carry no explicit fare.
type FareConfig struct {
	RatePerMinute       float64 // FARE_RATE_PER_MINUTE, default 5
	Minimum             float64 // FARE_MINIMUM, default 10
	ZeroDurationMinutes int     // FARE_ZERO_DURATION_MINUTES, default 6
}

// FineConfig tunes the overstay fine charged on tap-out.
type FineConfig struct {
	GraceMinutes float64 // FINE_GRACE_MINUTES, default 1
	PerMinute    int64   // FINE_PER_MINUTE, default 10
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
// Returns an error listing any required variables that are missing and any
// variables that could not be parsed.
func Load() (Config, error) {
	return load(true)
}

// LoadCLI reads the same variables as Load for metroctl, which never signs
// tickets: QR_SIGNING_SECRET is optional.
func LoadCLI() (Config, error) {
	return load(false)
}

func load(server bool) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	p := &parser{}
	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		CORSOrigins:          splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MaxBodyBytes:         p.integer("MAX_BODY_BYTES", 1<<20),
		AutoMigrate:          p.flag("AUTO_MIGRATE", false),
		ScheduleCacheTTL:     p.duration("SCHEDULE_CACHE_TTL", time.Minute),
		FallbackStationOrder: splitCSV(os.Getenv("FALLBACK_STATION_ORDER")),
		QRTokenTTL:           p.duration("QR_TOKEN_TTL", 24*time.Hour),
		PaymentCheckoutURL:   getEnv("PAYMENT_CHECKOUT_URL", "http://localhost:8080/checkout"),
		Fare: FareConfig{
			RatePerMinute:       p.number("FARE_RATE_PER_MINUTE", 5),
			Minimum:             p.number("FARE_MINIMUM", 10),
			ZeroDurationMinutes: int(p.integer("FARE_ZERO_DURATION_MINUTES", 6)),
		},
		Fine: FineConfig{
			GraceMinutes: p.number("FINE_GRACE_MINUTES", 1),
			PerMinute:    p.integer("FINE_PER_MINUTE", 10),
		},
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.QRSigningSecret = os.Getenv("QR_SIGNING_SECRET")
	if cfg.QRSigningSecret == "" && server {
		missing = append(missing, "QR_SIGNING_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(p.invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(p.invalid, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parser reads typed variables, remembering the names of those that fail to
// parse so Load can report them together.
type parser struct {
	invalid []string
}

func (p *parser) integer(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return n
}

func (p *parser) number(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return f
}

func (p *parser) flag(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return d
}
