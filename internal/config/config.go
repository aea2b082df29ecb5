// Package config
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Address        string `validate:"required"`
	AllowedOrigins []string
	LogLevel       string `validate:"oneof=debug info warn error"`
	LogFormat      string `validate:"oneof=text json"`
	SecureCookies  bool
	CSRFTokenTTL   time.Duration `validate:"gt=0"`

	StorageDriver string `validate:"oneof=memory sqlite redis postgres"`
	SQLitePath    string `validate:"required_if=StorageDriver sqlite"`
	DatabaseURL   string `validate:"required_if=StorageDriver postgres"`

	RedisAddress  string `validate:"required_if=StorageDriver redis"`
	RedisUsername string
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	DebounceWindow time.Duration `validate:"gt=0"`
}

var validate = validator.New()

func Load() *Config {
	_ = godotenv.Load()

	// Logs
	logLevel := strings.ToLower(getEnv("LOG_LEVEL", "info"))
	logFormat := strings.ToLower(getEnv("LOG_FORMAT", "text"))

	// Server HTTP Address
	addr := getEnv("HTTP_ADDR", ":3000")

	// Server Allowed Origins
	var origins []string
	rawOrigins := os.Getenv("ALLOWED_ORIGINS")
	if rawOrigins != "" {
		parts := strings.SplitSeq(rawOrigins, ",")
		for o := range parts {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	secureCookies := true
	if raw := os.Getenv("SECURE_COOKIES"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			secureCookies = v
		}
	}

	csrfTokenTTL := 12 * time.Hour
	if raw := os.Getenv("CSRF_TOKEN_TTL"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil && duration > 0 {
			csrfTokenTTL = duration
		}
	}

	// Storage
	storageDriver := strings.ToLower(getEnv("STORAGE_DRIVER", "memory"))
	sqlitePath := getEnv("SQLITE_PATH", "authform.db")
	databaseURL := getEnv("DATABASE_URL", "")

	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			redisDB = v
		}
	}

	// Form debounce window
	debounceWindow := 500 * time.Millisecond
	if raw := os.Getenv("DEBOUNCE_WINDOW"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil && duration > 0 {
			debounceWindow = duration
		}
	}

	return &Config{
		LogLevel:  logLevel,
		LogFormat: logFormat,

		Address:        addr,
		AllowedOrigins: origins,
		SecureCookies:  secureCookies,
		CSRFTokenTTL:   csrfTokenTTL,

		StorageDriver: storageDriver,
		SQLitePath:    sqlitePath,
		DatabaseURL:   databaseURL,

		RedisAddress:  getEnv("REDIS_ADDR", ""),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		DebounceWindow: debounceWindow,
	}
}

// Validate reports the first group of invalid settings as a single error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}

	return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
