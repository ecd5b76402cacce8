package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	LLM struct {
		Endpoint string
		Model    string
		Timeout  time.Duration
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
		TTL      time.Duration
	}

	MaxUploadBytes int64
	AllowedOrigins []string

	Log struct {
		Level       string
		Development bool
	}
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment take precedence over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	var cfg Config
	var err error

	cfg.Port = getenv("PORT", "5000")

	cfg.LLM.Endpoint = getenv("LLM_API_URL", "http://localhost:11434/api/generate")
	cfg.LLM.Model = getenv("LLM_MODEL", "llama3")
	if cfg.LLM.Timeout, err = durationEnv("LLM_TIMEOUT", 0); err != nil {
		return nil, err
	}

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Redis.TTL, err = durationEnv("SUMMARY_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	maxUploadMB, err := intEnv("MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, err
	}
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", maxUploadMB)
	}
	cfg.MaxUploadBytes = int64(maxUploadMB) << 20

	for _, origin := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	cfg.Log.Level = getenv("LOG_LEVEL", "info")
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		if cfg.Log.Development, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid LOG_DEVELOPMENT %q: %w", v, err)
		}
	}

	return &cfg, nil
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, v)
	}
	return d, nil
}
