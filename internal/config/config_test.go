package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var envKeys = []string{
	"PORT", "LLM_API_URL", "LLM_MODEL", "LLM_TIMEOUT",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SUMMARY_CACHE_TTL",
	"MAX_UPLOAD_MB", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_DEVELOPMENT",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.LLM.Endpoint != "http://localhost:11434/api/generate" {
		t.Errorf("LLM.Endpoint = %q", cfg.LLM.Endpoint)
	}
	if cfg.LLM.Model != "llama3" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 0 {
		t.Errorf("LLM.Timeout = %v, want 0", cfg.LLM.Timeout)
	}
	if cfg.CacheEnabled() {
		t.Error("cache enabled without REDIS_ADDR")
	}
	if cfg.Redis.TTL != time.Hour {
		t.Errorf("Redis.TTL = %v", cfg.Redis.TTL)
	}
	if cfg.MaxUploadBytes != 32<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.Log.Level != "info" || cfg.Log.Development {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("LLM_API_URL", "http://ollama:11434/api/generate")
	t.Setenv("LLM_MODEL", "mistral")
	t.Setenv("LLM_TIMEOUT", "90s")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SUMMARY_CACHE_TTL", "10m")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://dash.example.com,")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Port != "8080" || cfg.LLM.Model != "mistral" || cfg.LLM.Timeout != 90*time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.CacheEnabled() || cfg.Redis.DB != 2 || cfg.Redis.TTL != 10*time.Minute {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	want := []string{"http://localhost:3000", "https://dash.example.com"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if !cfg.Log.Development {
		t.Error("Log.Development = false")
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"LLM_TIMEOUT":       "soon",
		"REDIS_DB":          "one",
		"SUMMARY_CACHE_TTL": "-1m",
		"MAX_UPLOAD_MB":     "0",
		"LOG_DEVELOPMENT":   "maybe",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			if _, err := FromEnv(); err == nil {
				t.Errorf("FromEnv() with %s=%q succeeded", key, value)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	file := filepath.Join(t.TempDir(), "test.env")
	content := "LLM_MODEL=phi3\nPORT=7000\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.Model != "phi3" {
		t.Errorf("LLM.Model = %q, want phi3 from file", cfg.LLM.Model)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, environment should win over file", cfg.Port)
	}
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}
