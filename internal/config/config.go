package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host              string
	Port              string
	RequestTimeout    time.Duration
	GenerationTimeout time.Duration
	ImageFetchTimeout time.Duration
	MaxUploadBytes    int64

	// External generation collaborator (OpenAI-compatible endpoint).
	GenerationAPIKey  string
	GenerationModel   string
	GenerationBaseURL string

	AllowedOrigins []string

	// AllowedImageHosts restricts which hosts /translate/url may fetch
	// from. Empty means any host.
	AllowedImageHosts []string

	// Optional attachment archive. Archiving is disabled unless all three
	// are set.
	AzureAccount   string
	AzureKey       string
	AzureContainer string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// ArchiveEnabled reports whether accepted attachments should be persisted
// to blob storage.
func (c *Config) ArchiveEnabled() bool {
	return c.AzureAccount != "" && c.AzureKey != "" && c.AzureContainer != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:              getEnvOrDefault("HOST", "0.0.0.0"),
		Port:              getEnvOrDefault("PORT", "8080"),
		RequestTimeout:    parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		GenerationTimeout: parseDurationOrDefault("GENERATION_TIMEOUT", 45*time.Second),
		ImageFetchTimeout: parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxUploadBytes:    parseIntOrDefault("MAX_UPLOAD_BYTES", 10*1024*1024), // 10MB
		GenerationAPIKey:  os.Getenv("GENERATION_API_KEY"),
		GenerationModel:   getEnvOrDefault("GENERATION_MODEL", "gpt-4o-mini"),
		GenerationBaseURL: getEnvOrDefault("GENERATION_BASE_URL", "https://api.openai.com"),
		AllowedOrigins:    splitOrDefault("ALLOWED_ORIGINS", "*"),
		AllowedImageHosts: splitOrDefault("ALLOWED_IMAGE_HOSTS", ""),
		AzureAccount:      os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureKey:          os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainer:    os.Getenv("AZURE_ARCHIVE_CONTAINER"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be > 0 (got %d)", cfg.MaxUploadBytes)
	}
	if cfg.RequestTimeout <= 0 || cfg.GenerationTimeout <= 0 || cfg.ImageFetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, generation=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.GenerationTimeout, cfg.ImageFetchTimeout)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitOrDefault(key, defaultValue string) []string {
	raw := getEnvOrDefault(key, defaultValue)
	fields := strings.Split(raw, ",")
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
