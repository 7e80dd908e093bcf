package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the server settings, all read from the environment.
type Config struct {
	Port              string
	ArtifactDir       string
	QuestionnairePath string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret         []byte
	AdminPasswordHash string

	InsightMode     string
	AnthropicModel  string
	AnthropicAPIKey string

	CacheSize          int
	RateLimitPerMinute int
	CORSOrigins        []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		ArtifactDir:       getEnv("ARTIFACT_DIR", "artifacts"),
		QuestionnairePath: getEnv("QUESTIONNAIRE_PATH", "questionnaire.csv"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "matchminds"),
		DBPassword: getEnv("DB_PASSWORD", "matchminds"),
		DBName:     getEnv("DB_NAME", "matchminds"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:         []byte(os.Getenv("JWT_SECRET")),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		InsightMode:     getEnv("INSIGHT_MODE", "mock"),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.CacheSize, err = intEnv("CACHE_SIZE", 512); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return nil, err
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	switch cfg.InsightMode {
	case "mock", "off":
	case "api":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY must be set when INSIGHT_MODE=api")
		}
	default:
		return nil, fmt.Errorf("INSIGHT_MODE must be 'mock', 'api' or 'off', got %q", cfg.InsightMode)
	}
	return cfg, nil
}

// DSN is the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, s)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
