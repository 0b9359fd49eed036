package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Authentication modes
const (
	AuthModeNone  = "none"
	AuthModeJWT   = "jwt"
	AuthModeAuth0 = "auth0"
)

// Storage backends
const (
	StorageDynamoDB = "dynamodb"
	StorageMemory   = "memory"
)

// DefaultTemplate is the chart template offered when the wizard has none stored
const DefaultTemplate = "https://github.com/maohnnn/Helm-Template-Normal-App.git"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Logging configuration
	LogLevel string

	// AWS configuration
	AWSRegion string

	// Storage configuration
	StorageBackend       string
	ConnectionsTableName string
	WizardTableName      string

	// GitHub configuration
	GitHubAPIURL       string
	TokenEncryptionKey string

	// Template configuration
	DefaultTemplate string
	TemplateFiles   []string

	// Authentication
	AuthMode          string
	AllowInsecureAuth bool // permits none and jwt modes, which do not verify callers
	Auth0Domain       string
	Auth0Audience     string

	// Background token checks
	TokenCheckInterval time.Duration
	WorkerCount        int

	// Repository name checks
	RepoCheckTTL time.Duration
}

// New creates a new Config instance by loading environment variables
// from .env file (if present) and OS environment.
// OS environment variables take precedence over .env file values.
// Panics if required configuration values are missing or invalid.
func New() *Config {
	envPath := filepath.Join(".", ".env")
	_ = godotenv.Load(envPath)

	cfg := Load()
	cfg.validate()

	return cfg
}

// Load reads configuration from the process environment without validating it
func Load() *Config {
	return &Config{
		Port:     getEnvOrDefault("PORT", "3001"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),

		AWSRegion: getEnvOrDefault("AWS_REGION", "us-east-1"),

		StorageBackend:       strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", StorageDynamoDB)),
		ConnectionsTableName: getEnvOrDefault("CONNECTIONS_TABLE_NAME", "WizardConnections"),
		WizardTableName:      getEnvOrDefault("WIZARD_TABLE_NAME", "WizardConfigs"),

		GitHubAPIURL:       strings.TrimSuffix(getEnvOrDefault("GITHUB_API_URL", "https://api.github.com"), "/"),
		TokenEncryptionKey: os.Getenv("TOKEN_ENCRYPTION_KEY"),

		DefaultTemplate: getEnvOrDefault("DEFAULT_TEMPLATE", DefaultTemplate),
		TemplateFiles:   splitList(getEnvOrDefault("TEMPLATE_FILES", "Chart.yaml,values.yaml")),

		AuthMode:          strings.ToLower(getEnvOrDefault("AUTH_MODE", AuthModeAuth0)),
		AllowInsecureAuth: getBoolOrDefault("AUTH_ALLOW_INSECURE", false),
		Auth0Domain:       os.Getenv("AUTH0_DOMAIN"),
		Auth0Audience:     os.Getenv("AUTH0_AUDIENCE"),

		TokenCheckInterval: getDurationOrDefault("TOKEN_CHECK_INTERVAL", 6*time.Hour),
		WorkerCount:        getIntOrDefault("WORKER_COUNT", 3),

		RepoCheckTTL: getDurationOrDefault("REPO_CHECK_TTL", 30*time.Second),
	}
}

// validate checks that all required configuration values are present and valid
func (c *Config) validate() {
	if err := c.Validate(); err != nil {
		panic(err.Error())
	}
}

// Validate reports the first problem found in the configuration
func (c *Config) Validate() error {
	var missing []string

	if c.TokenEncryptionKey == "" {
		missing = append(missing, "TOKEN_ENCRYPTION_KEY")
	}
	if c.AuthMode == AuthModeAuth0 && c.Auth0Domain == "" {
		missing = append(missing, "AUTH0_DOMAIN")
	}

	if len(missing) > 0 {
		return fmt.Errorf("Missing required configuration values: %v", missing)
	}

	// Validate encryption key length (must be 32 characters for AES-256)
	if len(c.TokenEncryptionKey) != 32 {
		return fmt.Errorf("TOKEN_ENCRYPTION_KEY must be exactly 32 characters (got %d)", len(c.TokenEncryptionKey))
	}

	switch c.AuthMode {
	case AuthModeAuth0:
	case AuthModeNone, AuthModeJWT:
		if !c.AllowInsecureAuth {
			return fmt.Errorf("AUTH_MODE '%s' does not verify callers and requires AUTH_ALLOW_INSECURE=true", c.AuthMode)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of none, jwt, auth0 (got '%s')", c.AuthMode)
	}

	switch c.StorageBackend {
	case StorageDynamoDB, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of dynamodb, memory (got '%s')", c.StorageBackend)
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1 (got %d)", c.WorkerCount)
	}

	if len(c.TemplateFiles) == 0 {
		return fmt.Errorf("TEMPLATE_FILES must list at least one file")
	}

	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntOrDefault parses an integer environment variable, falling back on absence or parse errors
func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getBoolOrDefault parses a boolean environment variable ("true", "1", "false", ...)
func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getDurationOrDefault parses a Go duration ("30s", "6h"); "0" disables the feature it configures
func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "0" {
		return 0
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
