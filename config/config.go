package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults for the workflow engine used by the demo flows
const (
	DefaultNamespace       = "ai.smartfridge"
	DefaultPollInterval    = 2 * time.Second
	DefaultPollMaxAttempts = 60
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultGeminiEndpoint  = "https://generativelanguage.googleapis.com/v1beta"
)

// WebhookKeys holds the secret key segment of each pipeline's webhook URL
type WebhookKeys struct {
	Inventory string `yaml:"inventory"`
	Recipes   string `yaml:"recipes"`
	Shopping  string `yaml:"shopping"`
	Main      string `yaml:"main"`
}

// KestraConfig describes how to reach the workflow engine.
// Every field is optional; an empty BaseURL disables the engine.
type KestraConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Namespace       string        `yaml:"namespace"`
	Tenant          string        `yaml:"tenant"`
	APIToken        string        `yaml:"api_token"`
	BasicAuth       string        `yaml:"basic_auth"`
	WebhookKeys     WebhookKeys   `yaml:"webhook_keys"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	PollMaxAttempts int           `yaml:"poll_max_attempts"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
}

// Configured reports whether an engine base URL is set
func (k KestraConfig) Configured() bool {
	return strings.TrimSpace(k.BaseURL) != ""
}

// GeminiConfig holds the direct LLM settings used when the engine is absent
type GeminiConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	Endpoint  string `yaml:"endpoint"`
	Transport string `yaml:"transport"`
}

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string `yaml:"server_port"`
	ServerHost string `yaml:"server_host"`

	// Run history database. Postgres when DatabaseURL is set, SQLite otherwise.
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`

	// Redis configuration. The store runs in memory when neither host nor URL is set.
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisURL      string `yaml:"redis_url"`

	JWTSecret   string `yaml:"jwt_secret"`
	IngestToken string `yaml:"ingest_token"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	PipelineRateLimit  int      `yaml:"pipeline_rate_limit"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	FridgeImageBucket string `yaml:"fridge_image_bucket"`
	AWSRegion         string `yaml:"aws_region"`

	Kestra KestraConfig `yaml:"kestra"`
	Gemini GeminiConfig `yaml:"gemini"`
}

// RedisEnabled reports whether a Redis server is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Default returns a Config populated with the built-in defaults
func Default() *Config {
	return &Config{
		ServerPort: "8080",
		ServerHost: "0.0.0.0",
		SQLitePath: "kitchen.db",
		RedisPort:  "6379",
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		PipelineRateLimit: 30,
		LogLevel:          "info",
		LogFormat:         "text",
		Kestra: KestraConfig{
			Namespace: DefaultNamespace,
			WebhookKeys: WebhookKeys{
				Inventory: "inventory-manager-webhook-key-12345",
				Recipes:   "recipe-generator-webhook-key-12345",
				Shopping:  "shopping-list-webhook-key-12345",
				Main:      "smartfridge-main-webhook-key-12345",
			},
			PollInterval:    DefaultPollInterval,
			PollMaxAttempts: DefaultPollMaxAttempts,
			HTTPTimeout:     DefaultHTTPTimeout,
		},
		Gemini: GeminiConfig{
			Model:     DefaultGeminiModel,
			Endpoint:  DefaultGeminiEndpoint,
			Transport: "rest",
		},
	}
}

// LoadConfig builds the configuration once at startup. Sources are applied in
// order: defaults, the optional YAML file, Docker secrets, environment.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("KITCHEN_CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	loadSecrets(cfg)

	if err := loadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}

	cfg.Kestra.BasicAuth = encodeBasicAuth(cfg.Kestra.BasicAuth)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadSecrets reads sensitive values from Docker secrets when present
func loadSecrets(cfg *Config) {
	setString(&cfg.JWTSecret, readSecret("jwt_secret"))
	setString(&cfg.RedisPassword, readSecret("redis_password"))
	setString(&cfg.RedisURL, readSecret("redis_url"))
	setString(&cfg.DatabaseURL, readSecret("database_url"))
	setString(&cfg.IngestToken, readSecret("ingest_token"))
	setString(&cfg.Kestra.APIToken, readSecret("kestra_api_token"))
	setString(&cfg.Kestra.BasicAuth, readSecret("kestra_basic_auth"))
	setString(&cfg.Gemini.APIKey, readSecret("gemini_api_key"))
}

func loadEnv(cfg *Config) error {
	setString(&cfg.ServerPort, os.Getenv("SERVER_PORT"))
	setString(&cfg.ServerHost, os.Getenv("SERVER_HOST"))
	setString(&cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	setString(&cfg.SQLitePath, os.Getenv("SQLITE_PATH"))
	setString(&cfg.RedisHost, os.Getenv("REDIS_HOST"))
	setString(&cfg.RedisPort, os.Getenv("REDIS_PORT"))
	setString(&cfg.RedisPassword, os.Getenv("REDIS_PASSWORD"))
	setString(&cfg.RedisURL, os.Getenv("REDIS_URL"))
	setString(&cfg.JWTSecret, os.Getenv("JWT_SECRET"))
	setString(&cfg.IngestToken, os.Getenv("INGEST_TOKEN"))
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&cfg.LogFormat, os.Getenv("LOG_FORMAT"))
	setString(&cfg.FridgeImageBucket, os.Getenv("FRIDGE_IMAGE_BUCKET"))
	setString(&cfg.AWSRegion, os.Getenv("AWS_REGION"))

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = splitCSV(origins)
	}

	k := &cfg.Kestra
	setString(&k.BaseURL, firstEnv("KESTRA_URL", "NEXT_PUBLIC_KESTRA_URL"))
	setString(&k.Namespace, os.Getenv("KESTRA_NAMESPACE"))
	setString(&k.Tenant, os.Getenv("KESTRA_TENANT"))
	setString(&k.APIToken, os.Getenv("KESTRA_API_TOKEN"))
	setString(&k.BasicAuth, os.Getenv("KESTRA_BASIC_AUTH"))
	setString(&k.WebhookKeys.Inventory, os.Getenv("KESTRA_INVENTORY_WEBHOOK_KEY"))
	setString(&k.WebhookKeys.Recipes, os.Getenv("KESTRA_RECIPES_WEBHOOK_KEY"))
	setString(&k.WebhookKeys.Shopping, os.Getenv("KESTRA_SHOPPING_WEBHOOK_KEY"))
	setString(&k.WebhookKeys.Main, os.Getenv("KESTRA_MAIN_WEBHOOK_KEY"))

	g := &cfg.Gemini
	setString(&g.APIKey, firstEnv("GOOGLE_GEMINI_API_KEY", "GEMINI_API_KEY"))
	setString(&g.Model, os.Getenv("GEMINI_MODEL"))
	setString(&g.Endpoint, os.Getenv("GEMINI_ENDPOINT"))
	setString(&g.Transport, os.Getenv("GEMINI_TRANSPORT"))

	var err error
	if k.PollInterval, err = envDuration("KESTRA_POLL_INTERVAL", k.PollInterval); err != nil {
		return err
	}
	if k.HTTPTimeout, err = envDuration("KESTRA_HTTP_TIMEOUT", k.HTTPTimeout); err != nil {
		return err
	}
	if k.PollMaxAttempts, err = envInt("KESTRA_POLL_MAX_ATTEMPTS", k.PollMaxAttempts); err != nil {
		return err
	}
	if cfg.PipelineRateLimit, err = envInt("PIPELINE_RATE_LIMIT", cfg.PipelineRateLimit); err != nil {
		return err
	}
	if cfg.RedisDB, err = envInt("REDIS_DB", cfg.RedisDB); err != nil {
		return err
	}
	return nil
}

// encodeBasicAuth accepts either pre-encoded credentials or user:pass
func encodeBasicAuth(v string) string {
	if strings.Contains(v, ":") {
		return base64.StdEncoding.EncodeToString([]byte(v))
	}
	return v
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("invalid duration %q", v)}
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("invalid integer %q", v)}
	}
	return n, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
