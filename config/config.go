package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no -config flag is given. It may be absent.
const DefaultPath = "config/config.json"

// Config is the full application configuration.
type Config struct {
	Environment string `json:"environment" yaml:"environment"`
	ServerAddr  string `json:"server_addr" yaml:"server_addr"`
	LogLevel    string `json:"log_level" yaml:"log_level"`

	Database  DatabaseConfig  `json:"database" yaml:"database"`
	Auth      AuthConfig      `json:"auth" yaml:"auth"`
	LLM       *LLMConfig      `json:"llm,omitempty" yaml:"llm,omitempty"`
	Mail      MailConfig      `json:"mail" yaml:"mail"`
	Messaging MessagingConfig `json:"messaging" yaml:"messaging"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
	CORS      CORSConfig      `json:"cors" yaml:"cors"`
}

// DatabaseConfig selects the store. An empty URL means in-memory.
type DatabaseConfig struct {
	URL          string `json:"url" yaml:"url"`
	MaxOpenConns int    `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns" yaml:"max_idle_conns"`
}

type AuthConfig struct {
	JWTSecret         string `json:"jwt_secret" yaml:"jwt_secret"`
	Issuer            string `json:"issuer" yaml:"issuer"`
	SessionTTLMinutes int    `json:"session_ttl_minutes" yaml:"session_ttl_minutes"`
	CookieName        string `json:"cookie_name" yaml:"cookie_name"`
	CookieSecure      bool   `json:"cookie_secure" yaml:"cookie_secure"`
	SeedDemoUser      bool   `json:"seed_demo_user" yaml:"seed_demo_user"`
}

// LLMConfig configures the generation backend. Provider is one of
// openai, deepseek or mock; a nil LLMConfig disables remote generation.
type LLMConfig struct {
	Provider       string  `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model          string  `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey         string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL        string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	MaxTokens      int64   `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// MailConfig selects the email transport: smtp, ses, or empty for demo mode.
type MailConfig struct {
	Transport string `json:"transport" yaml:"transport"`
	From      string `json:"from" yaml:"from"`
	SMTPHost  string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort  int    `json:"smtp_port" yaml:"smtp_port"`
	Username  string `json:"username" yaml:"username"`
	Password  string `json:"password" yaml:"password"`
	SESRegion string `json:"ses_region" yaml:"ses_region"`
}

// MessagingConfig points at an HTTP gateway for text messages. Without a
// webhook URL the channel runs as a stub.
type MessagingConfig struct {
	WebhookURL string `json:"webhook_url" yaml:"webhook_url"`
	APIKey     string `json:"api_key" yaml:"api_key"`
	Sender     string `json:"sender" yaml:"sender"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

type TracingConfig struct {
	OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	ServiceName  string `json:"service_name" yaml:"service_name"`
}

type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// Default returns the configuration used before any file or environment is applied.
func Default() Config {
	return Config{
		Environment: "development",
		ServerAddr:  ":5001",
		LogLevel:    "info",
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Auth: AuthConfig{
			Issuer:            "smartmeeting",
			SessionTTLMinutes: 24 * 60,
			CookieName:        "session",
			SeedDemoUser:      true,
		},
		Mail: MailConfig{
			From:     "noreply@smartmeeting.ai",
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
		},
		Metrics: MetricsConfig{Enabled: true},
		Tracing: TracingConfig{ServiceName: "smartmeeting"},
		CORS:    CORSConfig{AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5001"}},
	}
}

// Load reads defaults, then the file at path (JSON or YAML by extension),
// then environment overrides, and validates the result. A missing file is
// only tolerated at DefaultPath.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	default:
		return Config{}, err
	}

	applyEnv(&cfg)
	cfg.applyLLMDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json", "":
		return json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func applyEnv(cfg *Config) {
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.ServerAddr = getEnv("SERVER_ADDR", cfg.ServerAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.SeedDemoUser = getEnvBool("SEED_DEMO_USER", cfg.Auth.SeedDemoUser)
	cfg.Auth.CookieSecure = getEnvBool("COOKIE_SECURE", cfg.Auth.CookieSecure)

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		if cfg.LLM == nil {
			cfg.LLM = &LLMConfig{}
		}
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if cfg.LLM == nil {
			cfg.LLM = &LLMConfig{Provider: "openai"}
		}
		cfg.LLM.APIKey = v
	}
	if cfg.LLM != nil {
		cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
		cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	}

	cfg.Mail.Transport = getEnv("MAIL_TRANSPORT", cfg.Mail.Transport)
	cfg.Mail.From = getEnv("MAIL_FROM", cfg.Mail.From)
	cfg.Mail.SMTPHost = getEnv("SMTP_HOST", cfg.Mail.SMTPHost)
	cfg.Mail.SMTPPort = getEnvInt("SMTP_PORT", cfg.Mail.SMTPPort)
	cfg.Mail.Username = getEnv("SMTP_USERNAME", cfg.Mail.Username)
	cfg.Mail.Password = getEnv("SMTP_PASSWORD", cfg.Mail.Password)
	cfg.Mail.SESRegion = getEnv("SES_REGION", cfg.Mail.SESRegion)

	cfg.Messaging.WebhookURL = getEnv("MESSAGING_WEBHOOK_URL", cfg.Messaging.WebhookURL)
	cfg.Messaging.APIKey = getEnv("MESSAGING_API_KEY", cfg.Messaging.APIKey)

	cfg.Metrics.Enabled = getEnvBool("ENABLE_METRICS", cfg.Metrics.Enabled)
	cfg.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}
}

func (c *Config) applyLLMDefaults() {
	if c.LLM == nil {
		return
	}
	if c.LLM.Model == "" && c.LLM.Provider == "openai" {
		c.LLM.Model = "gpt-3.5-turbo"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1500
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 30
	}
}

// Validate checks settings that would otherwise fail late at runtime.
func (c Config) Validate() error {
	var problems []string

	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		problems = append(problems, "auth.jwt_secret must be at least 32 bytes in production")
	}
	if c.LLM != nil {
		switch c.LLM.Provider {
		case "openai", "mock":
		case "deepseek":
			if c.LLM.BaseURL == "" {
				problems = append(problems, "llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
			}
		case "":
			problems = append(problems, "llm.provider is required when llm is configured")
		default:
			problems = append(problems, fmt.Sprintf("llm provider %s not supported", c.LLM.Provider))
		}
	}
	switch c.Mail.Transport {
	case "":
	case "smtp":
		if c.Mail.SMTPHost == "" || c.Mail.Username == "" || c.Mail.Password == "" {
			problems = append(problems, "mail transport smtp requires smtp_host, username and password")
		}
	case "ses":
		if c.Mail.SESRegion == "" {
			problems = append(problems, "mail transport ses requires ses_region")
		}
	default:
		problems = append(problems, fmt.Sprintf("mail transport %s not supported", c.Mail.Transport))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLMinutes) * time.Minute
}

func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}
