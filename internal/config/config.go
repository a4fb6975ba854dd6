package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Email     EmailConfig     `mapstructure:"email"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Guard     GuardConfig     `mapstructure:"guard"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Captcha   CaptchaConfig   `mapstructure:"captcha"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AdminConfig holds administrative API settings.
type AdminConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// EmailConfig holds email provider settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RateLimitConfig holds per-IP request throttling settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// GuardConfig holds submission guard settings (per-identity sliding window).
type GuardConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	WindowSec   int `mapstructure:"window_sec"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SupabaseConfig holds Supabase project settings.
// The anon key authenticates end-user tokens; the service key is the
// dispatcher's own trusted data path.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	AnonKey    string `mapstructure:"anon_key"`
	ServiceKey string `mapstructure:"service_key"`
}

// QueueConfig holds async queue settings.
type QueueConfig struct {
	Concurrency   int `mapstructure:"concurrency"`
	MaxRetry      int `mapstructure:"max_retry"`
	RetryDelaySec int `mapstructure:"retry_delay_sec"`
}

// CaptchaConfig holds reCAPTCHA verification settings.
type CaptchaConfig struct {
	SecretKey      string  `mapstructure:"secret_key"`
	ScoreThreshold float64 `mapstructure:"score_threshold"`
}

// DispatchConfig holds notification fan-out settings.
type DispatchConfig struct {
	AdminEmails         []string `mapstructure:"admin_emails"`
	AdminPanelURL       string   `mapstructure:"admin_panel_url"`
	RecipientTimeoutSec int      `mapstructure:"recipient_timeout_sec"`
}

// Load reads configuration from config.yaml and environment variables.
// Environment variables use the REVIEWGATE_ prefix and underscore separators.
// Example: REVIEWGATE_SERVER_PORT overrides server.port in config.yaml.
func Load() (*Config, error) {
	v := viper.New()

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Load .env file if it exists
	_ = godotenv.Load()

	// Environment variable settings
	v.SetEnvPrefix("REVIEWGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("email.provider", "resend")
	v.SetDefault("email.from_address", "onboarding@resend.dev")
	v.SetDefault("email.from_name", "Play Store Publisher")
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("guard.max_attempts", 3)
	v.SetDefault("guard.window_sec", 3600) // 1 hour
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.max_retry", 5)
	v.SetDefault("queue.retry_delay_sec", 30)
	v.SetDefault("captcha.score_threshold", 0.5)
	v.SetDefault("dispatch.admin_panel_url", "https://www.quantamesh.store/admin")
	v.SetDefault("dispatch.recipient_timeout_sec", 10)

	// Read config file (optional, env vars can provide everything)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Handle comma-separated list values from env vars
	if keys := splitCSV(v.GetString("admin.api_keys")); len(keys) > 0 && len(cfg.Admin.APIKeys) == 0 {
		cfg.Admin.APIKeys = keys
	}
	if emails := splitCSV(v.GetString("dispatch.admin_emails")); len(emails) > 0 && len(cfg.Dispatch.AdminEmails) == 0 {
		cfg.Dispatch.AdminEmails = emails
	}

	return &cfg, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
