package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Security    SecurityConfig  `mapstructure:"security"`
	Forecast    ForecastConfig  `mapstructure:"forecast"`
	LLM         LLMConfig       `mapstructure:"llm"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Telegram    TelegramConfig  `mapstructure:"telegram"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ReadTimeout    string   `mapstructure:"read_timeout"`
	WriteTimeout   string   `mapstructure:"write_timeout"`
	CookieSecure   bool     `mapstructure:"cookie_secure"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	DatabaseURL     string `mapstructure:"database_url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime string `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SecurityConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
	JWTExpiry     string `mapstructure:"jwt_expiry"`
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password" json:"-" yaml:"-"`
	AdminName     string `mapstructure:"admin_name"`
}

// ForecastConfig controls the demand forecast analysis endpoint.
type ForecastConfig struct {
	WindowSize int    `mapstructure:"window_size"`
	Currency   string `mapstructure:"currency"`
}

// LLMConfig configures the OpenAI-compatible endpoint used for forecast narratives.
type LLMConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	BaseURL          string  `mapstructure:"base_url"`
	Model            string  `mapstructure:"model"`
	APIKey           string  `mapstructure:"api_key" json:"-" yaml:"-"`
	Timeout          string  `mapstructure:"timeout"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	Temperature      float64 `mapstructure:"temperature"`
	FailureThreshold int     `mapstructure:"failure_threshold"`
	OpenTimeout      string  `mapstructure:"open_timeout"`
}

type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	LogsEnabled  bool    `mapstructure:"logs_enabled"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" json:"-" yaml:"-"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// JWTExpiryDuration returns the parsed token lifetime. Load has already validated it.
func (s SecurityConfig) JWTExpiryDuration() time.Duration {
	d, err := time.ParseDuration(s.JWTExpiry)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// TimeoutDuration returns the per-call LLM timeout, falling back to 30s.
func (l LLMConfig) TimeoutDuration() time.Duration {
	return parseDurationOr(l.Timeout, 30*time.Second)
}

// OpenTimeoutDuration returns how long the narrative circuit stays open.
func (l LLMConfig) OpenTimeoutDuration() time.Duration {
	return parseDurationOr(l.OpenTimeout, time.Minute)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"security.jwt_secret":     "JWT_SECRET",
		"security.admin_password": "ADMIN_PASSWORD",
		"database.database_url":   "DATABASE_URL",
		"llm.api_key":             "LLM_API_KEY",
		"telegram.bot_token":      "TELEGRAM_BOT_TOKEN",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings that would otherwise fail later at request time.
func (c *Config) Validate() error {
	if c.Environment != "development" && c.Security.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required in non-development environments")
	}

	if c.Security.JWTExpiry != "" {
		if _, err := time.ParseDuration(c.Security.JWTExpiry); err != nil {
			return fmt.Errorf("invalid JWT expiry duration: %w", err)
		}
	}

	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.Security.BcryptCost)
	}

	if c.Forecast.WindowSize <= 0 {
		return fmt.Errorf("forecast window size must be positive, got %d", c.Forecast.WindowSize)
	}

	if c.LLM.Enabled && c.LLM.BaseURL == "" {
		return errors.New("llm.base_url is required when llm is enabled")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.cookie_secure", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "core1")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.database_url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "300s")
	v.SetDefault("database.conn_max_idle_time", "60s")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_expiry", "1h")
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.admin_email", "")
	v.SetDefault("security.admin_password", "")
	v.SetDefault("security.admin_name", "Administrator")

	v.SetDefault("forecast.window_size", 3)
	v.SetDefault("forecast.currency", "PHP")

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.max_tokens", 800)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.failure_threshold", 3)
	v.SetDefault("llm.open_timeout", "60s")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", "stdout")
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	v.SetDefault("telemetry.service_name", "core1-backend")
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.logs_enabled", false)

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", 0)
}
