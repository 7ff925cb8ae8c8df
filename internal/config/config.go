package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/autoresponder/")
	v.AddConfigPath("$HOME/.autoresponder")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("AUTORESPONDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Routing defaults (comma-separated lists, normalized at load time)
	v.SetDefault("routing.business_list", "")
	v.SetDefault("routing.allow_list", "")
	v.SetDefault("routing.keywords", "")

	// Webhook defaults
	v.SetDefault("webhook.endpoint", "")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.timeout", "20s")

	// Mailbox defaults
	v.SetDefault("mailbox.credentials_file", "credentials.json")
	v.SetDefault("mailbox.token_file", "token.json")
	v.SetDefault("mailbox.query", "is:unread -label:processed")
	v.SetDefault("mailbox.max_threads", 5)
	v.SetDefault("mailbox.processed_label", "processed")
	v.SetDefault("mailbox.poll_interval", "5m")

	// Outbound defaults
	v.SetDefault("outbound.transport", "gmail")
	v.SetDefault("outbound.business_name", "Notariusz – Informacja")
	v.SetDefault("outbound.personal_name", "Tyler Durden – Autoresponder")

	// SMTP defaults (only used when outbound.transport is "smtp")
	v.SetDefault("smtp.address", "localhost:587")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.helo_domain", "localhost")

	// Backend (reply generation service) defaults
	v.SetDefault("backend.listen_address", ":10000")
	v.SetDefault("backend.secret", "")
	v.SetDefault("backend.personal_prompt_file", "prompt.txt")
	v.SetDefault("backend.business_prompt_file", "prompt_biznesowy.txt")
	v.SetDefault("backend.emoticon_dir", "emotki")
	v.SetDefault("backend.pdf_dir", "pdf")
	v.SetDefault("backend.max_body_size", 3000)

	// Generator provider defaults
	v.SetDefault("generator.provider", "openai")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("openai.top_p", 0.9)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.0)
	v.SetDefault("gemini.top_p", 0.9)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.0)
	v.SetDefault("bedrock.top_p", 0.9)

	// Reply cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/reply_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/autoresponder")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetList splits a comma-separated value into trimmed, lower-cased,
// non-empty entries. Routing lists are supplied in this shape.
func (c *Config) GetList(key string) []string {
	raw := c.v.GetString(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
