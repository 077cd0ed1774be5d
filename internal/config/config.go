package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	BotToken  string  `envconfig:"BOT_TOKEN"`
	ChannelID string  `envconfig:"CHANNEL_ID" default:"@sozvezdie_skidok"`
	AdminIDs  []int64 `envconfig:"ADMIN_IDS"`
	MenusPath string  `envconfig:"MENUS_PATH" default:"menus.yaml"`

	// MaxQuestions caps AI questions for regular users; admins are
	// never metered.
	MaxQuestions int `envconfig:"MAX_QUESTIONS" default:"5"`

	HealthPort int `envconfig:"PORT" default:"5000"`

	Database DatabaseConfig
	AI       AIConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"offersbot"`
	User     string `envconfig:"DB_USER" default:"offersbot"`
	Password string `envconfig:"DB_PASSWORD"`
}

// AIConfig holds completion-service settings
type AIConfig struct {
	Endpoint       string `envconfig:"AI_ENDPOINT" default:"https://api.openai.com/v1/chat/completions"`
	APIKey         string `envconfig:"AI_API_KEY"`
	Model          string `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	TimeoutSeconds int    `envconfig:"AI_TIMEOUT_SECONDS" default:"30"`
	UserMaxTokens  int    `envconfig:"AI_USER_MAX_TOKENS" default:"512"`
	AdminMaxTokens int    `envconfig:"AI_ADMIN_MAX_TOKENS" default:"2048"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("AI_API_KEY is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if !strings.HasPrefix(cfg.ChannelID, "@") {
		return nil, fmt.Errorf("CHANNEL_ID must start with @, got %q", cfg.ChannelID)
	}
	if cfg.MaxQuestions < 1 {
		return nil, fmt.Errorf("MAX_QUESTIONS must be positive, got %d", cfg.MaxQuestions)
	}

	return &cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// AdminSet returns admin ids as a lookup set
func (c *Config) AdminSet() map[int64]struct{} {
	set := make(map[int64]struct{}, len(c.AdminIDs))
	for _, id := range c.AdminIDs {
		set[id] = struct{}{}
	}
	return set
}

// ChannelHandle returns the channel identifier without the leading @,
// for building t.me links.
func (c *Config) ChannelHandle() string {
	return strings.TrimPrefix(c.ChannelID, "@")
}
