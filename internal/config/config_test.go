package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:token")
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("DB_PASSWORD", "secret")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHANNEL_ID", "@my_channel")
	t.Setenv("ADMIN_IDS", "10,20")
	t.Setenv("MAX_QUESTIONS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:token", cfg.BotToken)
	assert.Equal(t, "@my_channel", cfg.ChannelID)
	assert.Equal(t, []int64{10, 20}, cfg.AdminIDs)
	assert.Equal(t, 3, cfg.MaxQuestions)

	// Defaults survive when unset.
	assert.Equal(t, "menus.yaml", cfg.MenusPath)
	assert.Equal(t, 5000, cfg.HealthPort)
	assert.Equal(t, 30, cfg.AI.TimeoutSeconds)
	assert.Equal(t, 512, cfg.AI.UserMaxTokens)
	assert.Equal(t, 2048, cfg.AI.AdminMaxTokens)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *testing.T)
		wantErr string
	}{
		{
			name:    "missing bot token",
			mutate:  func(t *testing.T) { t.Setenv("BOT_TOKEN", "") },
			wantErr: "BOT_TOKEN",
		},
		{
			name:    "missing AI key",
			mutate:  func(t *testing.T) { t.Setenv("AI_API_KEY", "") },
			wantErr: "AI_API_KEY",
		},
		{
			name:    "missing db password",
			mutate:  func(t *testing.T) { t.Setenv("DB_PASSWORD", "") },
			wantErr: "DB_PASSWORD",
		},
		{
			name:    "channel without @",
			mutate:  func(t *testing.T) { t.Setenv("CHANNEL_ID", "my_channel") },
			wantErr: "CHANNEL_ID",
		},
		{
			name:    "non-positive quota",
			mutate:  func(t *testing.T) { t.Setenv("MAX_QUESTIONS", "0") },
			wantErr: "MAX_QUESTIONS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			tt.mutate(t)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := &Config{
		ChannelID: "@my_channel",
		AdminIDs:  []int64{10, 20},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "bot",
			Password: "secret",
			Name:     "offersbot",
		},
	}

	assert.Equal(t, "my_channel", cfg.ChannelHandle())

	set := cfg.AdminSet()
	assert.Len(t, set, 2)
	_, ok := set[10]
	assert.True(t, ok)

	assert.Equal(t,
		"host=localhost port=5432 user=bot password=secret dbname=offersbot sslmode=disable",
		cfg.DSN(),
	)
}
