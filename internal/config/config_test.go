package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "timed-trivia", cfg.Name)
	assert.Equal(t, 20*time.Second, cfg.GracefulShutdownTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Quiz.TickInterval)
	assert.Equal(t, 100, cfg.Quiz.DefaultPoints)
	assert.Equal(t, 100, cfg.Quiz.MaxTimeBonus)
	assert.Equal(t, 256, cfg.WebSocket.SendBuffer)
	assert.Empty(t, cfg.WebSocket.AllowedOrigins)
	assert.Equal(t, 10, cfg.Leaderboard.Limit)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("QUIZ_TICK_INTERVAL", "250ms")
	t.Setenv("QUIZ_MAX_TIME_BONUS", "50")
	t.Setenv("WS_ALLOWED_ORIGINS", "http://localhost:3000,https://trivia.example.com")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.Quiz.TickInterval)
	assert.Equal(t, 50, cfg.Quiz.MaxTimeBonus)
	assert.Equal(t, []string{"http://localhost:3000", "https://trivia.example.com"}, cfg.WebSocket.AllowedOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("QUIZ_TICK_INTERVAL", "0s")
	t.Setenv("WS_SEND_BUFFER", "-1")

	_, err := Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIZ_TICK_INTERVAL")
	assert.Contains(t, err.Error(), "WS_SEND_BUFFER")
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("WS_READ_TIMEOUT", "soon")

	_, err := Load(context.Background())
	assert.Error(t, err)
}
