package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"timed-trivia"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Quiz        Quiz
	WebSocket   WebSocket
	Leaderboard Leaderboard
}

// Quiz groups gameplay defaults.
type Quiz struct {
	TickInterval  time.Duration `env:"QUIZ_TICK_INTERVAL" envDefault:"100ms"`
	DefaultPoints int           `env:"QUIZ_DEFAULT_POINTS" envDefault:"100"`
	MaxTimeBonus  int           `env:"QUIZ_MAX_TIME_BONUS" envDefault:"100"`
}

// WebSocket tunes the quiz socket endpoint.
type WebSocket struct {
	AllowedOrigins []string      `env:"WS_ALLOWED_ORIGINS" envSeparator:"," envDefault:""`
	ReadTimeout    time.Duration `env:"WS_READ_TIMEOUT" envDefault:"60s"`
	SendBuffer     int           `env:"WS_SEND_BUFFER" envDefault:"256"`
}

// Leaderboard governs the read endpoint.
type Leaderboard struct {
	Limit int `env:"LEADERBOARD_LIMIT" envDefault:"10"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the quiz cannot run with.
func (a *App) Validate() error {
	var errs []error
	if a.Quiz.TickInterval <= 0 {
		errs = append(errs, errors.New("QUIZ_TICK_INTERVAL must be positive"))
	}
	if a.Quiz.DefaultPoints <= 0 {
		errs = append(errs, errors.New("QUIZ_DEFAULT_POINTS must be positive"))
	}
	if a.Quiz.MaxTimeBonus <= 0 {
		errs = append(errs, errors.New("QUIZ_MAX_TIME_BONUS must be positive"))
	}
	if a.WebSocket.SendBuffer <= 0 {
		errs = append(errs, errors.New("WS_SEND_BUFFER must be positive"))
	}
	if a.WebSocket.ReadTimeout <= 0 {
		errs = append(errs, errors.New("WS_READ_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}
