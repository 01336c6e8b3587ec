package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gokatarajesh/timed-trivia/internal/config"
	"github.com/gokatarajesh/timed-trivia/internal/leaderboard"
	"github.com/gokatarajesh/timed-trivia/internal/metrics"
	"github.com/gokatarajesh/timed-trivia/internal/play"
	"github.com/gokatarajesh/timed-trivia/internal/question"
	"github.com/gokatarajesh/timed-trivia/internal/quiz/scoring"
	"github.com/gokatarajesh/timed-trivia/internal/server"
	ws "github.com/gokatarajesh/timed-trivia/pkg/http/ws"
)

// Application aggregates the quiz services and the HTTP server.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	hub  *ws.Hub
	http *http.Server
}

// New wires the question bank, leaderboard, metrics and HTTP server.
func New(ctx context.Context, cfg *config.App, logger zerolog.Logger) (*Application, error) {
	logger.Info().Msg("starting application bootstrap")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	quizMetrics, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	bank := question.DefaultBank()
	leaderboardSvc := leaderboard.NewService(leaderboard.DefaultCompetitors(), logger)
	wsHub := ws.NewHub(logger)

	quizHandler := play.NewHandler(
		bank,
		leaderboardSvc,
		wsHub,
		quizMetrics,
		server.NewUpgrader(cfg.WebSocket.AllowedOrigins),
		play.Options{
			Scoring: scoring.Config{
				DefaultPoints: cfg.Quiz.DefaultPoints,
				MaxTimeBonus:  cfg.Quiz.MaxTimeBonus,
			},
			TickInterval: cfg.Quiz.TickInterval,
			ReadTimeout:  cfg.WebSocket.ReadTimeout,
			SendBuffer:   cfg.WebSocket.SendBuffer,
		},
		logger,
	)
	lbHTTPHandler := leaderboard.NewHTTPHandler(leaderboardSvc, cfg.Leaderboard.Limit, logger)

	apiServer := server.NewHTTPServer(cfg, logger, registry, server.Handlers{
		QuizWS:      quizHandler.HandleWebSocket,
		Leaderboard: lbHTTPHandler.HandleGet,
	})
	apiServer.BaseContext = func(net.Listener) context.Context { return ctx }

	logger.Info().Int("questions", bank.Len()).Msg("question bank loaded")

	return &Application{
		cfg:    cfg,
		logger: logger,
		hub:    wsHub,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals or ctx cancellation.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("shutdown signal received")
		return a.shutdown()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) shutdown() error {
	msg, err := ws.NewMessage(ws.TypeServerShutdown, ws.ServerShutdownPayload{Reason: "server shutting down"})
	if err == nil {
		if err := a.hub.BroadcastAll(msg); err != nil {
			a.logger.Warn().Err(err).Msg("shutdown notice not delivered to every session")
		}
	}
	a.hub.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
		return err
	}
	return nil
}
