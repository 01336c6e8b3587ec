package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/timed-trivia/internal/config"
	apierrors "github.com/gokatarajesh/timed-trivia/pkg/http/errors"
)

// Handlers groups the feature endpoints mounted on the API mux. Nil handlers are skipped.
type Handlers struct {
	QuizWS      http.HandlerFunc
	Leaderboard http.HandlerFunc
}

// NewUpgrader builds the WebSocket upgrader. An empty allow-list accepts any origin.
// Failed handshakes get the JSON error body used by the REST endpoints.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			allowed[strings.ToLower(origin)] = struct{}{}
		}
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			_, ok := allowed[strings.ToLower(u.Scheme+"://"+u.Host)]
			return ok
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			apierrors.RespondError(w, status, apierrors.ErrCodeConnectionError, reason.Error())
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// NewHTTPServer wires base routes (health, metrics) and the quiz endpoints.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, gatherer prometheus.Gatherer, handlers Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if handlers.QuizWS != nil {
		mux.HandleFunc("/ws/quiz", handlers.QuizWS)
	} else {
		mux.HandleFunc("/ws/quiz", func(w http.ResponseWriter, r *http.Request) {
			logger.Warn().Msg("quiz websocket requested but not configured")
			apierrors.RespondServiceUnavailable(w, apierrors.ErrCodeServiceUnavailable, "quiz sessions are not available")
		})
	}

	if handlers.Leaderboard != nil {
		mux.HandleFunc("/v1/leaderboard", handlers.Leaderboard)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}
