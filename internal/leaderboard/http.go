package leaderboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	apierrors "github.com/gokatarajesh/timed-trivia/pkg/http/errors"
)

const maxLimit = 100

// HTTPHandler exposes REST endpoints for leaderboard queries.
type HTTPHandler struct {
	svc          *Service
	defaultLimit int
	logger       zerolog.Logger
}

// NewHTTPHandler constructs a leaderboard HTTP handler.
func NewHTTPHandler(svc *Service, defaultLimit int, logger zerolog.Logger) *HTTPHandler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &HTTPHandler{
		svc:          svc,
		defaultLimit: defaultLimit,
		logger:       logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleGet responds with the ranked competitors.
// Route: GET /v1/leaderboard?limit=10
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apierrors.RespondMethodNotAllowed(w)
		return
	}

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxLimit {
			apierrors.RespondValidationError(w, apierrors.ErrCodeInvalidLimit, "limit must be between 1 and 100", "limit")
			return
		}
		limit = parsed
	}

	resp := map[string]interface{}{
		"top":         ToWSEntries(h.svc.Top(limit)),
		"retrievedAt": time.Now().UTC().Format(time.RFC3339),
	}

	h.writeJSON(w, resp)
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("encode leaderboard response")
		apierrors.RespondInternalError(w, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(append(body, '\n'))
}
