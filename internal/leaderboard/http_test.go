package leaderboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ws "github.com/gokatarajesh/timed-trivia/pkg/http/ws"
)

func TestHandleGet(t *testing.T) {
	h := NewHTTPHandler(newTestService(), 5, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Top []ws.LeaderboardEntry `json:"top"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Top, 2)
	assert.Equal(t, "player2", body.Top[0].PlayerID)
	assert.Equal(t, 1200, body.Top[0].TotalScore)
}

func TestHandleGetDefaultLimit(t *testing.T) {
	h := NewHTTPHandler(newTestService(), 5, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil))

	var body struct {
		Top []ws.LeaderboardEntry `json:"top"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Top, 5)
}

func TestHandleGetRejectsBadInput(t *testing.T) {
	h := NewHTTPHandler(newTestService(), 5, zerolog.Nop())

	for _, target := range []string{"/v1/leaderboard?limit=abc", "/v1/leaderboard?limit=0", "/v1/leaderboard?limit=101"} {
		rec := httptest.NewRecorder()
		h.HandleGet(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec := httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodPost, "/v1/leaderboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	h := NewHTTPHandler(newTestService(), 5, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.writeJSON(rec, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error","message":"failed to encode response"}`, rec.Body.String())
}
