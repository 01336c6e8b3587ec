package play

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/timed-trivia/internal/leaderboard"
	"github.com/gokatarajesh/timed-trivia/internal/question"
	"github.com/gokatarajesh/timed-trivia/internal/server"
	httperrors "github.com/gokatarajesh/timed-trivia/pkg/http/errors"
	ws "github.com/gokatarajesh/timed-trivia/pkg/http/ws"
)

func newTestServer(t *testing.T, bank *question.Bank) (*httptest.Server, *ws.Hub) {
	t.Helper()
	hub := ws.NewHub(zerolog.Nop())
	h := NewHandler(
		bank,
		leaderboard.NewService(nil, zerolog.Nop()),
		hub,
		nil,
		server.NewUpgrader(nil),
		Options{TickInterval: 5 * time.Millisecond},
		zerolog.Nop(),
	)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/quiz?name=" + url.QueryEscape(name)
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	msg, err := ws.NewMessage(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string, out any) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", msgType)
		if msg.Type != msgType {
			continue
		}
		if out != nil {
			require.NoError(t, json.Unmarshal(msg.Payload, out))
		}
		return msg
	}
}

func TestSessionReady(t *testing.T) {
	srv, _ := newTestServer(t, question.DefaultBank())
	conn := dial(t, srv, "Ada")

	var ready ws.SessionReadyPayload
	readUntil(t, conn, ws.TypeSessionReady, &ready)
	assert.NotEmpty(t, ready.SessionID)
	assert.Equal(t, "Ada", ready.Player.Name)
	assert.Equal(t, 5, ready.QuestionCount)
}

func TestFullQuizOverWebSocket(t *testing.T) {
	srv, _ := newTestServer(t, question.DefaultBank())
	conn := dial(t, srv, "Ada")
	readUntil(t, conn, ws.TypeSessionReady, nil)

	sendMsg(t, conn, ws.TypeStartQuiz, nil)
	var state ws.QuizStatePayload
	readUntil(t, conn, ws.TypeQuizState, &state)
	require.NotNil(t, state.Question)
	assert.Equal(t, "awaiting_answer", state.Phase)
	assert.Equal(t, 0, state.Question.Index)

	for i, q := range question.DefaultQuestions() {
		sendMsg(t, conn, ws.TypeSubmitAnswer, ws.SubmitAnswerPayload{QuestionIndex: i, OptionIndex: q.CorrectAnswer})

		var result ws.AnswerResultPayload
		readUntil(t, conn, ws.TypeAnswerResult, &result)
		assert.Equal(t, i, result.QuestionIndex)
		assert.True(t, result.IsCorrect)
		assert.Equal(t, 100, result.BaseScore)
		assert.Equal(t, q.CorrectAnswer, result.CorrectAnswer)
	}

	var done ws.QuizCompletePayload
	readUntil(t, conn, ws.TypeQuizComplete, &done)
	assert.Equal(t, 500, done.Player.Score)
	assert.Equal(t, done.Player.Score+done.Player.TimeBonus, done.Player.TotalScore)
	assert.Len(t, done.Leaderboard, 9)
	assert.Len(t, done.Review, 5)
	assert.Equal(t, leaderboard.CelebrationMessage(done.Rank), done.Message)
}

func TestQuizCompleteReviewSurvivesImmediateRestart(t *testing.T) {
	bank := question.MustBank([]question.Question{{
		ID:            "only",
		Prompt:        "Pick b",
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: 1,
		TimeLimit:     30,
	}})
	srv, _ := newTestServer(t, bank)
	conn := dial(t, srv, "Ada")
	readUntil(t, conn, ws.TypeSessionReady, nil)

	sendMsg(t, conn, ws.TypeStartQuiz, nil)
	readUntil(t, conn, ws.TypeQuizState, nil)

	sendMsg(t, conn, ws.TypeSubmitAnswer, ws.SubmitAnswerPayload{QuestionIndex: 0, OptionIndex: 1})
	sendMsg(t, conn, ws.TypeStartQuiz, nil)

	var done ws.QuizCompletePayload
	readUntil(t, conn, ws.TypeQuizComplete, &done)
	require.Len(t, done.Review, 1)
	assert.Equal(t, 1, done.Review[0].Selected)
	assert.True(t, done.Review[0].IsCorrect)
	assert.Equal(t, 100, done.Player.Score)

	var state ws.QuizStatePayload
	readUntil(t, conn, ws.TypeQuizState, &state)
	assert.Equal(t, "awaiting_answer", state.Phase)
	assert.Empty(t, state.Answers)
}

func TestQuestionExpiresOverWebSocket(t *testing.T) {
	bank := question.MustBank([]question.Question{{
		ID:            "fast",
		Prompt:        "Answer quickly",
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: 0,
		TimeLimit:     1,
	}})
	srv, _ := newTestServer(t, bank)
	conn := dial(t, srv, "")
	readUntil(t, conn, ws.TypeSessionReady, nil)

	sendMsg(t, conn, ws.TypeStartQuiz, nil)

	var expired ws.QuestionExpiredPayload
	readUntil(t, conn, ws.TypeQuestionExpired, &expired)
	assert.Equal(t, 0, expired.QuestionIndex)
	assert.Equal(t, 0, expired.CorrectAnswer)

	var done ws.QuizCompletePayload
	readUntil(t, conn, ws.TypeQuizComplete, &done)
	assert.Zero(t, done.Player.TotalScore)
	assert.Equal(t, 9, done.Rank)
	assert.Equal(t, leaderboard.MessageOther, done.Message)
	require.Len(t, done.Review, 1)
	assert.True(t, done.Review[0].TimedOut)
}

func TestRequestStateAndPing(t *testing.T) {
	srv, _ := newTestServer(t, question.DefaultBank())
	conn := dial(t, srv, "Ada")
	readUntil(t, conn, ws.TypeSessionReady, nil)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypeRequestState, RequestID: "r1"}))
	var state ws.QuizStatePayload
	msg := readUntil(t, conn, ws.TypeQuizState, &state)
	assert.Equal(t, "r1", msg.RequestID)
	assert.Equal(t, "not_started", state.Phase)
	assert.Nil(t, state.Question)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypePing, RequestID: "r2"}))
	msg = readUntil(t, conn, ws.TypePong, nil)
	assert.Equal(t, "r2", msg.RequestID)
}

func TestResetOverWebSocket(t *testing.T) {
	srv, _ := newTestServer(t, question.DefaultBank())
	conn := dial(t, srv, "Ada")
	readUntil(t, conn, ws.TypeSessionReady, nil)

	sendMsg(t, conn, ws.TypeStartQuiz, nil)
	readUntil(t, conn, ws.TypeQuizState, nil)
	sendMsg(t, conn, ws.TypeSubmitAnswer, ws.SubmitAnswerPayload{QuestionIndex: 0, OptionIndex: 2})
	readUntil(t, conn, ws.TypeAnswerResult, nil)

	sendMsg(t, conn, ws.TypeResetQuiz, nil)
	var state ws.QuizStatePayload
	for {
		readUntil(t, conn, ws.TypeQuizState, &state)
		if state.Phase == "not_started" {
			break
		}
	}
	assert.Empty(t, state.Answers)
	assert.Zero(t, state.Score)
	assert.Zero(t, state.CurrentQuestion)
}

func TestBadMessages(t *testing.T) {
	srv, _ := newTestServer(t, question.DefaultBank())
	conn := dial(t, srv, "Ada")
	readUntil(t, conn, ws.TypeSessionReady, nil)

	var errPayload ws.ErrorPayload
	require.NoError(t, conn.WriteJSON(ws.Message{Type: "dance"}))
	readUntil(t, conn, ws.TypeError, &errPayload)
	assert.Equal(t, httperrors.ErrCodeUnknownMessageType, errPayload.Code)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypeSubmitAnswer, Payload: json.RawMessage(`"oops"`)}))
	readUntil(t, conn, ws.TypeError, &errPayload)
	assert.Equal(t, httperrors.ErrCodeInvalidPayload, errPayload.Code)

	require.NoError(t, conn.WriteJSON(ws.Message{RequestID: "r1"}))
	readUntil(t, conn, ws.TypeError, &errPayload)
	assert.Equal(t, httperrors.ErrCodeInvalidRequest, errPayload.Code)
}

func TestPlainHTTPRequestIsRejected(t *testing.T) {
	srv, hub := newTestServer(t, question.DefaultBank())

	resp, err := http.Get(srv.URL + "/ws/quiz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var body httperrors.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, httperrors.ErrCodeConnectionError, body.Error)
	assert.Zero(t, hub.Count())
}

func TestShutdownClosesSessions(t *testing.T) {
	srv, hub := newTestServer(t, question.DefaultBank())
	conn := dial(t, srv, "Ada")
	readUntil(t, conn, ws.TypeSessionReady, nil)
	require.Equal(t, 1, hub.Count())

	msg, err := ws.NewMessage(ws.TypeServerShutdown, ws.ServerShutdownPayload{Reason: "maintenance"})
	require.NoError(t, err)
	require.NoError(t, hub.BroadcastAll(msg))
	hub.CloseAll()

	var payload ws.ServerShutdownPayload
	readUntil(t, conn, ws.TypeServerShutdown, &payload)
	assert.Equal(t, "maintenance", payload.Reason)

	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
