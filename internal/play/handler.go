package play

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gokatarajesh/timed-trivia/internal/leaderboard"
	"github.com/gokatarajesh/timed-trivia/internal/logging"
	"github.com/gokatarajesh/timed-trivia/internal/metrics"
	"github.com/gokatarajesh/timed-trivia/internal/question"
	"github.com/gokatarajesh/timed-trivia/internal/quiz"
	"github.com/gokatarajesh/timed-trivia/internal/quiz/scoring"
	httperrors "github.com/gokatarajesh/timed-trivia/pkg/http/errors"
	ws "github.com/gokatarajesh/timed-trivia/pkg/http/ws"
)

// Options tunes per-session quiz behavior.
type Options struct {
	Scoring      scoring.Config
	TickInterval time.Duration
	ReadTimeout  time.Duration
	SendBuffer   int
}

// Handler runs one quiz per WebSocket connection and routes its messages.
type Handler struct {
	bank        *question.Bank
	leaderboard *leaderboard.Service
	hub         *ws.Hub
	metrics     *metrics.Quiz
	upgrader    websocket.Upgrader
	opts        Options
	logger      zerolog.Logger
}

// NewHandler creates a quiz WebSocket handler. metrics may be nil.
func NewHandler(bank *question.Bank, lb *leaderboard.Service, hub *ws.Hub, m *metrics.Quiz, upgrader websocket.Upgrader, opts Options, logger zerolog.Logger) *Handler {
	return &Handler{
		bank:        bank,
		leaderboard: lb,
		hub:         hub,
		metrics:     m,
		upgrader:    upgrader,
		opts:        opts,
		logger:      logger.With().Str("component", "quiz_ws").Logger(),
	}
}

// session is the per-connection state.
type session struct {
	id     uuid.UUID
	player quiz.Player
	conn   *ws.Connection
	ctrl   *quiz.Controller
	h      *Handler
	logger zerolog.Logger
}

// HandleConnection plays a quiz over conn until the peer disconnects or ctx ends.
func (h *Handler) HandleConnection(ctx context.Context, conn *websocket.Conn, name string) {
	sessionID := uuid.New()
	player := quiz.NewPlayer(uuid.NewString(), name)
	logger := h.logger.With().
		Str("session_id", sessionID.String()).
		Str("player_id", player.ID).
		Logger()
	ctx = logging.IntoContext(ctx, logger)

	wsConn := ws.NewConnection(conn, logger, ws.ConnectionOptions{
		ReadTimeout: h.opts.ReadTimeout,
		SendBuffer:  h.opts.SendBuffer,
	})
	h.hub.RegisterSession(sessionID, wsConn)
	h.metrics.SessionOpened()

	machine := quiz.NewMachine(h.bank, quiz.MachineOptions{
		Scoring:  h.opts.Scoring,
		Player:   player,
		Recorder: h.metrics,
		Logger:   logger,
	})
	ctrl := quiz.NewController(machine, quiz.ControllerOptions{
		TickInterval: h.opts.TickInterval,
		Logger:       logger,
	})
	s := &session{id: sessionID, player: player, conn: wsConn, ctrl: ctrl, h: h, logger: logger}

	ctx, cancel := context.WithCancel(ctx)
	events, unsubscribe := ctrl.Subscribe()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.Run(gctx) })
	g.Go(func() error { return s.forward(events) })

	go wsConn.WritePump()

	s.send(ws.TypeSessionReady, "", ws.SessionReadyPayload{
		SessionID:     sessionID.String(),
		Player:        toWSPlayer(player),
		QuestionCount: h.bank.Len(),
	})
	logger.Info().Str("name", name).Msg("quiz session opened")

	// Stop reading once the session context ends so shutdown is not held up by idle clients.
	stop := context.AfterFunc(ctx, func() { h.hub.UnregisterSession(sessionID) })

	wsConn.ReadPump(func(msg ws.Message) error {
		return s.handleMessage(gctx, msg)
	})

	stop()
	cancel()
	unsubscribe()
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("quiz session ended with error")
	}
	h.hub.UnregisterSession(sessionID)
	h.metrics.SessionClosed()
	logger.Info().Msg("quiz session closed")
}

// handleMessage routes incoming WebSocket messages.
func (s *session) handleMessage(ctx context.Context, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeStartQuiz:
		_, err := s.ctrl.Start(ctx)
		return s.commandResult(err)
	case ws.TypeSubmitAnswer:
		return s.handleSubmitAnswer(ctx, msg.Payload)
	case ws.TypeResetQuiz:
		_, err := s.ctrl.Reset(ctx)
		return s.commandResult(err)
	case ws.TypeRequestState:
		snap, err := s.ctrl.Snapshot(ctx)
		if err != nil {
			return s.commandResult(err)
		}
		return s.send(ws.TypeQuizState, msg.RequestID, toStatePayload(snap))
	case ws.TypePing:
		return s.send(ws.TypePong, msg.RequestID, nil)
	case "":
		return s.sendError(httperrors.ErrCodeInvalidRequest, "Message type is required")
	default:
		return s.sendError(httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (s *session) handleSubmitAnswer(ctx context.Context, payload json.RawMessage) error {
	var req ws.SubmitAnswerPayload
	if len(payload) == 0 {
		return s.sendError(httperrors.ErrCodeInvalidPayload, "Invalid submit_answer payload")
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return s.sendError(httperrors.ErrCodeInvalidPayload, "Invalid submit_answer payload")
	}
	if req.OptionIndex < scoring.NoAnswer {
		return s.sendError(httperrors.ErrCodeInvalidAnswer, "option_index must be -1 or greater")
	}

	_, err := s.ctrl.Answer(ctx, req.QuestionIndex, req.OptionIndex)
	return s.commandResult(err)
}

func (s *session) commandResult(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, quiz.ErrStopped), errors.Is(err, context.Canceled):
		return s.sendError(httperrors.ErrCodeQuizUnavailable, "Quiz session is closing")
	default:
		return s.sendError(httperrors.ErrCodeInternalError, err.Error())
	}
}

// forward turns controller events into server messages until the controller stops.
func (s *session) forward(events <-chan quiz.Event) error {
	for ev := range events {
		if err := s.emit(ev); err != nil {
			s.logger.Warn().Err(err).Str("event", string(ev.Type)).Msg("event delivery failed")
		}
	}
	return nil
}

func (s *session) emit(ev quiz.Event) error {
	snap := ev.Snapshot
	switch ev.Type {
	case quiz.EventStarted, quiz.EventReset:
		return s.send(ws.TypeQuizState, "", toStatePayload(snap))

	case quiz.EventTick:
		if snap.Question == nil {
			return nil
		}
		return s.send(ws.TypeQuestionTick, "", ws.QuestionTickPayload{
			QuestionIndex:    snap.Question.Index,
			RemainingSeconds: int(math.Ceil(snap.State.TimeRemaining)),
		})

	case quiz.EventAnswered:
		o := ev.Outcome
		if err := s.send(ws.TypeAnswerResult, "", ws.AnswerResultPayload{
			QuestionIndex: o.QuestionIndex,
			Selected:      o.Selected,
			CorrectAnswer: o.CorrectAnswer,
			IsCorrect:     o.IsCorrect,
			BaseScore:     o.BaseScore,
			TimeBonus:     o.TimeBonus,
			SecondsLeft:   o.SecondsLeft,
			Player:        toWSPlayer(snap.Player),
		}); err != nil {
			return err
		}
		return s.sendNextQuestion(snap)

	case quiz.EventExpired:
		if err := s.send(ws.TypeQuestionExpired, "", ws.QuestionExpiredPayload{
			QuestionIndex: ev.Expiry.QuestionIndex,
			CorrectAnswer: ev.Outcome.CorrectAnswer,
			Player:        toWSPlayer(snap.Player),
		}); err != nil {
			return err
		}
		return s.sendNextQuestion(snap)

	case quiz.EventCompleted:
		return s.sendComplete(snap, ev.Outcomes)
	}
	return nil
}

func (s *session) sendNextQuestion(snap quiz.Snapshot) error {
	if snap.Phase != quiz.PhaseAwaitingAnswer {
		return nil
	}
	return s.send(ws.TypeQuizState, "", toStatePayload(snap))
}

func (s *session) sendComplete(snap quiz.Snapshot, outcomes []quiz.Outcome) error {
	standings := s.h.leaderboard.Rank(snap.Player)
	review := make([]ws.AnswerReview, len(outcomes))
	for i, o := range outcomes {
		review[i] = ws.AnswerReview{
			QuestionIndex: o.QuestionIndex,
			Selected:      o.Selected,
			CorrectAnswer: o.CorrectAnswer,
			IsCorrect:     o.IsCorrect,
			TimedOut:      o.TimedOut,
			Points:        o.Total(),
		}
	}

	s.logger.Info().
		Int("rank", standings.PlayerRank).
		Int("total_score", snap.Player.TotalScore).
		Msg("quiz session completed")

	return s.send(ws.TypeQuizComplete, "", ws.QuizCompletePayload{
		Player:      toWSPlayer(snap.Player),
		Rank:        standings.PlayerRank,
		OnPodium:    standings.OnPodium,
		Message:     standings.Message,
		Leaderboard: leaderboard.ToWSEntries(standings.Entries),
		Review:      review,
	})
}

func (s *session) send(msgType, requestID string, payload any) error {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	msg.RequestID = requestID
	return s.conn.Send(msg)
}

func (s *session) sendError(code, message string) error {
	return s.send(ws.TypeError, "", ws.ErrorPayload{
		Code:    code,
		Message: message,
	})
}

func toWSPlayer(p quiz.Player) ws.Player {
	return ws.Player{
		ID:         p.ID,
		Name:       p.Name,
		Score:      p.Score,
		TimeBonus:  p.TimeBonus,
		TotalScore: p.TotalScore,
	}
}

func toStatePayload(snap quiz.Snapshot) ws.QuizStatePayload {
	payload := ws.QuizStatePayload{
		Phase:            string(snap.Phase),
		CurrentQuestion:  snap.State.CurrentQuestion,
		QuestionCount:    snap.QuestionCount,
		Score:            snap.State.Score,
		TimeBonus:        snap.State.TimeBonus,
		Answers:          snap.State.Answers,
		RemainingSeconds: snap.State.TimeRemaining,
		IsCompleted:      snap.State.IsCompleted,
		Player:           toWSPlayer(snap.Player),
	}
	if q := snap.Question; q != nil {
		payload.Question = &ws.QuestionPayload{
			Index:     q.Index,
			ID:        q.ID,
			Prompt:    q.Prompt,
			Options:   q.Options,
			TimeLimit: q.TimeLimit,
			Points:    q.Points,
		}
	}
	return payload
}
