package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeStartQuiz    = "start_quiz"
	TypeSubmitAnswer = "submit_answer"
	TypeResetQuiz    = "reset_quiz"
	TypeRequestState = "request_state"

	// Server -> Client
	TypeSessionReady    = "session_ready"
	TypeQuizState       = "quiz_state"
	TypeQuestionTick    = "question_tick"
	TypeAnswerResult    = "answer_result"
	TypeQuestionExpired = "question_expired"
	TypeQuizComplete    = "quiz_complete"
	TypeServerShutdown  = "server_shutdown"
	TypeError           = "error"
	TypePing            = "ping"
	TypePong            = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type SubmitAnswerPayload struct {
	QuestionIndex int `json:"question_index"`
	OptionIndex   int `json:"option_index"`
}

// Server Messages (outgoing)

type SessionReadyPayload struct {
	SessionID     string `json:"session_id"`
	Player        Player `json:"player"`
	QuestionCount int    `json:"question_count"`
}

type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	TimeBonus  int    `json:"time_bonus"`
	TotalScore int    `json:"total_score"`
}

type QuizStatePayload struct {
	Phase            string           `json:"phase"`
	CurrentQuestion  int              `json:"current_question"`
	QuestionCount    int              `json:"question_count"`
	Score            int              `json:"score"`
	TimeBonus        int              `json:"time_bonus"`
	Answers          []int            `json:"answers"`
	RemainingSeconds float64          `json:"remaining_seconds"`
	IsCompleted      bool             `json:"is_completed"`
	Question         *QuestionPayload `json:"question,omitempty"`
	Player           Player           `json:"player"`
}

type QuestionPayload struct {
	Index     int      `json:"index"`
	ID        string   `json:"id"`
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"time_limit"`
	Points    int      `json:"points"`
}

type QuestionTickPayload struct {
	QuestionIndex    int `json:"question_index"`
	RemainingSeconds int `json:"remaining_seconds"`
}

type AnswerResultPayload struct {
	QuestionIndex int     `json:"question_index"`
	Selected      int     `json:"selected"`
	CorrectAnswer int     `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
	BaseScore     int     `json:"base_score"`
	TimeBonus     int     `json:"time_bonus"`
	SecondsLeft   float64 `json:"seconds_left"`
	Player        Player  `json:"player"`
}

type QuestionExpiredPayload struct {
	QuestionIndex int    `json:"question_index"`
	CorrectAnswer int    `json:"correct_answer"`
	Player        Player `json:"player"`
}

type QuizCompletePayload struct {
	Player      Player             `json:"player"`
	Rank        int                `json:"rank"`
	OnPodium    bool               `json:"on_podium"`
	Message     string             `json:"message"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Review      []AnswerReview     `json:"review"`
}

type AnswerReview struct {
	QuestionIndex int  `json:"question_index"`
	Selected      int  `json:"selected"`
	CorrectAnswer int  `json:"correct_answer"`
	IsCorrect     bool `json:"is_correct"`
	TimedOut      bool `json:"timed_out"`
	Points        int  `json:"points"`
}

type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	PlayerID      string `json:"player_id"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
	TimeBonus     int    `json:"time_bonus"`
	TotalScore    int    `json:"total_score"`
	CurrentPlayer bool   `json:"current_player,omitempty"`
}

type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
