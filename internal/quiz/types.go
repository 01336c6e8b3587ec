package quiz

import (
	"errors"

	"github.com/gokatarajesh/timed-trivia/internal/question"
	"github.com/gokatarajesh/timed-trivia/internal/quiz/scoring"
)

// ErrStopped is returned by Controller commands once its loop has exited.
var ErrStopped = errors.New("quiz controller stopped")

// Phase is the lifecycle position of a quiz.
type Phase string

// Quiz phases. AwaitingAnswer and Answered are sub-phases of an in-progress quiz.
const (
	PhaseNotStarted     Phase = "not_started"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseAnswered       Phase = "answered"
	PhaseCompleted      Phase = "completed"
)

// InProgress reports whether a question is on screen.
func (p Phase) InProgress() bool {
	return p == PhaseAwaitingAnswer || p == PhaseAnswered
}

// State is the progression record of one quiz run.
type State struct {
	CurrentQuestion int     `json:"current_question"`
	Score           int     `json:"score"`
	TimeBonus       int     `json:"time_bonus"`
	Answers         []int   `json:"answers"`
	TimeRemaining   float64 `json:"time_remaining"` // seconds
	IsCompleted     bool    `json:"is_completed"`
}

func (s State) clone() State {
	answers := make([]int, len(s.Answers))
	copy(answers, s.Answers)
	s.Answers = answers
	return s
}

// Player is the externally visible scoring record of the person taking the quiz.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	TimeBonus  int    `json:"time_bonus"`
	TotalScore int    `json:"total_score"`
}

// NewPlayer creates a player with zeroed scores.
func NewPlayer(id, name string) Player {
	return Player{ID: id, Name: name}
}

// WithScores returns p with the given totals; TotalScore is always Score + TimeBonus.
func (p Player) WithScores(score, timeBonus int) Player {
	p.Score = score
	p.TimeBonus = timeBonus
	p.TotalScore = score + timeBonus
	return p
}

// Outcome records how a single question was answered.
type Outcome struct {
	QuestionIndex int     `json:"question_index"`
	QuestionID    string  `json:"question_id"`
	Selected      int     `json:"selected"`
	CorrectAnswer int     `json:"correct_answer"`
	TimedOut      bool    `json:"timed_out"`
	SecondsLeft   float64 `json:"seconds_left"`
	scoring.Result
}

// Expiry is raised when the active question's timer reaches zero.
type Expiry struct {
	QuestionIndex int    `json:"question_index"`
	Epoch         uint64 `json:"epoch"`
}

// Snapshot is a read-only copy of everything a presentation layer renders.
type Snapshot struct {
	Phase         Phase                `json:"phase"`
	State         State                `json:"state"`
	Player        Player               `json:"player"`
	Question      *question.ClientView `json:"question,omitempty"`
	QuestionCount int                  `json:"question_count"`
	Epoch         uint64               `json:"epoch"`
}

// Recorder observes quiz activity. Implementations must be cheap and non-blocking.
type Recorder interface {
	QuizStarted()
	AnswerRecorded(o Outcome)
	QuizCompleted(p Player)
}

type nopRecorder struct{}

func (nopRecorder) QuizStarted()           {}
func (nopRecorder) AnswerRecorded(Outcome) {}
func (nopRecorder) QuizCompleted(Player)   {}
