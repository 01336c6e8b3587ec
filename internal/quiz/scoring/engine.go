package scoring

import (
	"math"

	"github.com/gokatarajesh/timed-trivia/internal/question"
)

// NoAnswer is the selected index recorded when the timer runs out.
const NoAnswer = -1

// Config holds configurable scoring constants (defaults match the game rules).
type Config struct {
	DefaultPoints int // default: 100, used when a question sets no points
	MaxTimeBonus  int // default: 100, awarded for answering with the full limit left
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultPoints: question.DefaultPoints,
		MaxTimeBonus:  100,
	}
}

// Result is the outcome of scoring a single answer.
type Result struct {
	IsCorrect bool `json:"is_correct"`
	BaseScore int  `json:"base_score"`
	TimeBonus int  `json:"time_bonus"`
}

// Total returns base score plus time bonus.
func (r Result) Total() int {
	return r.BaseScore + r.TimeBonus
}

// Engine computes scores with configurable constants. It has no state.
type Engine struct {
	config Config
}

// NewEngine creates a scoring engine. Zero fields fall back to DefaultConfig.
func NewEngine(config Config) *Engine {
	def := DefaultConfig()
	if config.DefaultPoints <= 0 {
		config.DefaultPoints = def.DefaultPoints
	}
	if config.MaxTimeBonus <= 0 {
		config.MaxTimeBonus = def.MaxTimeBonus
	}
	return &Engine{config: config}
}

// Config returns the effective constants.
func (e *Engine) Config() Config {
	return e.config
}

// Score evaluates selected against q with secondsRemaining on the clock.
// Formula (correct answers only):
// - base: question points, or the configured default
// - time_bonus: floor(remaining/limit * MaxTimeBonus), linear decay to 0 at timeout
// Any selected index other than the correct one, including NoAnswer, scores zero.
func (e *Engine) Score(q question.Question, selected int, secondsRemaining float64) Result {
	if selected == NoAnswer || selected != q.CorrectAnswer {
		return Result{}
	}

	base := q.Points
	if base == 0 {
		base = e.config.DefaultPoints
	}

	return Result{
		IsCorrect: true,
		BaseScore: base,
		TimeBonus: e.timeBonus(secondsRemaining, q.TimeLimit),
	}
}

func (e *Engine) timeBonus(secondsRemaining float64, limitSeconds int) int {
	if limitSeconds <= 0 || math.IsNaN(secondsRemaining) {
		return 0
	}

	limit := float64(limitSeconds)
	if secondsRemaining > limit {
		secondsRemaining = limit
	}
	if secondsRemaining < 0 {
		secondsRemaining = 0
	}

	bonus := int(math.Floor(secondsRemaining / limit * float64(e.config.MaxTimeBonus)))
	return max(0, min(bonus, e.config.MaxTimeBonus))
}
