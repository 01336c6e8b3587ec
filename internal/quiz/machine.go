package quiz

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/timed-trivia/internal/question"
	"github.com/gokatarajesh/timed-trivia/internal/quiz/scoring"
	"github.com/gokatarajesh/timed-trivia/internal/quiz/timer"
)

// MachineOptions configures a Machine.
type MachineOptions struct {
	Clock    func() time.Time
	Scoring  scoring.Config
	Player   Player
	Recorder Recorder
	Logger   zerolog.Logger
}

// Machine is the quiz progression state machine. It owns the quiz State, the
// question Timer and the scoring Engine, and is mutated only through its
// transition methods. Invalid commands are ignored and reported as not applied.
//
// Machine is not safe for concurrent use; wrap it in a Controller to serialize
// input from several producers.
type Machine struct {
	bank     *question.Bank
	engine   *scoring.Engine
	timer    *timer.Timer
	recorder Recorder
	logger   zerolog.Logger

	phase    Phase
	state    State
	player   Player
	outcomes []Outcome
}

// NewMachine creates a machine in the NotStarted phase.
func NewMachine(bank *question.Bank, opts MachineOptions) *Machine {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	m := &Machine{
		bank:     bank,
		engine:   scoring.NewEngine(opts.Scoring),
		timer:    timer.New(opts.Clock),
		recorder: recorder,
		logger:   opts.Logger.With().Str("component", "quiz_machine").Logger(),
		player:   opts.Player.WithScores(0, 0),
	}
	m.state = initialState()
	m.phase = PhaseNotStarted
	return m
}

func initialState() State {
	return State{Answers: []int{}}
}

// Start begins the quiz at question 0. Starting a completed quiz plays it again;
// starting a quiz already in progress is ignored.
func (m *Machine) Start() bool {
	if m.phase.InProgress() {
		m.logger.Debug().Str("phase", string(m.phase)).Msg("start ignored")
		return false
	}

	m.resetValues()
	m.arm()
	m.recorder.QuizStarted()
	m.logger.Debug().Int("questions", m.bank.Len()).Msg("quiz started")
	return true
}

// SubmitAnswer answers the active question with selected.
func (m *Machine) SubmitAnswer(selected int) (Outcome, bool) {
	return m.Answer(m.state.CurrentQuestion, selected)
}

// Answer answers question questionIndex with selected. Only the first answer for
// a question is accepted; later calls for the same index are discarded.
func (m *Machine) Answer(questionIndex, selected int) (Outcome, bool) {
	if m.phase != PhaseAwaitingAnswer || questionIndex != m.state.CurrentQuestion {
		m.logger.Debug().
			Str("phase", string(m.phase)).
			Int("question_index", questionIndex).
			Int("current_question", m.state.CurrentQuestion).
			Msg("answer ignored")
		return Outcome{}, false
	}

	remaining := m.timer.Remaining().Seconds()
	return m.submit(selected, remaining), true
}

// Expire forces a no-answer submission for the run identified by epoch.
// Stale epochs, from questions already left behind, are discarded.
func (m *Machine) Expire(epoch uint64) (Outcome, bool) {
	if m.phase != PhaseAwaitingAnswer || epoch != m.timer.Epoch() {
		m.logger.Debug().Uint64("epoch", epoch).Uint64("current_epoch", m.timer.Epoch()).Msg("stale expiry discarded")
		return Outcome{}, false
	}
	return m.submit(scoring.NoAnswer, 0), true
}

// Tick refreshes the remaining time and reports an expiry the first time the
// active timer reaches zero. It never mutates answers; feed the Expiry back
// through Expire.
func (m *Machine) Tick() (Expiry, bool) {
	if m.phase != PhaseAwaitingAnswer {
		return Expiry{}, false
	}
	rem, expired := m.timer.Tick()
	m.state.TimeRemaining = rem.Seconds()
	if !expired {
		return Expiry{}, false
	}
	return Expiry{QuestionIndex: m.state.CurrentQuestion, Epoch: m.timer.Epoch()}, true
}

// Reset stops any active timer and returns to the initial NotStarted values.
func (m *Machine) Reset() {
	m.timer.Stop()
	m.resetValues()
	m.phase = PhaseNotStarted
	m.logger.Debug().Msg("quiz reset")
}

// Stop halts the timer without touching progress. Used when the owner goes away.
func (m *Machine) Stop() {
	m.timer.Stop()
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// CurrentQuestion returns the active question, if any.
func (m *Machine) CurrentQuestion() (question.Question, bool) {
	if !m.phase.InProgress() {
		return question.Question{}, false
	}
	return m.bank.At(m.state.CurrentQuestion)
}

// Outcomes returns the per-question results recorded so far.
func (m *Machine) Outcomes() []Outcome {
	out := make([]Outcome, len(m.outcomes))
	copy(out, m.outcomes)
	return out
}

// Snapshot returns a copy of the machine state for rendering.
func (m *Machine) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:         m.phase,
		State:         m.state.clone(),
		Player:        m.player,
		QuestionCount: m.bank.Len(),
		Epoch:         m.timer.Epoch(),
	}
	if m.phase == PhaseAwaitingAnswer {
		snap.State.TimeRemaining = m.timer.Remaining().Seconds()
	}
	if q, ok := m.CurrentQuestion(); ok {
		view := q.View(m.state.CurrentQuestion)
		if q.Points == 0 {
			view.Points = m.engine.Config().DefaultPoints
		}
		snap.Question = &view
	}
	return snap
}

func (m *Machine) submit(selected int, secondsLeft float64) Outcome {
	m.phase = PhaseAnswered
	m.timer.Stop()

	idx := m.state.CurrentQuestion
	q, _ := m.bank.At(idx)
	res := m.engine.Score(q, selected, secondsLeft)

	m.state.Answers = append(m.state.Answers, selected)
	m.state.Score += res.BaseScore
	m.state.TimeBonus += res.TimeBonus
	if res.IsCorrect {
		m.player = m.player.WithScores(m.state.Score, m.state.TimeBonus)
	}

	outcome := Outcome{
		QuestionIndex: idx,
		QuestionID:    q.ID,
		Selected:      selected,
		CorrectAnswer: q.CorrectAnswer,
		TimedOut:      selected == scoring.NoAnswer,
		SecondsLeft:   secondsLeft,
		Result:        res,
	}
	m.outcomes = append(m.outcomes, outcome)
	m.recorder.AnswerRecorded(outcome)

	m.logger.Debug().
		Int("question_index", idx).
		Int("selected", selected).
		Bool("correct", res.IsCorrect).
		Int("base_score", res.BaseScore).
		Int("time_bonus", res.TimeBonus).
		Msg("answer recorded")

	if len(m.state.Answers) == m.bank.Len() {
		m.complete()
	} else {
		m.state.CurrentQuestion++
		m.arm()
	}
	return outcome
}

func (m *Machine) complete() {
	m.phase = PhaseCompleted
	m.state.IsCompleted = true
	m.state.TimeRemaining = 0
	m.recorder.QuizCompleted(m.player)
	m.logger.Info().
		Str("player_id", m.player.ID).
		Int("score", m.player.Score).
		Int("time_bonus", m.player.TimeBonus).
		Int("total_score", m.player.TotalScore).
		Msg("quiz completed")
}

// arm starts the timer for the current question and enters AwaitingAnswer.
func (m *Machine) arm() {
	q, _ := m.bank.At(m.state.CurrentQuestion)
	m.timer.Start(q.TimeLimitDuration())
	m.state.TimeRemaining = float64(q.TimeLimit)
	m.phase = PhaseAwaitingAnswer
}

func (m *Machine) resetValues() {
	m.state = initialState()
	m.outcomes = nil
	m.player = m.player.WithScores(0, 0)
}
