package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gokatarajesh/timed-trivia/internal/quiz"
)

const namespace = "trivia"

// Answer result label values.
const (
	ResultCorrect   = "correct"
	ResultIncorrect = "incorrect"
	ResultTimeout   = "timeout"
)

// Quiz records quiz activity as Prometheus collectors. It implements quiz.Recorder.
// A nil *Quiz is valid and records nothing.
type Quiz struct {
	started        prometheus.Counter
	completed      prometheus.Counter
	answers        *prometheus.CounterVec
	timeBonus      prometheus.Histogram
	finalScore     prometheus.Histogram
	activeSessions prometheus.Gauge
}

var _ quiz.Recorder = (*Quiz)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Quiz, error) {
	m := &Quiz{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_started_total",
			Help:      "Quiz runs started.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_completed_total",
			Help:      "Quiz runs that reached the last question.",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Recorded answers by result.",
		}, []string{"result"}),
		timeBonus: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "time_bonus_points",
			Help:      "Time bonus awarded per correct answer.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		finalScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score_points",
			Help:      "Total score of completed quiz runs.",
			Buckets:   prometheus.LinearBuckets(0, 100, 11),
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Connected quiz sessions.",
		}),
	}

	for _, c := range []prometheus.Collector{m.started, m.completed, m.answers, m.timeBonus, m.finalScore, m.activeSessions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// QuizStarted counts a new run.
func (m *Quiz) QuizStarted() {
	if m == nil {
		return
	}
	m.started.Inc()
}

// AnswerRecorded counts an answer and observes its bonus.
func (m *Quiz) AnswerRecorded(o quiz.Outcome) {
	if m == nil {
		return
	}
	switch {
	case o.TimedOut:
		m.answers.WithLabelValues(ResultTimeout).Inc()
	case o.IsCorrect:
		m.answers.WithLabelValues(ResultCorrect).Inc()
		m.timeBonus.Observe(float64(o.TimeBonus))
	default:
		m.answers.WithLabelValues(ResultIncorrect).Inc()
	}
}

// QuizCompleted counts a finished run and observes its total.
func (m *Quiz) QuizCompleted(p quiz.Player) {
	if m == nil {
		return
	}
	m.completed.Inc()
	m.finalScore.Observe(float64(p.TotalScore))
}

// SessionOpened tracks a newly connected session.
func (m *Quiz) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionClosed tracks a disconnected session.
func (m *Quiz) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}
