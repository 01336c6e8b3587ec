package question

import "time"

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// DefaultPoints is awarded for a correct answer when a question sets no point value.
const DefaultPoints = 100

// Question is an immutable multiple-choice record loaded into a Bank.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"` // server-side only
	TimeLimit     int      `json:"time_limit"`     // seconds
	Points        int      `json:"points,omitempty"`
}

// PointValue returns the configured points, falling back to DefaultPoints when unset.
func (q Question) PointValue() int {
	if q.Points == 0 {
		return DefaultPoints
	}
	return q.Points
}

// TimeLimitDuration converts the per-question limit into a time.Duration.
func (q Question) TimeLimitDuration() time.Duration {
	return time.Duration(q.TimeLimit) * time.Second
}

// ClientView is the payload safe to hand to a presentation layer.
type ClientView struct {
	Index     int      `json:"index"`
	ID        string   `json:"id"`
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"time_limit"`
	Points    int      `json:"points"`
}

// View strips the correct answer from q.
func (q Question) View(index int) ClientView {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return ClientView{
		Index:     index,
		ID:        q.ID,
		Prompt:    q.Prompt,
		Options:   opts,
		TimeLimit: q.TimeLimit,
		Points:    q.PointValue(),
	}
}
