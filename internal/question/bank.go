package question

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyBank is returned when a bank is built from zero questions.
var ErrEmptyBank = errors.New("question bank is empty")

// ValidationError describes a malformed question found while loading a bank.
type ValidationError struct {
	Index   int
	ID      string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %d (%q): %s: %s", e.Index, e.ID, e.Field, e.Message)
}

// Bank is an ordered, read-only sequence of validated questions.
type Bank struct {
	questions []Question
}

// NewBank validates questions and returns a bank holding a private copy of them.
func NewBank(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyBank
	}

	seen := make(map[string]int, len(questions))
	copied := make([]Question, len(questions))
	for i, q := range questions {
		if err := validate(i, q); err != nil {
			return nil, err
		}
		if prev, dup := seen[q.ID]; dup {
			return nil, &ValidationError{Index: i, ID: q.ID, Field: "id", Message: fmt.Sprintf("duplicate of question %d", prev)}
		}
		seen[q.ID] = i

		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		q.Options = opts
		copied[i] = q
	}
	return &Bank{questions: copied}, nil
}

// MustBank is NewBank for static data known to be valid.
func MustBank(questions []Question) *Bank {
	b, err := NewBank(questions)
	if err != nil {
		panic(fmt.Sprintf("question: invalid static bank: %v", err))
	}
	return b
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// At returns the question at index i.
func (b *Bank) At(i int) (Question, bool) {
	if i < 0 || i >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[i], true
}

// Questions returns a copy of the bank contents.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

func validate(i int, q Question) error {
	switch {
	case strings.TrimSpace(q.ID) == "":
		return &ValidationError{Index: i, ID: q.ID, Field: "id", Message: "must not be empty"}
	case strings.TrimSpace(q.Prompt) == "":
		return &ValidationError{Index: i, ID: q.ID, Field: "prompt", Message: "must not be empty"}
	case len(q.Options) != OptionCount:
		return &ValidationError{Index: i, ID: q.ID, Field: "options", Message: fmt.Sprintf("need exactly %d options, got %d", OptionCount, len(q.Options))}
	case q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options):
		return &ValidationError{Index: i, ID: q.ID, Field: "correct_answer", Message: fmt.Sprintf("index %d out of range", q.CorrectAnswer)}
	case q.TimeLimit <= 0:
		return &ValidationError{Index: i, ID: q.ID, Field: "time_limit", Message: "must be a positive number of seconds"}
	case q.Points < 0:
		return &ValidationError{Index: i, ID: q.ID, Field: "points", Message: "must not be negative"}
	}
	return nil
}
