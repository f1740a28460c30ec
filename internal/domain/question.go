package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Question-specific validation errors
var (
	// ErrWordEmpty is returned when a question record has no word.
	ErrWordEmpty = errors.New("question word cannot be empty")

	// ErrInvalidSource is returned when a question record carries an unknown source tag.
	ErrInvalidSource = errors.New("invalid question source")

	// ErrQuestionInvalid is returned when the question payload is not valid JSON.
	ErrQuestionInvalid = errors.New("question payload must be valid JSON")
)

// Source tags why a word was selected for review. It is a priority class
// decided by the backend and carried through the queue untouched.
type Source string

// Possible source values
const (
	SourceNew             Source = "new"
	SourceTestPractice    Source = "test_practice"
	SourceNonTestPractice Source = "non_test_practice"
	SourceNotDueYet       Source = "not_due_yet"
)

// AllSources lists every valid source in delivery priority order.
var AllSources = []Source{
	SourceTestPractice,
	SourceNonTestPractice,
	SourceNew,
	SourceNotDueYet,
}

// ParseSource converts a raw string into a Source, accepting surrounding
// whitespace and any letter case.
func ParseSource(raw string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, raw)
	}
	return s, nil
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	return s.Rank() >= 0
}

// Rank returns the delivery priority of the source, lower first.
// Unknown sources rank -1.
func (s Source) Rank() int {
	for i, known := range AllSources {
		if s == known {
			return i
		}
	}
	return -1
}

// QuestionRecord is one pending review item. Word is the natural unique key
// within a queue; Question is an opaque payload (prompt, choices and so on)
// that the queue never interprets.
type QuestionRecord struct {
	Word     string          `json:"word"`
	Source   Source          `json:"source"`
	Question json.RawMessage `json:"question,omitempty"`
}

// Validate checks if the QuestionRecord has valid data.
func (r QuestionRecord) Validate() error {
	if strings.TrimSpace(r.Word) == "" {
		return ErrWordEmpty
	}

	if !r.Source.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, r.Source)
	}

	if len(r.Question) > 0 && !json.Valid(r.Question) {
		return ErrQuestionInvalid
	}

	return nil
}

// ScheduledQuestion is a stored review question for a user together with the
// moment it becomes due.
type ScheduledQuestion struct {
	QuestionRecord
	DueAt time.Time `json:"due_at"`
}

// Validate checks the embedded record and the due date.
func (q ScheduledQuestion) Validate() error {
	if err := q.QuestionRecord.Validate(); err != nil {
		return err
	}
	if q.DueAt.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrValidation)
	}
	return nil
}
