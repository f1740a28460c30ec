package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
)

// QuestionStore defines persistence for a user's scheduled review questions.
type QuestionStore interface {
	// FetchBatch returns up to limit questions for the user, skipping any word
	// in exclude. Questions are ordered by source priority (due practice
	// first, words not due yet last), then by due time, then by word.
	//
	// The second return value is the number of candidates not in exclude,
	// including the ones returned, so callers can tell whether more remain.
	FetchBatch(ctx context.Context, userID uuid.UUID, limit int, exclude []string) ([]domain.QuestionRecord, int, error)

	// Upsert inserts or replaces questions keyed by (user, word) and returns
	// the number of rows written. All rows are validated first; an invalid
	// row fails the whole call with ErrInvalidEntity and nothing is written.
	Upsert(ctx context.Context, userID uuid.UUID, questions []domain.ScheduledQuestion) (int, error)

	// Count returns the number of questions stored for the user.
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

// ValidateQuestions reports the first invalid row as ErrInvalidEntity.
func ValidateQuestions(questions []domain.ScheduledQuestion) error {
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return NewStoreError("question", "upsert",
				fmt.Sprintf("invalid question at index %d", i),
				errors.Join(ErrInvalidEntity, err))
		}
	}
	return nil
}

// SourceOrderSQL is an ORDER BY expression ranking the source column by
// delivery priority. Unknown values sort last.
var SourceOrderSQL = func() string {
	expr := "CASE source"
	for _, s := range domain.AllSources {
		expr += fmt.Sprintf(" WHEN '%s' THEN %d", s, s.Rank())
	}
	return expr + fmt.Sprintf(" ELSE %d END", len(domain.AllSources))
}()
