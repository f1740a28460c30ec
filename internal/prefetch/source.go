package prefetch

import (
	"context"

	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
)

// QuestionSource supplies batches of review questions.
//
// FetchBatch returns up to count records whose words are not in exclude.
// Exclusion is best effort, fewer than count records may be returned, and the
// method must be safe to call repeatedly with overlapping exclusion lists.
// Any timeout is the source's responsibility.
type QuestionSource interface {
	FetchBatch(ctx context.Context, count int, exclude []string) (*domain.BatchResponse, error)
}

// SourceFunc adapts a function to the QuestionSource interface.
type SourceFunc func(ctx context.Context, count int, exclude []string) (*domain.BatchResponse, error)

// FetchBatch implements QuestionSource.
func (f SourceFunc) FetchBatch(ctx context.Context, count int, exclude []string) (*domain.BatchResponse, error) {
	return f(ctx, count, exclude)
}
