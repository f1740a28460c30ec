package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/store"
)

// FetchBatchCall records the arguments of one FetchBatch call.
type FetchBatchCall struct {
	UserID  uuid.UUID
	Limit   int
	Exclude []string
}

// MockQuestionStore implements store.QuestionStore for testing.
// It is safe for concurrent use.
type MockQuestionStore struct {
	FetchBatchFn func(ctx context.Context, userID uuid.UUID, limit int, exclude []string) ([]domain.QuestionRecord, int, error)
	UpsertFn     func(ctx context.Context, userID uuid.UUID, questions []domain.ScheduledQuestion) (int, error)
	CountFn      func(ctx context.Context, userID uuid.UUID) (int, error)

	// Default values used when functions aren't explicitly defined
	Records []domain.QuestionRecord
	Total   int
	Err     error

	mu    sync.Mutex
	calls []FetchBatchCall
}

var _ store.QuestionStore = (*MockQuestionStore)(nil)

// FetchBatch implements the store.QuestionStore interface
func (m *MockQuestionStore) FetchBatch(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
	exclude []string,
) ([]domain.QuestionRecord, int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, FetchBatchCall{
		UserID:  userID,
		Limit:   limit,
		Exclude: append([]string(nil), exclude...),
	})
	m.mu.Unlock()

	if m.FetchBatchFn != nil {
		return m.FetchBatchFn(ctx, userID, limit, exclude)
	}
	return m.Records, m.Total, m.Err
}

// Upsert implements the store.QuestionStore interface
func (m *MockQuestionStore) Upsert(
	ctx context.Context,
	userID uuid.UUID,
	questions []domain.ScheduledQuestion,
) (int, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, userID, questions)
	}
	return len(questions), m.Err
}

// Count implements the store.QuestionStore interface
func (m *MockQuestionStore) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, userID)
	}
	return m.Total, m.Err
}

// FetchBatchCalls returns a copy of the recorded FetchBatch calls.
func (m *MockQuestionStore) FetchBatchCalls() []FetchBatchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FetchBatchCall(nil), m.calls...)
}
