// Package review serves batches of review questions to prefetch queues.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
)

// Service answers batch requests for a user's review questions.
type Service interface {
	// GetBatch returns up to req.Count questions for the user, skipping the
	// words in req.Exclude, ordered by delivery priority.
	//
	// Returns ErrInvalidBatchRequest when the request fails validation and a
	// *ServiceError wrapping the store error when the lookup fails.
	GetBatch(ctx context.Context, userID uuid.UUID, req domain.BatchRequest) (*domain.BatchResponse, error)
}

// ErrInvalidBatchRequest indicates a count outside [1, MaxBatchSize] or an
// empty exclusion entry.
var ErrInvalidBatchRequest = errors.New("invalid batch request")

// ServiceError wraps errors from the review service with the failed operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "get_batch")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewGetBatchError returns a new ServiceError for the get_batch operation.
func NewGetBatchError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "get_batch",
		Message:   message,
		Err:       err,
	}
}
