package source

import (
	"context"

	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/prefetch"
	"github.com/tianzhicdev/dogetionary-sub002/internal/service/review"
)

// ServiceSource fetches one user's batches from a review.Service.
type ServiceSource struct {
	svc    review.Service
	userID uuid.UUID
}

var _ prefetch.QuestionSource = (*ServiceSource)(nil)

// NewServiceSource creates a source bound to userID.
func NewServiceSource(svc review.Service, userID uuid.UUID) *ServiceSource {
	if svc == nil {
		panic("svc cannot be nil")
	}
	return &ServiceSource{svc: svc, userID: userID}
}

// FetchBatch implements prefetch.QuestionSource.
func (s *ServiceSource) FetchBatch(ctx context.Context, count int, exclude []string) (*domain.BatchResponse, error) {
	return s.svc.GetBatch(ctx, s.userID, domain.BatchRequest{
		Count:   clampCount(count),
		Exclude: exclude,
	})
}

// clampCount keeps queue requests inside the accepted batch range.
func clampCount(count int) int {
	switch {
	case count < 1:
		return 1
	case count > domain.MaxBatchSize:
		return domain.MaxBatchSize
	default:
		return count
	}
}
