package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/platform/logger"
	"github.com/tianzhicdev/dogetionary-sub002/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	questions store.QuestionStore
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService creates a review Service backed by questions.
func NewService(questions store.QuestionStore, logger *slog.Logger) Service {
	if questions == nil {
		panic("questions cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{
		questions: questions,
		validate:  validator.New(),
		logger:    logger.With(slog.String("component", "review_service")),
	}
}

// GetBatch implements Service.GetBatch.
func (s *serviceImpl) GetBatch(
	ctx context.Context,
	userID uuid.UUID,
	req domain.BatchRequest,
) (*domain.BatchResponse, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validate.Struct(req); err != nil {
		log.Debug("rejected batch request",
			slog.String("user_id", userID.String()),
			slog.Int("count", req.Count),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatchRequest, err)
	}

	page, total, err := s.questions.FetchBatch(ctx, userID, req.Count, req.Exclude)
	if err != nil {
		log.Error("failed to fetch question batch",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewGetBatchError("failed to fetch questions", err)
	}
	if page == nil {
		page = []domain.QuestionRecord{}
	}

	resp := &domain.BatchResponse{
		Questions:      page,
		HasMore:        total > len(page),
		TotalAvailable: total,
	}

	log.Debug("served question batch",
		slog.String("user_id", userID.String()),
		slog.Int("requested", req.Count),
		slog.Int("excluded", len(req.Exclude)),
		slog.Int("returned", len(page)),
		slog.Int("total", total))
	return resp, nil
}
