package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/models"
	"github.com/tripfund/payment-backend/pkg/repositories"
	"go.uber.org/zap"
)

type FeedbackService interface {
	Submit(ctx context.Context, traceID, name, email, message string) (uuid.UUID, error)
}

type FeedbackServiceImpl struct {
	logger *zap.Logger
	repo   repositories.FeedbackRepository
}

func NewFeedbackService(logger *zap.Logger, repo repositories.FeedbackRepository) FeedbackService {
	return &FeedbackServiceImpl{logger: logger, repo: repo}
}

func (f *FeedbackServiceImpl) Submit(ctx context.Context, traceID, name, email, message string) (uuid.UUID, error) {
	fb := models.Feedback{
		ID:        uuid.New(),
		Name:      name,
		Email:     normalizeEmail(email),
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.repo.Create(ctx, fb); err != nil {
		return uuid.Nil, pkg.HandleSQLError(traceID, f.logger, err)
	}
	f.logger.Info("feedback_received", zap.String(pkg.TraceId, traceID), zap.String("feedback_id", fb.ID.String()))
	return fb.ID, nil
}
