package repositories

import (
	"context"

	"github.com/tripfund/payment-backend/pkg/database"
	"github.com/tripfund/payment-backend/pkg/models"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback models.Feedback) error
}

type FeedbackRepositoryImpl struct {
	db database.DBTX
}

func NewFeedbackRepository(db database.DBTX) FeedbackRepository {
	return &FeedbackRepositoryImpl{db: db}
}

func (f *FeedbackRepositoryImpl) Create(ctx context.Context, feedback models.Feedback) error {
	_, err := f.db.Exec(ctx, `INSERT INTO feedback (id, name, email, message, created_at) VALUES ($1, $2, $3, $4, $5)`,
		feedback.ID,
		feedback.Name,
		feedback.Email,
		feedback.Message,
		feedback.CreatedAt,
	)
	return err
}
