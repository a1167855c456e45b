package services

import (
	"context"
	"errors"
	"time"

	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/models"
	"github.com/tripfund/payment-backend/pkg/repositories"
	"github.com/tripfund/payment-backend/pkg/utils"
	"github.com/tripfund/payment-backend/pkg/views"
	"github.com/tripfund/payment-backend/services/receipt-worker/internal/observability"
	"go.uber.org/zap"
)

var ErrRetriesExhausted = errors.New("receipt insert retries exhausted")

type ReceiptService interface {
	// Record stores a receipt for the event. Redelivered events are a no-op.
	Record(ctx context.Context, event views.PaymentEvent) error
}

type ReceiptServiceConfig struct {
	Logger      *zap.Logger
	Repo        repositories.ReceiptRepository
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Now         func() time.Time
	Sleep       func(ctx context.Context, d time.Duration) error
}

type ReceiptServiceImpl struct {
	cfg ReceiptServiceConfig
}

func NewReceiptService(cfg ReceiptServiceConfig) ReceiptService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepCtx
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	return &ReceiptServiceImpl{cfg: cfg}
}

func (s *ReceiptServiceImpl) Record(ctx context.Context, event views.PaymentEvent) error {
	logger := s.cfg.Logger.With(
		zap.String(pkg.TraceId, event.TraceID),
		zap.String(pkg.OrderId, event.OrderID),
	)
	receipt := models.ReceiptFromEvent(event)

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		receipt.RecordedAt = s.cfg.Now().UTC()
		inserted, err := s.cfg.Repo.Insert(ctx, receipt)
		if err == nil {
			if inserted {
				observability.ReceiptsRecorded.WithLabelValues("recorded").Inc()
				logger.Info("receipt_recorded", zap.String(pkg.PaymentId, event.PaymentID), zap.Int64("amount", event.Amount))
			} else {
				observability.ReceiptsRecorded.WithLabelValues("duplicate").Inc()
				logger.Info("receipt_already_recorded")
			}
			return nil
		}
		lastErr = err
		if attempt == s.cfg.MaxRetries {
			break
		}
		delay := utils.CalculateExponentialBackoffWithJitter(attempt, s.cfg.BaseBackoff, s.cfg.MaxBackoff)
		observability.ReceiptRetries.Inc()
		logger.Warn("receipt_insert_failed_retrying", zap.Int("attempt", attempt), zap.Duration("backoff", delay), zap.Error(err))
		if err := s.cfg.Sleep(ctx, delay); err != nil {
			return err
		}
	}
	logger.Error("receipt_insert_failed", zap.Int("attempts", s.cfg.MaxRetries), zap.Error(lastErr))
	return errors.Join(ErrRetriesExhausted, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
