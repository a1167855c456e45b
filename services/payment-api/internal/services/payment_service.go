package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/models"
	"github.com/tripfund/payment-backend/pkg/razorpay"
	"github.com/tripfund/payment-backend/pkg/repositories"
	"github.com/tripfund/payment-backend/pkg/views"
	"github.com/tripfund/payment-backend/services/payment-api/internal/observability"
	"go.uber.org/zap"
)

// VerificationResult is the outcome of a payment confirmation. Expected failures are results, not errors.
type VerificationResult string

const (
	Verified          VerificationResult = "Verified"
	AlreadyVerified   VerificationResult = "AlreadyVerified"
	SignatureMismatch VerificationResult = "SignatureMismatch"
	UnknownOrder      VerificationResult = "UnknownOrder"
)

const idempotencyScopeCreateOrder = "create-order"

// GatewayClient mints remote orders. Implemented by *razorpay.Client.
type GatewayClient interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (razorpay.Order, error)
}

// SignatureVerifier is implemented by *razorpay.Signer.
type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

// IdempotencyStore is implemented by *cache.IdempotencyStore.
type IdempotencyStore interface {
	Reserve(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
}

type PaymentService interface {
	CreateOrder(ctx context.Context, traceID string, in CreateOrderInput) (models.Order, error)
	VerifyPayment(ctx context.Context, traceID, orderID, paymentID, signature string) (VerificationResult, error)
	GetOrder(ctx context.Context, traceID, orderID string) (models.Order, error)
}

type CreateOrderInput struct {
	Amount         int64 // minor units
	Currency       string
	Purpose        pkg.OrderPurpose
	PackageName    string
	Contact        models.Contact
	IdempotencyKey string
}

// PaymentServiceConfig holds the dependencies of the payment service. Idempotency and Now are optional.
type PaymentServiceConfig struct {
	Logger      *zap.Logger
	Gateway     GatewayClient
	Verifier    SignatureVerifier
	OrderRepo   repositories.OrderRepository
	Publisher   EventPublisher
	Idempotency IdempotencyStore
	Currencies  []string
	Now         func() time.Time
}

type PaymentServiceImpl struct {
	cfg PaymentServiceConfig
}

func NewPaymentService(cfg PaymentServiceConfig) PaymentService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.Currencies) == 0 {
		cfg.Currencies = []string{"INR"}
	}
	return &PaymentServiceImpl{cfg: cfg}
}

func (s *PaymentServiceImpl) CreateOrder(ctx context.Context, traceID string, in CreateOrderInput) (models.Order, error) {
	logger := s.cfg.Logger.With(zap.String(pkg.TraceId, traceID))

	if in.Amount <= 0 {
		return models.Order{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "amount must be a positive number of minor units", nil)
	}
	in.Currency = strings.ToUpper(in.Currency)
	if !slices.Contains(s.cfg.Currencies, in.Currency) {
		return models.Order{}, pkg.NewAppError(pkg.ErrInvalidInputCode, fmt.Sprintf("unsupported currency %q", in.Currency), nil)
	}
	if in.Purpose != pkg.OrderPurposeTravel && in.Purpose != pkg.OrderPurposeDonation {
		return models.Order{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "purpose must be travel or donation", nil)
	}

	reserved := false
	if in.IdempotencyKey != "" && s.cfg.Idempotency != nil {
		ok, err := s.cfg.Idempotency.Reserve(ctx, idempotencyScopeCreateOrder, in.IdempotencyKey)
		if err != nil {
			return models.Order{}, pkg.NewAppError(pkg.ErrServerCode, "idempotency check failed", err)
		}
		if !ok {
			observability.OrderCreateFailures.WithLabelValues("idempotency_replay").Inc()
			return models.Order{}, pkg.NewAppError(pkg.ErrIdempotencyConflictCode, "request with this Idempotency-Key was already processed", nil)
		}
		reserved = true
	}

	start := time.Now()
	remote, err := s.cfg.Gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   in.Amount,
		Currency: in.Currency,
		Receipt:  "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20],
		Notes:    map[string]string{"purpose": string(in.Purpose)},
	})
	observability.GatewayLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.OrderCreateFailures.WithLabelValues("gateway").Inc()
		if reserved {
			// nothing was written; let the client retry with the same key
			if rerr := s.cfg.Idempotency.Release(ctx, idempotencyScopeCreateOrder, in.IdempotencyKey); rerr != nil {
				logger.Warn("idempotency_release_failed", zap.Error(rerr))
			}
		}
		return models.Order{}, pkg.NewAppError(pkg.ErrGatewayCode, "payment gateway could not create the order", err)
	}

	now := s.cfg.Now().UTC()
	order := models.Order{
		OrderID:       remote.ID,
		Purpose:       in.Purpose,
		PackageName:   in.PackageName,
		Amount:        in.Amount,
		Currency:      in.Currency,
		Contact:       in.Contact,
		PaymentStatus: pkg.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.cfg.OrderRepo.Insert(ctx, order); err != nil {
		observability.OrderCreateFailures.WithLabelValues("ledger").Inc()
		if errors.Is(err, repositories.ErrDuplicateOrderID) {
			logger.Error("gateway_reused_order_id", zap.String(pkg.OrderId, remote.ID))
			return models.Order{}, pkg.NewAppError(pkg.ErrDuplicateOrderIDCode, "order id already exists in ledger", err)
		}
		return models.Order{}, pkg.HandleSQLError(traceID, logger, err)
	}

	observability.OrdersCreated.WithLabelValues(string(in.Purpose), in.Currency).Inc()
	logger.Info("order_created",
		zap.String(pkg.OrderId, order.OrderID),
		zap.String("purpose", string(order.Purpose)),
		zap.Int64("amount", order.Amount),
		zap.String("currency", order.Currency))
	return order, nil
}

func (s *PaymentServiceImpl) VerifyPayment(ctx context.Context, traceID, orderID, paymentID, signature string) (VerificationResult, error) {
	logger := s.cfg.Logger.With(
		zap.String(pkg.TraceId, traceID),
		zap.String(pkg.OrderId, orderID),
		zap.String(pkg.PaymentId, paymentID))

	if !s.cfg.Verifier.Verify(orderID, paymentID, signature) {
		logger.Warn("payment_signature_mismatch")
		return s.result(SignatureMismatch), nil
	}

	order, err := s.cfg.OrderRepo.FindByOrderID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		logger.Warn("payment_for_unknown_order")
		return s.result(UnknownOrder), nil
	}
	if err != nil {
		return "", pkg.HandleSQLError(traceID, logger, err)
	}
	if order.IsPaid() {
		logger.Info("payment_already_verified")
		if order.EventPublishedAt == nil {
			// an earlier publish failed; the redelivered confirmation sends it again
			paidAt := s.cfg.Now().UTC()
			if order.PaidAt != nil {
				paidAt = *order.PaidAt
			}
			s.publishVerified(ctx, logger, order.ToPaymentEvent(order.PaymentID, paidAt, traceID))
		}
		return s.result(AlreadyVerified), nil
	}

	paidAt := s.cfg.Now().UTC()
	swapped, err := s.cfg.OrderRepo.UpdateStatus(ctx, orderID, pkg.PaymentStatusPending, pkg.PaymentStatusPaid, paymentID, paidAt)
	if err != nil {
		return "", pkg.HandleSQLError(traceID, logger, err)
	}
	if !swapped {
		// a concurrent confirmation won the transition
		logger.Info("payment_already_verified_concurrently")
		return s.result(AlreadyVerified), nil
	}

	logger.Info("payment_verified", zap.Int64("amount", order.Amount), zap.String("currency", order.Currency))
	s.publishVerified(ctx, logger, order.ToPaymentEvent(paymentID, paidAt, traceID))
	return s.result(Verified), nil
}

// publishVerified sends PaymentVerified at most once per successful hand-off. A failed publish
// leaves the order unstamped and the verification result unchanged.
func (s *PaymentServiceImpl) publishVerified(ctx context.Context, logger *zap.Logger, event views.PaymentEvent) {
	claimed, err := s.cfg.OrderRepo.ClaimEventPublish(ctx, event.OrderID, s.cfg.Now().UTC())
	if err != nil {
		logger.Error("payment_event_claim_failed", zap.Error(err))
		return
	}
	if !claimed {
		return
	}
	if err := s.cfg.Publisher.PublishPaymentVerified(ctx, event); err != nil {
		logger.Error("payment_event_publish_failed", zap.Error(err))
		if rerr := s.cfg.OrderRepo.ReleaseEventPublish(context.WithoutCancel(ctx), event.OrderID); rerr != nil {
			logger.Error("payment_event_release_failed", zap.Error(rerr))
		}
		return
	}
	logger.Info("payment_event_published", zap.String("event_id", event.EventID))
}

func (s *PaymentServiceImpl) GetOrder(ctx context.Context, traceID, orderID string) (models.Order, error) {
	order, err := s.cfg.OrderRepo.FindByOrderID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, pkg.NewAppError(pkg.ErrUnknownOrderCode, "order not found", err)
	}
	if err != nil {
		return models.Order{}, pkg.HandleSQLError(traceID, s.cfg.Logger, err)
	}
	return order, nil
}

func (s *PaymentServiceImpl) result(r VerificationResult) VerificationResult {
	observability.Verifications.WithLabelValues(string(r)).Inc()
	return r
}
