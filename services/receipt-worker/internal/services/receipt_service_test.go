package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/models"
	"github.com/tripfund/payment-backend/pkg/views"
	"go.uber.org/zap/zaptest"
)

type mockReceiptRepo struct {
	mock.Mock
}

func (m *mockReceiptRepo) Insert(ctx context.Context, receipt models.PaymentReceipt) (bool, error) {
	args := m.Called(ctx, receipt)
	return args.Bool(0), args.Error(1)
}

func paymentEvent(orderID string) views.PaymentEvent {
	return views.PaymentEvent{
		EventID:   "4b9f0a3e-5f6c-4a43-8f5e-2b7c9d1e0a11",
		EventType: views.EventPaymentVerified,
		OrderID:   orderID,
		PaymentID: "pay_123",
		Amount:    250050,
		Currency:  "INR",
		Purpose:   pkg.OrderPurposeDonation,
		PaidAt:    time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC),
	}
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestReceiptService(t *testing.T, repo *mockReceiptRepo, sleeper *sleepRecorder) ReceiptService {
	return NewReceiptService(ReceiptServiceConfig{
		Logger:      zaptest.NewLogger(t),
		Repo:        repo,
		MaxRetries:  3,
		BaseBackoff: 100 * time.Millisecond,
		MaxBackoff:  time.Second,
		Now:         func() time.Time { return time.Date(2026, 5, 2, 9, 31, 0, 0, time.UTC) },
		Sleep:       sleeper.sleep,
	})
}

func TestRecord_InsertsReceiptFromEvent(t *testing.T) {
	repo := &mockReceiptRepo{}
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(r models.PaymentReceipt) bool {
		return r.OrderID == "order_1" && r.PaymentID == "pay_123" && r.Amount == 250050 &&
			r.Purpose == pkg.OrderPurposeDonation && !r.RecordedAt.IsZero()
	})).Return(true, nil).Once()

	sleeper := &sleepRecorder{}
	require.NoError(t, newTestReceiptService(t, repo, sleeper).Record(context.Background(), paymentEvent("order_1")))
	assert.Empty(t, sleeper.delays)
	repo.AssertExpectations(t)
}

func TestRecord_RedeliveryIsNoop(t *testing.T) {
	repo := &mockReceiptRepo{}
	repo.On("Insert", mock.Anything, mock.Anything).Return(false, nil).Once()

	err := newTestReceiptService(t, repo, &sleepRecorder{}).Record(context.Background(), paymentEvent("order_1"))
	assert.NoError(t, err)
}

func TestRecord_RetriesTransientErrors(t *testing.T) {
	repo := &mockReceiptRepo{}
	repo.On("Insert", mock.Anything, mock.Anything).Return(false, errors.New("conn reset")).Twice()
	repo.On("Insert", mock.Anything, mock.Anything).Return(true, nil).Once()

	sleeper := &sleepRecorder{}
	require.NoError(t, newTestReceiptService(t, repo, sleeper).Record(context.Background(), paymentEvent("order_1")))
	require.Len(t, sleeper.delays, 2)
	for _, d := range sleeper.delays {
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, time.Second)
	}
	repo.AssertNumberOfCalls(t, "Insert", 3)
}

func TestRecord_GivesUpAfterMaxRetries(t *testing.T) {
	repo := &mockReceiptRepo{}
	repo.On("Insert", mock.Anything, mock.Anything).Return(false, errors.New("db down"))

	sleeper := &sleepRecorder{}
	err := newTestReceiptService(t, repo, sleeper).Record(context.Background(), paymentEvent("order_1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Contains(t, err.Error(), "db down")
	assert.Len(t, sleeper.delays, 2)
	repo.AssertNumberOfCalls(t, "Insert", 3)
}

func TestRecord_StopsWhenContextCancelled(t *testing.T) {
	repo := &mockReceiptRepo{}
	repo.On("Insert", mock.Anything, mock.Anything).Return(false, errors.New("db down"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewReceiptService(ReceiptServiceConfig{
		Logger:      zaptest.NewLogger(t),
		Repo:        repo,
		MaxRetries:  5,
		BaseBackoff: time.Hour,
		MaxBackoff:  time.Hour,
	})
	err := svc.Record(ctx, paymentEvent("order_1"))
	assert.ErrorIs(t, err, context.Canceled)
	repo.AssertNumberOfCalls(t, "Insert", 1)
}
