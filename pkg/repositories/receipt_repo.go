package repositories

import (
	"context"

	"github.com/tripfund/payment-backend/pkg/database"
	"github.com/tripfund/payment-backend/pkg/models"
)

type ReceiptRepository interface {
	// Insert records a receipt once per order. inserted is false when the order already has one.
	Insert(ctx context.Context, receipt models.PaymentReceipt) (inserted bool, err error)
}

type ReceiptRepositoryImpl struct {
	db database.DBTX
}

func NewReceiptRepository(db database.DBTX) ReceiptRepository {
	return &ReceiptRepositoryImpl{db: db}
}

func (r *ReceiptRepositoryImpl) Insert(ctx context.Context, receipt models.PaymentReceipt) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO payment_receipts (id, order_id, payment_id, amount, currency, purpose, paid_at, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id) DO NOTHING`,
		receipt.ID,
		receipt.OrderID,
		receipt.PaymentID,
		receipt.Amount,
		receipt.Currency,
		string(receipt.Purpose),
		receipt.PaidAt,
		receipt.RecordedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
