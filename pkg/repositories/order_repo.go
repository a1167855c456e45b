package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/database"
	"github.com/tripfund/payment-backend/pkg/models"
	"github.com/tripfund/payment-backend/pkg/utils"
)

// OrderRepository is the order ledger.
type OrderRepository interface {
	// Insert stores a new order. It returns ErrDuplicateOrderID if the order id already exists.
	Insert(ctx context.Context, order models.Order) error
	// FindByOrderID returns ErrNotFound when no order carries the id.
	FindByOrderID(ctx context.Context, orderID string) (models.Order, error)
	// UpdateStatus moves the order from one status to another only if it is still in `from`.
	// swapped is false when the order was absent or no longer in `from`.
	UpdateStatus(ctx context.Context, orderID string, from, to pkg.PaymentStatus, paymentID string, at time.Time) (swapped bool, err error)
	// ClaimEventPublish stamps a paid order's event as published if no caller has yet.
	// Only the caller that gets claimed=true publishes.
	ClaimEventPublish(ctx context.Context, orderID string, at time.Time) (claimed bool, err error)
	// ReleaseEventPublish clears the stamp after a failed publish so a later confirmation retries it.
	ReleaseEventPublish(ctx context.Context, orderID string) error
}

type OrderRepositoryImpl struct {
	db     database.DBTX
	aesKey []byte
}

// NewOrderRepository expects the primary pool so status reads never hit a lagging replica.
// Contact email and phone are encrypted at rest with aesKey.
func NewOrderRepository(db database.DBTX, aesKey []byte) OrderRepository {
	return &OrderRepositoryImpl{db: db, aesKey: aesKey}
}

func (o *OrderRepositoryImpl) Insert(ctx context.Context, order models.Order) error {
	email, err := utils.EncryptString(order.Contact.Email, o.aesKey)
	if err != nil {
		return fmt.Errorf("encrypt contact email: %w", err)
	}
	phone, err := utils.EncryptString(order.Contact.Phone, o.aesKey)
	if err != nil {
		return fmt.Errorf("encrypt contact phone: %w", err)
	}

	tag, err := o.db.Exec(ctx, `
		INSERT INTO orders (order_id, purpose, package_name, amount, currency, contact_name, contact_email, contact_phone, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (order_id) DO NOTHING`,
		order.OrderID,
		string(order.Purpose),
		order.PackageName,
		order.Amount,
		order.Currency,
		order.Contact.Name,
		email,
		phone,
		string(pkg.PaymentStatusPending),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateOrderID
	}
	return nil
}

func (o *OrderRepositoryImpl) FindByOrderID(ctx context.Context, orderID string) (models.Order, error) {
	var (
		order   models.Order
		purpose string
		status  string
	)
	err := o.db.QueryRow(ctx, `
		SELECT id, order_id, purpose, COALESCE(package_name, ''), amount, currency,
		       COALESCE(contact_name, ''), COALESCE(contact_email, ''), COALESCE(contact_phone, ''),
		       payment_status, COALESCE(payment_id, ''), created_at, updated_at, paid_at, event_published_at
		FROM orders WHERE order_id = $1`,
		orderID,
	).Scan(
		&order.ID,
		&order.OrderID,
		&purpose,
		&order.PackageName,
		&order.Amount,
		&order.Currency,
		&order.Contact.Name,
		&order.Contact.Email,
		&order.Contact.Phone,
		&status,
		&order.PaymentID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.PaidAt,
		&order.EventPublishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	order.Purpose = pkg.OrderPurpose(purpose)
	order.PaymentStatus = pkg.PaymentStatus(status)

	if order.Contact.Email, err = utils.DecryptString(order.Contact.Email, o.aesKey); err != nil {
		return models.Order{}, fmt.Errorf("decrypt contact email: %w", err)
	}
	if order.Contact.Phone, err = utils.DecryptString(order.Contact.Phone, o.aesKey); err != nil {
		return models.Order{}, fmt.Errorf("decrypt contact phone: %w", err)
	}
	return order, nil
}

func (o *OrderRepositoryImpl) UpdateStatus(ctx context.Context, orderID string, from, to pkg.PaymentStatus, paymentID string, at time.Time) (bool, error) {
	tag, err := o.db.Exec(ctx, `
		UPDATE orders SET payment_status = $1, payment_id = $2, paid_at = $3, updated_at = $3
		WHERE order_id = $4 AND payment_status = $5`,
		string(to), paymentID, at, orderID, string(from))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (o *OrderRepositoryImpl) ClaimEventPublish(ctx context.Context, orderID string, at time.Time) (bool, error) {
	tag, err := o.db.Exec(ctx, `
		UPDATE orders SET event_published_at = $1
		WHERE order_id = $2 AND payment_status = $3 AND event_published_at IS NULL`,
		at, orderID, string(pkg.PaymentStatusPaid))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (o *OrderRepositoryImpl) ReleaseEventPublish(ctx context.Context, orderID string) error {
	_, err := o.db.Exec(ctx, `UPDATE orders SET event_published_at = NULL WHERE order_id = $1`, orderID)
	return err
}
