package service

import (
	"context"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

// PaymentStore is the persistence port for the Payment aggregate. Find*
// methods return (nil, nil) when nothing matches. Save reports a violated
// uniqueness constraint as an apperr.Duplicate error.
type PaymentStore interface {
	Save(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByUser(ctx context.Context, userID int64) ([]*models.Payment, error)
	FindByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.Payment, error)
	FindCompleted(ctx context.Context, userID, itemID int64) (*models.Payment, error)
}

type ReceiptStore interface {
	Save(ctx context.Context, receipt *models.Receipt) error
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Receipt, error)
	FindByNumber(ctx context.Context, number string) (*models.Receipt, error)
	FindByUser(ctx context.Context, userID int64) ([]*models.Receipt, error)
}

// CompletedPaymentCache remembers which (user, item) pairs already have a
// COMPLETED payment. It is an accelerator only; the PaymentStore stays
// authoritative.
type CompletedPaymentCache interface {
	Lookup(ctx context.Context, userID, itemID int64) (paymentID string, ok bool, err error)
	Remember(ctx context.Context, userID, itemID int64, paymentID string) error
	Forget(ctx context.Context, userID, itemID int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payment *models.Payment) error
}
