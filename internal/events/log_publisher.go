package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

// LogPublisher writes events to the service log. Used when no event store
// is configured.
type LogPublisher struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger, now: time.Now}
}

func (p *LogPublisher) Publish(ctx context.Context, eventType string, payment *models.Payment) error {
	e := NewEvent(eventType, payment, p.now())
	p.logger.Info("payment event",
		zap.String("event", e.Type),
		zap.String("payment_id", e.PaymentID),
		zap.Int64("user_id", e.UserID),
		zap.Int64("item_id", e.ItemID),
		zap.String("status", e.Status),
		zap.String("total_amount", e.TotalAmount),
	)
	return nil
}
