// Package events publishes payment life-cycle events to an audit sink.
package events

import (
	"time"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

const (
	TypeProcessing = "payment.processing"
	TypeCompleted  = "payment.completed"
	TypeFailed     = "payment.failed"
	TypeRefunded   = "payment.refunded"
	TypeDuplicate  = "payment.duplicate"
)

// Event is the audit record of one persisted transition. It never carries
// card data beyond the last four digits.
type Event struct {
	Type                 string    `json:"type" bson:"type"`
	PaymentID            string    `json:"payment_id" bson:"payment_id"`
	UserID               int64     `json:"user_id" bson:"user_id"`
	ItemID               int64     `json:"item_id" bson:"item_id"`
	Status               string    `json:"status" bson:"status"`
	TotalAmount          string    `json:"total_amount" bson:"total_amount"`
	CardLastFour         string    `json:"card_last_four" bson:"card_last_four"`
	TransactionReference string    `json:"transaction_reference,omitempty" bson:"transaction_reference,omitempty"`
	ErrorMessage         string    `json:"error_message,omitempty" bson:"error_message,omitempty"`
	OccurredAt           time.Time `json:"occurred_at" bson:"occurred_at"`
}

func NewEvent(eventType string, p *models.Payment, at time.Time) Event {
	return Event{
		Type:                 eventType,
		PaymentID:            p.ID,
		UserID:               p.UserID,
		ItemID:               p.ItemID,
		Status:               string(p.Status),
		TotalAmount:          p.TotalAmount.StringFixed(2),
		CardLastFour:         p.Card.LastFour,
		TransactionReference: p.TransactionReference,
		ErrorMessage:         p.ErrorMessage,
		OccurredAt:           at.UTC(),
	}
}
