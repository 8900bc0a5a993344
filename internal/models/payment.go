// internal/models/payment.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type ShippingType string

const (
	ShippingTypeRegular   ShippingType = "REGULAR"
	ShippingTypeExpedited ShippingType = "EXPEDITED"
)

func (t ShippingType) Valid() bool {
	return t == ShippingTypeRegular || t == ShippingTypeExpedited
}

// Payment is the aggregate root of a checkout payment. Monetary fields are
// always non-negative and carry two decimal places.
type Payment struct {
	ID                    string          `json:"id" db:"id"`
	UserID                int64           `json:"user_id" db:"user_id"`
	ItemID                int64           `json:"item_id" db:"item_id"`
	ItemCost              decimal.Decimal `json:"item_cost" db:"item_cost"`
	ShippingCost          decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	ShippingType          ShippingType    `json:"shipping_type" db:"shipping_type"`
	EstimatedShippingDays int             `json:"estimated_shipping_days" db:"estimated_shipping_days"`
	TaxAmount             decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	TotalAmount           decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status                PaymentStatus   `json:"status" db:"status"`
	ErrorMessage          string          `json:"error_message,omitempty" db:"error_message"`
	TransactionReference  string          `json:"transaction_reference,omitempty" db:"transaction_reference"`
	Address               Address         `json:"address"`
	Card                  CardInfo        `json:"card"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// Clone returns a copy that shares no mutable state with p.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
