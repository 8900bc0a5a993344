package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is issued once per COMPLETED payment and never changes afterwards.
type Receipt struct {
	ID                   string          `json:"id" db:"id"`
	PaymentID            string          `json:"payment_id" db:"payment_id"`
	UserID               int64           `json:"user_id" db:"user_id"`
	ReceiptNumber        string          `json:"receipt_number" db:"receipt_number"`
	CustomerName         string          `json:"customer_name" db:"customer_name"`
	CustomerAddress      string          `json:"customer_address" db:"customer_address"`
	ItemID               int64           `json:"item_id" db:"item_id"`
	ItemCost             decimal.Decimal `json:"item_cost" db:"item_cost"`
	ShippingCost         decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	TaxAmount            decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	TotalPaid            decimal.Decimal `json:"total_paid" db:"total_paid"`
	PaymentMethod        CardBrand       `json:"payment_method" db:"payment_method"`
	ShippingEstimateDays int             `json:"shipping_estimate_days" db:"shipping_estimate_days"`
	ReceiptDate          time.Time       `json:"receipt_date" db:"receipt_date"`
}
