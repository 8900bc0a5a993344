package models

import "fmt"

// PaymentResponse is returned for every processing attempt.
type PaymentResponse struct {
	Success              bool            `json:"success"`
	Message              string          `json:"message"`
	PaymentID            string          `json:"payment_id,omitempty"`
	Status               PaymentStatus   `json:"status,omitempty"`
	TransactionTimestamp string          `json:"transaction_timestamp"`
	Receipt              *ReceiptSummary `json:"receipt,omitempty"`
}

type ReceiptSummary struct {
	ReceiptID       string    `json:"receipt_id"`
	ReceiptNumber   string    `json:"receipt_number"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	ItemID          int64     `json:"item_id"`
	ItemCost        string    `json:"item_cost"`
	ShippingCost    string    `json:"shipping_cost"`
	TaxAmount       string    `json:"tax_amount"`
	TotalAmount     string    `json:"total_amount"`
	PaymentMethod   CardBrand `json:"payment_method"`
	ShippingMessage string    `json:"shipping_message"`
}

// NewReceiptSummary projects a receipt into its response form.
func NewReceiptSummary(r *Receipt) *ReceiptSummary {
	return &ReceiptSummary{
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		Name:            r.CustomerName,
		Address:         r.CustomerAddress,
		ItemID:          r.ItemID,
		ItemCost:        r.ItemCost.StringFixed(2),
		ShippingCost:    r.ShippingCost.StringFixed(2),
		TaxAmount:       r.TaxAmount.StringFixed(2),
		TotalAmount:     r.TotalPaid.StringFixed(2),
		PaymentMethod:   r.PaymentMethod,
		ShippingMessage: ShippingMessage(r.ShippingEstimateDays),
	}
}

func ShippingMessage(days int) string {
	return fmt.Sprintf("The item will be shipped in %d days", days)
}
