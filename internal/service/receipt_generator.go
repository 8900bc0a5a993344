package service

import (
	"time"

	"github.com/CASH-ECOMM/payment-service/internal/apperr"
	"github.com/CASH-ECOMM/payment-service/internal/models"
)

type ReceiptGenerator struct {
	ids IDGenerator
	now func() time.Time
}

func NewReceiptGenerator(ids IDGenerator, now func() time.Time) *ReceiptGenerator {
	if now == nil {
		now = time.Now
	}
	return &ReceiptGenerator{ids: ids, now: now}
}

// Generate snapshots a COMPLETED payment into a receipt.
func (g *ReceiptGenerator) Generate(p *models.Payment) (*models.Receipt, error) {
	if p.Status != models.PaymentStatusCompleted {
		return nil, apperr.Newf(apperr.IllegalTransition, "receipt requires a completed payment, payment %s is %s", p.ID, p.Status)
	}

	at := g.now()
	return &models.Receipt{
		ID:                   g.ids.NewReceiptID(),
		PaymentID:            p.ID,
		UserID:               p.UserID,
		ReceiptNumber:        g.ids.NewReceiptNumber(at),
		CustomerName:         p.Address.FullName(),
		CustomerAddress:      p.Address.SingleLine(),
		ItemID:               p.ItemID,
		ItemCost:             RoundMoney(p.ItemCost),
		ShippingCost:         RoundMoney(p.ShippingCost),
		TaxAmount:            RoundMoney(p.TaxAmount),
		TotalPaid:            RoundMoney(p.TotalAmount),
		PaymentMethod:        p.Card.Brand,
		ShippingEstimateDays: p.EstimatedShippingDays,
		ReceiptDate:          at,
	}, nil
}
