package service

import (
	"github.com/shopspring/decimal"

	"github.com/CASH-ECOMM/payment-service/internal/apperr"
	"github.com/CASH-ECOMM/payment-service/internal/models"
)

const (
	moneyScale      = 2
	maxStreetNumber = 999999
)

// MoneyConfig is fixed at construction.
type MoneyConfig struct {
	TaxRate            decimal.Decimal
	ExpeditedSurcharge decimal.Decimal
}

// Amounts are all rounded to cents.
type Amounts struct {
	ItemCost     decimal.Decimal
	ShippingCost decimal.Decimal
	Subtotal     decimal.Decimal
	TaxAmount    decimal.Decimal
	TotalAmount  decimal.Decimal
}

type MoneyCalculator struct {
	cfg MoneyConfig
}

func NewMoneyCalculator(cfg MoneyConfig) (*MoneyCalculator, error) {
	if cfg.TaxRate.IsNegative() {
		return nil, apperr.New(apperr.DomainRange, "tax rate must not be negative")
	}
	if cfg.ExpeditedSurcharge.IsNegative() {
		return nil, apperr.New(apperr.DomainRange, "expedited surcharge must not be negative")
	}
	return &MoneyCalculator{cfg: cfg}, nil
}

// RoundMoney rounds half away from zero to cents, which is half-up for the
// non-negative amounts handled here.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

// Calculate rounds after every step: shipping, subtotal, tax, total.
// Rounding only the final sum gives different cents at boundaries.
func (c *MoneyCalculator) Calculate(itemCost, shippingBase decimal.Decimal, shippingType models.ShippingType) (Amounts, error) {
	if itemCost.IsNegative() {
		return Amounts{}, apperr.New(apperr.DomainRange, "Item cost must not be negative")
	}
	if shippingBase.IsNegative() {
		return Amounts{}, apperr.New(apperr.DomainRange, "Shipping cost must not be negative")
	}
	if !shippingType.Valid() {
		return Amounts{}, apperr.Newf(apperr.DomainRange, "Unknown shipping type %q", shippingType)
	}

	item := RoundMoney(itemCost)

	shipping := shippingBase
	if shippingType == models.ShippingTypeExpedited {
		shipping = shipping.Add(c.cfg.ExpeditedSurcharge)
	}
	shipping = RoundMoney(shipping)

	subtotal := RoundMoney(item.Add(shipping))
	tax := RoundMoney(subtotal.Mul(c.cfg.TaxRate))
	total := RoundMoney(subtotal.Add(tax))

	return Amounts{
		ItemCost:     item,
		ShippingCost: shipping,
		Subtotal:     subtotal,
		TaxAmount:    tax,
		TotalAmount:  total,
	}, nil
}

// ValidateStreetNumber rejects street numbers outside 1..999999.
func ValidateStreetNumber(n int) error {
	if n <= 0 || n > maxStreetNumber {
		return apperr.Newf(apperr.DomainRange, "Street number must be between 1 and %d", maxStreetNumber)
	}
	return nil
}
