package models

import "github.com/shopspring/decimal"

// PaymentRequest is the inbound payment submission.
type PaymentRequest struct {
	UserID   int64           `json:"user_id" binding:"required,gt=0"`
	ItemID   int64           `json:"item_id" binding:"required,gt=0"`
	ItemCost decimal.Decimal `json:"item_cost"`
	Shipping ShippingInfo    `json:"shipping"`
	Address  AddressInput    `json:"address"`
	Card     CardInput       `json:"card"`
}

type ShippingInfo struct {
	BaseCost      decimal.Decimal `json:"base_cost"`
	Type          ShippingType    `json:"type" binding:"required,oneof=REGULAR EXPEDITED"`
	EstimatedDays int             `json:"estimated_days"`
}

type AddressInput struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Street       string `json:"street" binding:"required"`
	StreetNumber int    `json:"street_number"`
	Province     string `json:"province" binding:"required"`
	Country      string `json:"country" binding:"required"`
	PostalCode   string `json:"postal_code" binding:"required"`
}

// CardInput carries raw card data. It must never be persisted or logged.
type CardInput struct {
	Number       string `json:"number"`
	NameOnCard   string `json:"name_on_card"`
	Expiry       string `json:"expiry"`
	SecurityCode string `json:"security_code"`
}
