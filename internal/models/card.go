package models

type CardBrand string

const (
	CardBrandVisa       CardBrand = "VISA"
	CardBrandMastercard CardBrand = "MASTERCARD"
	CardBrandAmex       CardBrand = "AMEX"
	CardBrandDiscover   CardBrand = "DISCOVER"
	CardBrandOther      CardBrand = "OTHER"
)

// CardInfo is the stored view of a card. The full number and the security
// code are never kept.
type CardInfo struct {
	LastFour   string    `json:"last_four" db:"card_last_four"`
	Brand      CardBrand `json:"brand" db:"card_brand"`
	NameOnCard string    `json:"name_on_card" db:"name_on_card"`
	Expiry     string    `json:"expiry" db:"card_expiry"`
}

// Masked returns the display form of the card number.
func (c CardInfo) Masked() string {
	if c.LastFour == "" {
		return "****"
	}
	return "**** **** **** " + c.LastFour
}
