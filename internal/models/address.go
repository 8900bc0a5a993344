package models

import "fmt"

// Address is the shipping address embedded in a Payment.
type Address struct {
	FirstName    string `json:"first_name" db:"first_name"`
	LastName     string `json:"last_name" db:"last_name"`
	Street       string `json:"street" db:"street"`
	StreetNumber int    `json:"street_number" db:"street_number"`
	Province     string `json:"province" db:"province"`
	Country      string `json:"country" db:"country"`
	PostalCode   string `json:"postal_code" db:"postal_code"`
}

// FullName joins first and last name with a single space.
func (a Address) FullName() string {
	return a.FirstName + " " + a.LastName
}

// SingleLine renders "12 Main St, Ontario, Canada, M5V 2T6".
func (a Address) SingleLine() string {
	return fmt.Sprintf("%d %s, %s, %s, %s",
		a.StreetNumber, a.Street, a.Province, a.Country, a.PostalCode)
}

// MultiLine renders the address as a three-line postal label.
func (a Address) MultiLine() string {
	return fmt.Sprintf("%s\n%d %s\n%s, %s %s",
		a.FullName(),
		a.StreetNumber, a.Street,
		a.Province, a.Country, a.PostalCode)
}
