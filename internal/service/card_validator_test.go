package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

func TestValidateLuhnChecksum(t *testing.T) {
	tests := []struct {
		name       string
		cardNumber string
		want       bool
	}{
		{
			name:       "Valid Visa",
			cardNumber: "4111111111111111",
			want:       true,
		},
		{
			name:       "Valid Mastercard",
			cardNumber: "5555555555554444",
			want:       true,
		},
		{
			name:       "Valid Amex",
			cardNumber: "378282246310005",
			want:       true,
		},
		{
			name:       "Off by one",
			cardNumber: "4111111111111112",
			want:       false,
		},
		{
			name:       "Non-digit",
			cardNumber: "41111111111a1111",
			want:       false,
		},
		{
			name:       "Empty string",
			cardNumber: "",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateLuhnChecksum(tt.cardNumber)
			if got != tt.want {
				t.Errorf("ValidateLuhnChecksum() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidCardNumber(t *testing.T) {
	tests := []struct {
		name       string
		cardNumber string
		want       bool
	}{
		{"spaces stripped", "4111 1111 1111 1111", true},
		{"too short", "411111111111", false},
		{"too long", "41111111111111111111", false},
		{"dashes rejected", "4111-1111-1111-1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCardNumber(tt.cardNumber); got != tt.want {
				t.Errorf("IsValidCardNumber(%q) = %v, want %v", tt.cardNumber, got, tt.want)
			}
		})
	}
}

func TestDetectCardBrand(t *testing.T) {
	tests := []struct {
		name       string
		cardNumber string
		want       models.CardBrand
	}{
		{"Visa", "4111111111111111", models.CardBrandVisa},
		{"Mastercard", "5555555555554444", models.CardBrandMastercard},
		{"Amex", "378282246310005", models.CardBrandAmex},
		{"Discover", "6011111111111117", models.CardBrandDiscover},
		{"Other", "9111111111111111", models.CardBrandOther},
		{"Empty", "", models.CardBrandOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCardBrand(tt.cardNumber); got != tt.want {
				t.Errorf("DetectCardBrand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidExpiry(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		expiry string
		want   bool
	}{
		{"06/26", true},  // current month
		{"05/26", false}, // previous month
		{"07/26", true},
		{"01/27", true},
		{"12/25", false},
		{"13/27", false},
		{"00/27", false},
		{"6/27", false},
		{"06-27", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.expiry, func(t *testing.T) {
			if got := IsValidExpiry(tt.expiry, now); got != tt.want {
				t.Errorf("IsValidExpiry(%q) = %v, want %v", tt.expiry, got, tt.want)
			}
		})
	}
}

func TestIsValidSecurityCode(t *testing.T) {
	assert.True(t, IsValidSecurityCode("123"))
	assert.True(t, IsValidSecurityCode("1234"))
	assert.False(t, IsValidSecurityCode("12"))
	assert.False(t, IsValidSecurityCode("12345"))
	assert.False(t, IsValidSecurityCode("12a"))
}

func TestIsValidNameOnCard(t *testing.T) {
	assert.True(t, IsValidNameOnCard("Jane Doe"))
	assert.True(t, IsValidNameOnCard("  Al  "))
	assert.False(t, IsValidNameOnCard("J"))
	assert.False(t, IsValidNameOnCard("Jane D0e"))
	assert.False(t, IsValidNameOnCard("O'Brien"))
	assert.False(t, IsValidNameOnCard(""))
}

func TestCardValidator_CollectsAllErrorsInOrder(t *testing.T) {
	v := NewCardValidator(func() time.Time {
		return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	})

	res := v.Validate("4111111111111112", "X", "01/20", "1")
	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"Invalid card number",
		"Invalid name on card",
		"Invalid or expired card",
		"Invalid security code",
	}, res.Errors)

	ok := v.Validate("4111 1111 1111 1111", "Jane Doe", "12/30", "123")
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Errors)
}

func TestNewCardInfo(t *testing.T) {
	info := NewCardInfo(models.CardInput{
		Number:       "5555 5555 5555 4444",
		NameOnCard:   " Jane Doe ",
		Expiry:       "12/30",
		SecurityCode: "123",
	})

	assert.Equal(t, "4444", info.LastFour)
	assert.Equal(t, models.CardBrandMastercard, info.Brand)
	assert.Equal(t, "Jane Doe", info.NameOnCard)
	assert.Equal(t, "**** **** **** 4444", info.Masked())
}
