package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

const (
	msgInvalidCardNumber   = "Invalid card number"
	msgInvalidNameOnCard   = "Invalid name on card"
	msgInvalidExpiry       = "Invalid or expired card"
	msgInvalidSecurityCode = "Invalid security code"
)

var (
	cardNumberPattern   = regexp.MustCompile(`^[0-9]{13,19}$`)
	securityCodePattern = regexp.MustCompile(`^[0-9]{3,4}$`)
	expiryPattern       = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	nameOnCardPattern   = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// ValidationResult lists every failed rule in a fixed order: card number,
// name, expiry, security code.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

type CardValidator struct {
	now func() time.Time
}

// NewCardValidator uses now only to decide whether an expiry is in the past.
func NewCardValidator(now func() time.Time) *CardValidator {
	if now == nil {
		now = time.Now
	}
	return &CardValidator{now: now}
}

func (v *CardValidator) Validate(cardNumber, nameOnCard, expiry, securityCode string) ValidationResult {
	var errs []string

	if !IsValidCardNumber(cardNumber) {
		errs = append(errs, msgInvalidCardNumber)
	}
	if !IsValidNameOnCard(nameOnCard) {
		errs = append(errs, msgInvalidNameOnCard)
	}
	if !IsValidExpiry(expiry, v.now()) {
		errs = append(errs, msgInvalidExpiry)
	}
	if !IsValidSecurityCode(securityCode) {
		errs = append(errs, msgInvalidSecurityCode)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// CleanCardNumber strips all whitespace.
func CleanCardNumber(cardNumber string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cardNumber)
}

func IsValidCardNumber(cardNumber string) bool {
	clean := CleanCardNumber(cardNumber)
	if !cardNumberPattern.MatchString(clean) {
		return false
	}
	return ValidateLuhnChecksum(clean)
}

// ValidateLuhnChecksum validates a digit string using the Luhn algorithm
func ValidateLuhnChecksum(cardNumber string) bool {
	if cardNumber == "" {
		return false
	}

	sum := 0
	double := false
	for i := len(cardNumber) - 1; i >= 0; i-- {
		c := cardNumber[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	return sum%10 == 0
}

func IsValidSecurityCode(code string) bool {
	return securityCodePattern.MatchString(code)
}

// IsValidExpiry accepts MM/YY cards through the last day of their expiry
// month.
func IsValidExpiry(expiry string, now time.Time) bool {
	m := expiryPattern.FindStringSubmatch(expiry)
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	yy, _ := strconv.Atoi(m[2])
	year := 2000 + yy

	if year != now.Year() {
		return year > now.Year()
	}
	return time.Month(month) >= now.Month()
}

func IsValidNameOnCard(name string) bool {
	trimmed := strings.TrimSpace(name)
	return len(trimmed) >= 2 && nameOnCardPattern.MatchString(trimmed)
}

// DetectCardBrand infers the brand from the leading digit.
func DetectCardBrand(cardNumber string) models.CardBrand {
	clean := CleanCardNumber(cardNumber)
	if clean == "" {
		return models.CardBrandOther
	}

	switch clean[0] {
	case '4':
		return models.CardBrandVisa
	case '5':
		return models.CardBrandMastercard
	case '3':
		return models.CardBrandAmex
	case '6':
		return models.CardBrandDiscover
	default:
		return models.CardBrandOther
	}
}

// NewCardInfo keeps only what may be stored: last four, brand, name, expiry.
func NewCardInfo(in models.CardInput) models.CardInfo {
	clean := CleanCardNumber(in.Number)
	last4 := clean
	if len(clean) > 4 {
		last4 = clean[len(clean)-4:]
	}

	return models.CardInfo{
		LastFour:   last4,
		Brand:      DetectCardBrand(clean),
		NameOnCard: strings.TrimSpace(in.NameOnCard),
		Expiry:     in.Expiry,
	}
}
