package payment

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
)

const (
	BrandVisa       = "Visa"
	BrandMastercard = "Mastercard"
	BrandAmex       = "American Express"
	BrandDiscover   = "Discover"
	BrandUnknown    = "Unknown"
)

const (
	FieldCardNumber     = "cardNumber"
	FieldExpiryDate     = "expiryDate"
	FieldCVV            = "cvv"
	FieldCardholderName = "cardholderName"
)

var validationOrder = []string{FieldCardNumber, FieldExpiryDate, FieldCVV, FieldCardholderName}

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCardNumber runs the Luhn checksum over the digits of raw.
func ValidCardNumber(raw string) bool {
	digits := DigitsOnly(raw)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
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

// ParseExpiry reads an MM/YY expiry into its month and four digit year.
func ParseExpiry(raw string) (month int, year int, ok bool) {
	mm, yy, found := strings.Cut(strings.TrimSpace(raw), "/")
	if !found || len(mm) != 2 || len(yy) != 2 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	shortYear, err := strconv.Atoi(yy)
	if err != nil || shortYear < 0 {
		return 0, 0, false
	}
	return month, 2000 + shortYear, true
}

// ValidExpiry reports whether raw names a month strictly after now's month.
func ValidExpiry(raw string, now time.Time) bool {
	month, year, ok := ParseExpiry(raw)
	if !ok {
		return false
	}
	now = now.UTC()
	if year != now.Year() {
		return year > now.Year()
	}
	return month > int(now.Month())
}

func ValidCVV(raw string) bool {
	raw = strings.TrimSpace(raw)
	if len(raw) < 3 || len(raw) > 4 {
		return false
	}
	return DigitsOnly(raw) == raw
}

func DetectBrand(cardNumber string) string {
	digits := DigitsOnly(cardNumber)
	if digits == "" {
		return BrandUnknown
	}
	switch digits[0] {
	case '4':
		return BrandVisa
	case '5', '2':
		return BrandMastercard
	case '3':
		return BrandAmex
	case '6':
		return BrandDiscover
	default:
		return BrandUnknown
	}
}

func Last4(cardNumber string) string {
	digits := DigitsOnly(cardNumber)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// ValidateMethod applies the card rules shared by every engine.
func ValidateMethod(method core.PaymentMethod, now time.Time) core.ValidationResult {
	errs := map[string]string{}
	if !ValidCardNumber(method.CardNumber) {
		errs[FieldCardNumber] = "Invalid card number"
	}
	if _, _, ok := ParseExpiry(method.ExpiryDate); !ok {
		errs[FieldExpiryDate] = "Expiry date must be in MM/YY format"
	} else if !ValidExpiry(method.ExpiryDate, now) {
		errs[FieldExpiryDate] = "Card has expired"
	}
	if !ValidCVV(method.CVV) {
		errs[FieldCVV] = "CVV must be 3 or 4 digits"
	}
	if strings.TrimSpace(method.CardholderName) == "" {
		errs[FieldCardholderName] = "Cardholder name is required"
	}
	return core.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// FirstError returns the first failing field message in form order.
func FirstError(result core.ValidationResult) string {
	for _, field := range validationOrder {
		if msg, ok := result.Errors[field]; ok {
			return msg
		}
	}
	return ""
}
