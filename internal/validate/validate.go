// Package validate holds the pure input validation functions used by the
// dialogue engine and the collaborator services.
package validate

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

// DateLayout is the only accepted calendar format for ledger dates.
const DateLayout = "2006-01-02"

const maxCodeLen = 10

// Amount parses a user-entered monetary amount. Both "." and "," are
// accepted as the decimal separator. The result must be strictly positive.
func Amount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", domain.ErrValidation)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", domain.ErrValidation, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	return d, nil
}

// Rate parses a currency rate. Rates follow the same rules as amounts.
func Rate(s string) (decimal.Decimal, error) {
	return Amount(s)
}

// CurrencyCode canonicalizes a currency code: trimmed, upper-cased,
// 1-10 letters. Lookups and storage always use the canonical form.
func CurrencyCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" || len(code) > maxCodeLen {
		return "", fmt.Errorf("%w: currency code must be 1-%d characters", domain.ErrValidation, maxCodeLen)
	}
	for _, r := range code {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("%w: currency code %q must contain only letters", domain.ErrValidation, code)
		}
	}
	return code, nil
}

// Date parses a YYYY-MM-DD calendar date. Impossible dates (such as
// February 30) are rejected, never clamped.
func Date(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be in YYYY-MM-DD format", domain.ErrValidation)
	}
	return t, nil
}
