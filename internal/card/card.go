package card

import (
	"errors"
	"strings"
	"time"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

var (
	ErrInvalidPAN      = errors.New("invalid card number")
	ErrInvalidExpiry   = errors.New("invalid expiry date")
	ErrCardExpired     = errors.New("card expired")
	ErrInvalidSecurity = errors.New("invalid security code")
	ErrMissingHolder   = errors.New("missing card holder name")
)

// Validate checks a card for syntactic well-formedness only. Whether the
// card exists is the issuer's business; a request failing here is
// rejected before any record is created.
func Validate(c types.CardData) error {
	if !ValidPAN(c.PAN) {
		return ErrInvalidPAN
	}
	if !digitsOnly(c.SecurityCode) || len(c.SecurityCode) < 3 || len(c.SecurityCode) > 4 {
		return ErrInvalidSecurity
	}
	if strings.TrimSpace(c.CardHolderName) == "" {
		return ErrMissingHolder
	}
	if _, err := ParseExpiry(c.ExpiryDate); err != nil {
		return err
	}
	return nil
}

// ValidPAN reports whether pan is a plausible card number: 13 to 19
// digits, nothing else.
func ValidPAN(pan string) bool {
	return digitsOnly(pan) && len(pan) >= 13 && len(pan) <= 19
}

// ParseExpiry parses an "MM/YY" expiry into the last instant of that
// month in UTC.
func ParseExpiry(expiry string) (time.Time, error) {
	t, err := time.Parse("01/06", expiry)
	if err != nil {
		return time.Time{}, ErrInvalidExpiry
	}
	// end of the expiry month
	return t.AddDate(0, 1, 0).Add(-time.Second), nil
}

// Expired reports whether the card's expiry month has passed at the
// given instant.
func Expired(expiry string, now time.Time) (bool, error) {
	end, err := ParseExpiry(expiry)
	if err != nil {
		return false, err
	}
	return now.After(end), nil
}

// Mask renders a PAN safe for logs and ledger rows: first six and last
// four digits visible, the rest starred.
func Mask(pan string) string {
	if len(pan) < 10 {
		return strings.Repeat("*", len(pan))
	}
	return pan[:6] + strings.Repeat("*", len(pan)-10) + pan[len(pan)-4:]
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
