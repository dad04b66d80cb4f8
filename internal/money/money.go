// Package money converts between the decimal-string amounts carried on the
// wire and the integer cents stored in the ledger. Balances never touch
// floating point.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must be positive")
)

// ParseCents parses a decimal string like "100.50" into cents. At most two
// fraction digits are accepted; a bank does not book fractions of a cent.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	negative := false
	if s[0] == '-' {
		negative = true
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if hasFrac && len(frac) > 2 {
		return 0, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}

	var cents int64
	for _, r := range whole {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		d := int64(r - '0')
		if cents > (1<<63-1-d)/10 {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, s)
		}
		cents = cents*10 + d
	}
	if cents > math.MaxInt64/100 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, s)
	}
	cents *= 100

	if hasFrac {
		// Right-pad so ".5" means 50 cents.
		for len(frac) < 2 {
			frac += "0"
		}
		for _, r := range frac {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
			}
		}
		cents += int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	}

	if negative {
		cents = -cents
	}
	return cents, nil
}

// ParsePositiveCents parses an amount and rejects zero and negative values.
// Deposits, withdrawals and transfers all require a positive amount.
func ParsePositiveCents(s string) (int64, error) {
	cents, err := ParseCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}
	return cents, nil
}

// FormatCents renders cents as a decimal string with two fraction digits
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
