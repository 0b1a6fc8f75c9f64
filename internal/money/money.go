package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a currency value held as a count of cents. The wire format used by
// the ledger service is a plain decimal number of dollars, so Amount converts
// at the JSON boundary.
type Amount int64

var (
	// ErrInvalidAmount indicates the input could not be read as a decimal amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrTooPrecise indicates more than two fraction digits were supplied.
	ErrTooPrecise = errors.New("amount has more than two decimal places")
)

// Parse reads a decimal string such as "50", "50.5" or "50.00" into an Amount.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}

	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	cents := int64(0)
	if frac != "" {
		if len(frac) > 2 {
			return 0, ErrTooPrecise
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		if len(frac) == 1 {
			cents *= 10
		}
	}

	total := dollars*100 + cents
	if negative {
		total = -total
	}
	return Amount(total), nil
}

// FromCents wraps a raw cent count.
func FromCents(cents int64) Amount {
	return Amount(cents)
}

// Cents returns the raw cent count.
func (a Amount) Cents() int64 {
	return int64(a)
}

// String renders the amount with two decimal places and no currency symbol.
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// USD renders the amount as "$50.00" ("-$50.00" when negative).
func (a Amount) USD() string {
	if a < 0 {
		return "-$" + (-a).String()
	}
	return "$" + a.String()
}

// MarshalJSON encodes the amount as a decimal number of dollars.
func (a Amount) MarshalJSON() ([]byte, error) {
	cents := int64(a)
	if cents%100 == 0 {
		return []byte(strconv.FormatInt(cents/100, 10)), nil
	}
	return []byte(a.String()), nil
}

// UnmarshalJSON decodes a decimal number of dollars.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return fmt.Errorf("unmarshal amount %q: %w", s, err)
	}
	*a = parsed
	return nil
}
