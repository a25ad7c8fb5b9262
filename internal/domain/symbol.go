package domain

import (
	"fmt"
	"strings"
)

// Symbol is a canonical "BASE/QUOTE" trading pair, e.g. "ETH/USDT".
type Symbol string

// ParseSymbol validates that s has the canonical BASE/QUOTE shape with
// non-empty sides.
func ParseSymbol(s string) (Symbol, error) {
	base, quote, ok := strings.Cut(s, "/")
	if !ok || base == "" || quote == "" {
		return "", fmt.Errorf("domain: malformed symbol %q", s)
	}
	return Symbol(s), nil
}

// Base returns the left side of the pair, or "" if the symbol is malformed.
func (s Symbol) Base() string {
	base, _, _ := strings.Cut(string(s), "/")
	return base
}

// Quote returns the right side of the pair, or "" if the symbol has no
// separator.
func (s Symbol) Quote() string {
	_, quote, _ := strings.Cut(string(s), "/")
	return quote
}

// MainCurrency returns the side of the pair that is not the reference
// currency. When neither side is the reference, the base side is treated as
// main. When both sides are the reference the result is the reference itself.
func (s Symbol) MainCurrency(reference string) string {
	base, quote := s.Base(), s.Quote()
	switch {
	case quote == reference:
		return base
	case base == reference:
		return quote
	default:
		return base
	}
}

// String implements fmt.Stringer.
func (s Symbol) String() string { return string(s) }

// PairSymbol builds the MAIN/REFERENCE symbol used for conversions back to
// the reference currency.
func PairSymbol(currency, reference string) Symbol {
	return Symbol(currency + "/" + reference)
}
