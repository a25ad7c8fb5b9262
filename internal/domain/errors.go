package domain

import "errors"

var (
	ErrVenueUnavailable    = errors.New("venue unavailable")
	ErrPriceUnavailable    = errors.New("price unavailable")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientHolding = errors.New("insufficient holding")
	ErrNoOpportunity       = errors.New("no arbitrage opportunity")
	ErrNotProfitable       = errors.New("no profitable opportunity")
	ErrUnknownVenue        = errors.New("unknown venue")
	ErrConfiguration       = errors.New("invalid configuration")
)
