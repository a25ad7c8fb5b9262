package domain

import "time"

// Quote is an ephemeral last-trade price observation for one symbol on one
// venue. Quotes are fetched on demand and never stored beyond the evaluation
// that requested them.
type Quote struct {
	Venue     string
	Symbol    Symbol
	Price     float64
	Timestamp time.Time
}
