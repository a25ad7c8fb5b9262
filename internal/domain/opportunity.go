package domain

import "fmt"

// Opportunity is one directional cross-venue price discrepancy: buy the
// symbol on BuyVenue, sell it on SellVenue. Instances are built only through
// NewOpportunity so that BuyPrice < SellPrice always holds.
type Opportunity struct {
	BuyVenue  string
	SellVenue string
	Symbol    Symbol
	BuyPrice  float64
	SellPrice float64
}

// NewOpportunity builds an Opportunity from two venue prices for the same
// symbol, orienting the legs so the lower price becomes the buy side. It
// rejects non-positive prices and a zero spread, since neither can be traded.
func NewOpportunity(venueA, venueB string, symbol Symbol, priceA, priceB float64) (Opportunity, error) {
	if priceA <= 0 || priceB <= 0 {
		return Opportunity{}, fmt.Errorf("domain: opportunity for %s: non-positive price (%.8f / %.8f)", symbol, priceA, priceB)
	}
	if priceA == priceB {
		return Opportunity{}, fmt.Errorf("domain: opportunity for %s: zero spread at %.8f", symbol, priceA)
	}
	opp := Opportunity{Symbol: symbol}
	if priceA < priceB {
		opp.BuyVenue, opp.BuyPrice = venueA, priceA
		opp.SellVenue, opp.SellPrice = venueB, priceB
	} else {
		opp.BuyVenue, opp.BuyPrice = venueB, priceB
		opp.SellVenue, opp.SellPrice = venueA, priceA
	}
	return opp, nil
}

// Spread is the raw per-unit edge, SellPrice - BuyPrice. Positive for any
// constructed Opportunity.
func (o Opportunity) Spread() float64 {
	return o.SellPrice - o.BuyPrice
}

// String renders the opportunity for logs and notifications.
func (o Opportunity) String() string {
	return fmt.Sprintf("%s: buy %s @%.8f, sell %s @%.8f (spread %.8f)",
		o.Symbol, o.BuyVenue, o.BuyPrice, o.SellVenue, o.SellPrice, o.Spread())
}
