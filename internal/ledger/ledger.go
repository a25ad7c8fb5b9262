// Package ledger implements the per-venue multi-currency balance sheets the
// trade simulator and reconciler mutate. Every mutation preserves
// non-negativity: an operation that would overdraw fails without applying.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

// account is one venue's balance sheet: a reference-currency cash reserve
// plus per-currency holdings. The mutex makes each venue single-writer;
// debit/credit ordering matters for the insufficient-funds check, so no two
// operations may interleave on the same venue.
type account struct {
	mu       sync.Mutex
	cash     float64
	holdings map[string]float64
}

// Ledger is the set of all venue balance sheets for one simulation run. The
// account set is fixed at construction; only balances change afterwards, so
// the outer map needs no locking.
type Ledger struct {
	reference string
	accounts  map[string]*account
}

// New creates a Ledger with one empty account per venue, denominating cash in
// the given reference currency.
func New(reference string, venues []string) *Ledger {
	accounts := make(map[string]*account, len(venues))
	for _, v := range venues {
		accounts[v] = &account{holdings: make(map[string]float64)}
	}
	return &Ledger{reference: reference, accounts: accounts}
}

// Reference returns the reference currency cash is denominated in.
func (l *Ledger) Reference() string { return l.reference }

// Venues returns all venue names in the ledger, sorted.
func (l *Ledger) Venues() []string {
	names := make([]string, 0, len(l.accounts))
	for v := range l.accounts {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

func (l *Ledger) account(venue string) (*account, error) {
	acct, ok := l.accounts[venue]
	if !ok {
		return nil, fmt.Errorf("ledger: %q: %w", venue, domain.ErrUnknownVenue)
	}
	return acct, nil
}

// Cash returns the venue's reference-currency reserve.
func (l *Ledger) Cash(venue string) (float64, error) {
	acct, err := l.account(venue)
	if err != nil {
		return 0, err
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.cash, nil
}

// Holding returns the held amount of currency on venue, zero when absent.
func (l *Ledger) Holding(venue, currency string) (float64, error) {
	acct, err := l.account(venue)
	if err != nil {
		return 0, err
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.holdings[currency], nil
}

// DebitCash decreases the venue's cash reserve. It fails with
// ErrInsufficientFunds when amount exceeds the reserve, leaving the account
// untouched.
func (l *Ledger) DebitCash(venue string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("ledger: debit cash on %s: negative amount %.8f", venue, amount)
	}
	acct, err := l.account(venue)
	if err != nil {
		return err
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	if amount > acct.cash {
		return fmt.Errorf("ledger: debit %.8f %s on %s with cash %.8f: %w",
			amount, l.reference, venue, acct.cash, domain.ErrInsufficientFunds)
	}
	acct.cash -= amount
	return nil
}

// CreditCash increases the venue's cash reserve. Always succeeds for a known
// venue.
func (l *Ledger) CreditCash(venue string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("ledger: credit cash on %s: negative amount %.8f", venue, amount)
	}
	acct, err := l.account(venue)
	if err != nil {
		return err
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	acct.cash += amount
	return nil
}

// DebitHolding decreases the held amount of currency on venue. It fails with
// ErrInsufficientHolding when amount exceeds the holding; a holding that
// reaches exactly zero is removed from the sheet.
func (l *Ledger) DebitHolding(venue, currency string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("ledger: debit %s on %s: negative amount %.8f", currency, venue, amount)
	}
	acct, err := l.account(venue)
	if err != nil {
		return err
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	held := acct.holdings[currency]
	if amount > held {
		return fmt.Errorf("ledger: debit %.8f %s on %s with holding %.8f: %w",
			amount, currency, venue, held, domain.ErrInsufficientHolding)
	}
	remaining := held - amount
	if remaining == 0 {
		delete(acct.holdings, currency)
	} else {
		acct.holdings[currency] = remaining
	}
	return nil
}

// CreditHolding increases the held amount of currency on venue. Always
// succeeds for a known venue.
func (l *Ledger) CreditHolding(venue, currency string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("ledger: credit %s on %s: negative amount %.8f", currency, venue, amount)
	}
	acct, err := l.account(venue)
	if err != nil {
		return err
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	acct.holdings[currency] += amount
	return nil
}

// Balances returns a copy of the venue's balance sheet with cash under the
// reference currency key.
func (l *Ledger) Balances(venue string) (map[string]float64, error) {
	acct, err := l.account(venue)
	if err != nil {
		return nil, err
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	out := make(map[string]float64, len(acct.holdings)+1)
	out[l.reference] = acct.cash
	for cur, amt := range acct.holdings {
		out[cur] = amt
	}
	return out, nil
}

// Snapshot returns a copy of every venue's balance sheet.
func (l *Ledger) Snapshot() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(l.accounts))
	for _, venue := range l.Venues() {
		balances, _ := l.Balances(venue)
		out[venue] = balances
	}
	return out
}

// TotalCash sums the cash reserves of all venues. Meaningful as a running
// total only once the ledger has been reconciled, when every non-cash
// holding is zero.
func (l *Ledger) TotalCash() float64 {
	var total float64
	for _, acct := range l.accounts {
		acct.mu.Lock()
		total += acct.cash
		acct.mu.Unlock()
	}
	return total
}
