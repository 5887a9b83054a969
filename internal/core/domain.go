package core

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportWidth is the fixed line width of a category report.
const ReportWidth = 30

// maxDescriptionWidth is how much of an entry description a report shows.
const maxDescriptionWidth = 23

type (
	// Entry is one ledger record. Positive amounts are inflows, negative amounts outflows.
	Entry struct {
		Amount      decimal.Decimal
		Description string
	}

	// Category is a named bucket of funds with its own balance and ledger.
	// The balance always equals the sum of the ledger amounts; the only way to
	// change either is through Deposit, Withdraw and Transfer.
	Category struct {
		id   string
		name string

		mu      sync.RWMutex
		balance decimal.Decimal
		ledger  []Entry
	}
)

// NewCategory creates an empty category with a fresh identifier.
func NewCategory(name string) *Category {
	return &Category{
		id:      uuid.NewString(),
		name:    name,
		balance: decimal.Zero,
	}
}

// RestoreCategory rebuilds a category from previously recorded entries.
// The balance is derived from the entries.
func RestoreCategory(id, name string, entries []Entry) *Category {
	c := &Category{
		id:      id,
		name:    name,
		balance: decimal.Zero,
		ledger:  make([]Entry, 0, len(entries)),
	}
	for _, e := range entries {
		c.append(e)
	}
	return c
}

// ID returns the stable identifier of the category.
func (c *Category) ID() string {
	return c.id
}

// Name returns the category label.
func (c *Category) Name() string {
	return c.name
}

// Deposit records an inflow. The amount is taken as given, so a negative
// amount lowers the balance.
func (c *Category) Deposit(amount decimal.Decimal, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.append(Entry{Amount: amount, Description: description})
}

// Withdraw records an outflow if the category can cover it.
// It returns false and leaves the category untouched otherwise.
func (c *Category) Withdraw(amount decimal.Decimal, description string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasFunds(amount) {
		return false
	}
	c.append(Entry{Amount: amount.Neg(), Description: description})
	return true
}

// Balance returns the current balance.
func (c *Category) Balance() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balance
}

// CheckFunds reports whether the balance covers amount.
func (c *Category) CheckFunds(amount decimal.Decimal) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasFunds(amount)
}

// Transfer moves amount from c to target. Both ledgers are updated under
// both locks, or neither is when c cannot cover the amount.
func (c *Category) Transfer(amount decimal.Decimal, target *Category) bool {
	unlock := lockPair(c, target)
	defer unlock()

	if !c.hasFunds(amount) {
		return false
	}
	c.append(Entry{Amount: amount.Neg(), Description: "Transfer to " + target.name})
	target.append(Entry{Amount: amount, Description: "Transfer from " + c.name})
	return true
}

// Entries returns a copy of the ledger in insertion order.
func (c *Category) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Entry(nil), c.ledger...)
}

// Len returns the number of ledger entries. It grows by one with every
// recorded movement, so it doubles as a version of the category.
func (c *Category) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ledger)
}

// snapshot returns the ledger and balance as seen at one instant.
// Callers must hold at least the read lock.
func (c *Category) snapshot() ([]Entry, decimal.Decimal) {
	return append([]Entry(nil), c.ledger...), c.balance
}

func (c *Category) hasFunds(amount decimal.Decimal) bool {
	return c.balance.GreaterThanOrEqual(amount)
}

// append must run with the write lock held.
func (c *Category) append(e Entry) {
	c.ledger = append(c.ledger, e)
	c.balance = c.balance.Add(e.Amount)
}

// lockPair write-locks a and b in ascending id order and returns the unlock func.
func lockPair(a, b *Category) func() {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}
	first, second := a, b
	if second.id < first.id {
		first, second = second, first
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
