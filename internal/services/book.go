package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/journal"
	"budget/internal/log"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyName       = errors.New("empty category name")
)

// reportCacheSize bounds how many rendered category reports are kept.
const reportCacheSize = 64

// Book is the set of categories a caller works with. It runs every movement
// on the core categories, then journals the new entries and publishes them.
type Book struct {
	journal   journal.Journal
	publisher journal.EntryPublisher
	logger    *log.Logger
	reports   *cache.LRUCache[string]

	// mu serializes movements so journal order matches ledger order.
	mu     sync.Mutex
	byName map[string]*core.Category
	order  []*core.Category
	// recorded counts, per category id, the leading entries already journaled.
	recorded map[string]int
}

// NewBook creates an empty book. A nil journal or publisher disables that step.
func NewBook(j journal.Journal, p journal.EntryPublisher, logger *log.Logger) *Book {
	if logger == nil {
		logger = log.Discard()
	}
	return &Book{
		journal:   j,
		publisher: p,
		logger:    logger.WithComponent(log.ComponentBook),
		reports:   cache.NewLRUCache[string](reportCacheSize),
		byName:    map[string]*core.Category{},
		recorded:  map[string]int{},
	}
}

// Load rebuilds every journaled category, replacing what the book holds.
func (b *Book) Load(ctx context.Context) error {
	if b.journal == nil {
		return nil
	}

	records, err := b.journal.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	byName := make(map[string]*core.Category, len(records))
	order := make([]*core.Category, 0, len(records))
	recorded := make(map[string]int, len(records))
	for _, rec := range records {
		stored, err := b.journal.ListEntries(ctx, rec.ID)
		if err != nil {
			return fmt.Errorf("list entries of %q: %w", rec.Name, err)
		}
		entries := make([]core.Entry, len(stored))
		for i, e := range stored {
			entries[i] = core.Entry{Amount: e.Amount, Description: e.Description}
		}
		c := core.RestoreCategory(rec.ID, rec.Name, entries)
		byName[c.Name()] = c
		order = append(order, c)
		recorded[c.ID()] = len(entries)
	}

	b.mu.Lock()
	b.byName, b.order, b.recorded = byName, order, recorded
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "Book loaded from journal",
		log.FieldOperation, log.OpLoad,
		"categories", len(order))
	return nil
}

// Open returns the category called name, creating it when it does not exist.
func (b *Book) Open(ctx context.Context, name string) (*core.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.byName[name]; ok {
		return c, nil
	}

	c := core.NewCategory(name)
	if b.journal != nil {
		rec := journal.CategoryRecord{ID: c.ID(), Name: name, CreatedAt: time.Now().UTC()}
		if err := b.journal.CreateCategory(ctx, rec); err != nil {
			return nil, fmt.Errorf("journal category: %w", err)
		}
	}
	b.byName[name] = c
	b.order = append(b.order, c)
	b.recorded[c.ID()] = 0

	b.logger.InfoContext(ctx, "Category opened",
		log.FieldOperation, log.OpOpen,
		log.FieldCategory, name,
		log.FieldCategoryID, c.ID())
	return c, nil
}

// Deposit records an inflow on the named category.
func (b *Book) Deposit(ctx context.Context, name string, amount decimal.Decimal, description string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.lookup(name)
	if err != nil {
		return err
	}
	c.Deposit(amount, description)

	fields := log.NewFields().WithOperation(log.OpDeposit).WithMovement(name, amount, description)
	b.logger.InfoContext(ctx, "Deposit recorded", append(fields.ToSlice(), log.FieldBalance, c.Balance().String())...)
	return b.record(ctx, c)
}

// Withdraw records an outflow. It returns false, and records nothing, when
// the category cannot cover the amount.
func (b *Book) Withdraw(ctx context.Context, name string, amount decimal.Decimal, description string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.lookup(name)
	if err != nil {
		return false, err
	}

	ok := c.Withdraw(amount, description)
	fields := log.NewFields().WithOperation(log.OpWithdraw).WithMovement(name, amount, description).WithSuccess(ok)
	if !ok {
		b.logger.InfoContext(ctx, "Withdrawal refused: insufficient funds", fields.ToSlice()...)
		return false, nil
	}
	b.logger.InfoContext(ctx, "Withdrawal recorded", append(fields.ToSlice(), log.FieldBalance, c.Balance().String())...)
	return true, b.record(ctx, c)
}

// Transfer moves amount between two categories as one movement.
func (b *Book) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, err := b.lookup(from)
	if err != nil {
		return false, err
	}
	dst, err := b.lookup(to)
	if err != nil {
		return false, err
	}

	ok := src.Transfer(amount, dst)
	fields := log.NewFields().WithOperation(log.OpTransfer).WithMovement(from, amount, "").WithTarget(to).WithSuccess(ok)
	if !ok {
		b.logger.InfoContext(ctx, "Transfer refused: insufficient funds", fields.ToSlice()...)
		return false, nil
	}
	b.logger.InfoContext(ctx, "Transfer recorded", fields.ToSlice()...)
	return true, b.record(ctx, src, dst)
}

// Report renders the named category's report.
func (b *Book) Report(name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.lookup(name)
	if err != nil {
		return "", err
	}
	version := c.Len()
	if report, ok := b.reports.Get(c.ID(), version); ok {
		return report, nil
	}
	report := c.String()
	b.reports.Set(c.ID(), version, report)
	return report, nil
}

// SpendChart renders the spend chart of the named categories, or of every
// category in creation order when no name is given.
func (b *Book) SpendChart(names ...string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cats := b.order
	if len(names) > 0 {
		cats = make([]*core.Category, 0, len(names))
		for _, name := range names {
			c, err := b.lookup(name)
			if err != nil {
				return "", err
			}
			cats = append(cats, c)
		}
	}
	return core.SpendChart(cats), nil
}

// Category returns the named category.
func (b *Book) Category(name string) (*core.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lookup(name)
}

// Categories returns every category in creation order.
func (b *Book) Categories() []*core.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*core.Category(nil), b.order...)
}

// ReportCacheStats exposes the report cache counters.
func (b *Book) ReportCacheStats() cache.Stats {
	return b.reports.Stats()
}

func (b *Book) lookup(name string) (*core.Category, error) {
	c, ok := b.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// record journals every entry of cats not journaled yet, then publishes
// them. A failed append leaves those entries pending so the next movement on
// the category retries them. A publish failure is only logged: the entries
// are already recorded.
func (b *Book) record(ctx context.Context, cats ...*core.Category) error {
	var records []journal.EntryRecord
	seen := make(map[string]bool, len(cats))
	for _, c := range cats {
		if seen[c.ID()] {
			continue
		}
		seen[c.ID()] = true
		records = append(records, pending(c, b.recorded[c.ID()])...)
	}
	if len(records) == 0 {
		return nil
	}

	if b.journal != nil {
		if err := b.journal.AppendEntries(ctx, records); err != nil {
			return fmt.Errorf("journal entries: %w", err)
		}
	}
	for _, rec := range records {
		if int(rec.Seq) > b.recorded[rec.CategoryID] {
			b.recorded[rec.CategoryID] = int(rec.Seq)
		}
	}
	if len(records) > len(cats) {
		b.logger.InfoContext(ctx, "Journaled pending entries", log.FieldEntries, len(records))
	}

	if b.publisher == nil {
		return nil
	}
	for _, rec := range records {
		if err := b.publisher.PublishEntry(ctx, rec); err != nil {
			b.logger.WarnContext(ctx, "Failed to publish entry",
				log.FieldOperation, log.OpPublish,
				log.FieldCategory, rec.Category,
				log.FieldSeq, rec.Seq,
				log.FieldError, err)
		}
	}
	return nil
}

// pending returns the entries of c after the first done as journal records.
func pending(c *core.Category, done int) []journal.EntryRecord {
	entries := c.Entries()
	if done > len(entries) {
		done = len(entries)
	}
	out := make([]journal.EntryRecord, 0, len(entries)-done)
	for i := done; i < len(entries); i++ {
		out = append(out, journal.EntryRecord{
			CategoryID:  c.ID(),
			Category:    c.Name(),
			Seq:         int64(i + 1),
			Amount:      entries[i].Amount,
			Description: entries[i].Description,
		})
	}
	return out
}
