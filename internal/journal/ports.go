// Package journal defines the records a Book writes for every category and
// ledger entry, and the ports that store or broadcast them.
package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// CategoryRecord is the creation record of a category.
	CategoryRecord struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
	}

	// EntryRecord is one ledger entry. Seq is the 1-based position of the
	// entry in its category's ledger.
	EntryRecord struct {
		CategoryID  string          `json:"category_id"`
		Category    string          `json:"category"`
		Seq         int64           `json:"seq"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
	}
)

// Ports for outbound adapters.
type (
	// Journal is the append-only record a Book is rebuilt from.
	Journal interface {
		CreateCategory(ctx context.Context, c CategoryRecord) error
		// AppendEntries stores all entries or none of them.
		AppendEntries(ctx context.Context, entries []EntryRecord) error
		// ListCategories returns categories in creation order.
		ListCategories(ctx context.Context) ([]CategoryRecord, error)
		// ListEntries returns the entries of one category ordered by Seq.
		ListEntries(ctx context.Context, categoryID string) ([]EntryRecord, error)
	}

	// EntryPublisher broadcasts recorded entries to other processes.
	EntryPublisher interface {
		PublishEntry(ctx context.Context, e EntryRecord) error
	}
)
