package memory

import (
	"context"
	"fmt"
	"sync"

	"budget/internal/journal"
)

// Journal keeps the journal in process memory. It is what a Book uses when no
// database is configured.
type Journal struct {
	mu         sync.Mutex
	categories []journal.CategoryRecord
	entries    map[string][]journal.EntryRecord
}

func New() *Journal {
	return &Journal{entries: map[string][]journal.EntryRecord{}}
}

// CreateCategory stores the category; ids and names must be unique.
func (j *Journal) CreateCategory(_ context.Context, c journal.CategoryRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, existing := range j.categories {
		if existing.ID == c.ID || existing.Name == c.Name {
			return fmt.Errorf("category %q already exists", c.Name)
		}
	}
	j.categories = append(j.categories, c)
	return nil
}

// AppendEntries checks every entry before storing any of them.
func (j *Journal) AppendEntries(_ context.Context, entries []journal.EntryRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	next := map[string]int64{}
	for _, e := range entries {
		if !j.known(e.CategoryID) {
			return fmt.Errorf("unknown category %q", e.CategoryID)
		}
		want, ok := next[e.CategoryID]
		if !ok {
			want = int64(len(j.entries[e.CategoryID])) + 1
		}
		if e.Seq != want {
			return fmt.Errorf("category %q: expected seq %d, got %d", e.CategoryID, want, e.Seq)
		}
		next[e.CategoryID] = want + 1
	}
	for _, e := range entries {
		j.entries[e.CategoryID] = append(j.entries[e.CategoryID], e)
	}
	return nil
}

// ListCategories returns a copy of the categories in creation order.
func (j *Journal) ListCategories(_ context.Context) ([]journal.CategoryRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.CategoryRecord(nil), j.categories...), nil
}

// ListEntries returns a copy of one category's entries.
func (j *Journal) ListEntries(_ context.Context, categoryID string) ([]journal.EntryRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.EntryRecord(nil), j.entries[categoryID]...), nil
}

func (j *Journal) known(id string) bool {
	for _, c := range j.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

var _ journal.Journal = (*Journal)(nil)
