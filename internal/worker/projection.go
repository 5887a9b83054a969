package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/journal"
	"budget/internal/log"
)

// ErrSequenceGap means an entry arrived before one it follows.
var ErrSequenceGap = errors.New("entry sequence gap")

// Projection rebuilds categories from recorded entries arriving over the
// broker. Every entry is applied at most once, in seq order per category.
// With a journal, a gap left by a lost message is filled from the journal.
type Projection struct {
	logger  *log.Logger
	journal journal.Journal

	mu    sync.Mutex
	byID  map[string]*core.Category
	order []*core.Category
}

// NewProjection creates an empty projection. j may be nil, in which case
// gaps cannot be filled and the message showing one is rejected.
func NewProjection(logger *log.Logger, j journal.Journal) *Projection {
	if logger == nil {
		logger = log.Discard()
	}
	return &Projection{
		logger:  logger.WithComponent(log.ComponentWorker),
		journal: j,
		byID:    map[string]*core.Category{},
	}
}

// Seed applies everything already in the journal. Run it before consuming
// so that messages published while the worker was down are not needed.
func (p *Projection) Seed(ctx context.Context, j journal.Journal) (int, error) {
	cats, err := j.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}

	applied := 0
	for _, c := range cats {
		entries, err := j.ListEntries(ctx, c.ID)
		if err != nil {
			return applied, fmt.Errorf("list entries of %q: %w", c.Name, err)
		}
		for _, e := range entries {
			ok, err := p.Apply(e)
			if err != nil {
				return applied, err
			}
			if ok {
				applied++
			}
		}
	}

	p.logger.InfoContext(ctx, "Projection seeded from journal",
		"categories", len(cats),
		log.FieldEntries, applied)
	return applied, nil
}

// Apply records e on its category. It reports false for an entry seen
// before, and ErrSequenceGap when earlier entries are still missing.
func (p *Projection) Apply(e journal.EntryRecord) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.byID[e.CategoryID]
	if !ok {
		c = core.RestoreCategory(e.CategoryID, e.Category, nil)
		p.byID[e.CategoryID] = c
		p.order = append(p.order, c)
	}

	have := int64(c.Len())
	switch {
	case e.Seq <= have:
		return false, nil
	case e.Seq > have+1:
		return false, fmt.Errorf("%w: category %q has %d entries, got seq %d", ErrSequenceGap, e.Category, have, e.Seq)
	}

	// Entries carry their sign, so a deposit of the recorded amount
	// reproduces withdrawals and transfers alike.
	c.Deposit(e.Amount, e.Description)
	return true, nil
}

// HandleEntry processes one broker message. A gap is filled from the
// journal when there is one. A gap that remains rejects the message, since
// redelivering it cannot close the gap.
func (p *Projection) HandleEntry(ctx context.Context, msg *amqp.EntryRecordedMessage) error {
	applied, err := p.Apply(msg.EntryRecord)
	if errors.Is(err, ErrSequenceGap) && p.journal != nil {
		p.logger.WarnContext(ctx, "Entry sequence gap, catching up from journal",
			log.FieldCategory, msg.Category,
			log.FieldSeq, msg.Seq)
		if cerr := p.catchUp(ctx, msg.CategoryID); cerr != nil {
			return fmt.Errorf("catch up %q: %w", msg.Category, cerr)
		}
		applied, err = p.Apply(msg.EntryRecord)
	}
	if errors.Is(err, ErrSequenceGap) {
		return fmt.Errorf("%w: %w", amqp.ErrReject, err)
	}
	if err != nil {
		return err
	}
	if !applied {
		p.logger.DebugContext(ctx, "Skipping duplicate entry",
			log.FieldCategory, msg.Category,
			log.FieldSeq, msg.Seq)
		return nil
	}
	p.logger.InfoContext(ctx, "Entry applied",
		log.FieldCategory, msg.Category,
		log.FieldSeq, msg.Seq,
		log.FieldAmount, msg.Amount.String())
	return nil
}

// catchUp applies the journaled entries of one category.
func (p *Projection) catchUp(ctx context.Context, categoryID string) error {
	entries, err := p.journal.ListEntries(ctx, categoryID)
	if err != nil {
		return err
	}
	applied := 0
	for _, e := range entries {
		ok, err := p.Apply(e)
		if err != nil {
			return err
		}
		if ok {
			applied++
		}
	}
	p.logger.InfoContext(ctx, "Caught up from journal",
		log.FieldCategoryID, categoryID,
		log.FieldEntries, applied)
	return nil
}

// Categories returns the projected categories in first-seen order.
func (p *Projection) Categories() []*core.Category {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*core.Category(nil), p.order...)
}

// SpendChart renders the chart of every projected category.
func (p *Projection) SpendChart() string {
	return core.SpendChart(p.Categories())
}

// LogChart writes the current spend chart to the log.
func (p *Projection) LogChart(ctx context.Context) {
	cats := p.Categories()
	if len(cats) == 0 {
		p.logger.DebugContext(ctx, "No categories projected yet")
		return
	}
	p.logger.InfoContext(ctx, "Spend chart",
		log.FieldOperation, log.OpChart,
		"categories", len(cats),
		"chart", "\n"+core.SpendChart(cats))
}
