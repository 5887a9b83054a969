package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ChartTitle heads every spend chart.
const ChartTitle = "Percentage spent by category"

var (
	hundred = decimal.NewFromInt(100)
	ten     = decimal.NewFromInt(10)
)

// Share is the spending of one category relative to all charted categories.
type Share struct {
	Name      string
	Withdrawn decimal.Decimal
	// Percentage is the share of total withdrawals floored to a multiple of ten.
	Percentage int
}

// Spending aggregates the withdrawals of each category, in input order.
// When nothing was withdrawn at all, every percentage is 0.
func Spending(categories []*Category) []Share {
	ledgers := snapshotAll(categories)

	shares := make([]Share, len(categories))
	total := decimal.Zero
	for i, c := range categories {
		withdrawn := decimal.Zero
		for _, e := range ledgers[i] {
			if e.Amount.IsNegative() {
				withdrawn = withdrawn.Add(e.Amount.Abs())
			}
		}
		shares[i] = Share{Name: c.name, Withdrawn: withdrawn}
		total = total.Add(withdrawn)
	}

	if total.IsZero() {
		return shares
	}
	// Integer division floors exactly; Div would round to DivisionPrecision first.
	bucket := total.Mul(ten)
	for i := range shares {
		tens, _ := shares[i].Withdrawn.Mul(hundred).QuoRem(bucket, 0)
		shares[i].Percentage = int(tens.IntPart()) * 10
	}
	return shares
}

// SpendChart renders the percentage of total withdrawals per category as a
// vertical bar chart, category names written downwards below the axis.
func SpendChart(categories []*Category) string {
	shares := Spending(categories)

	lines := make([]string, 0, 13)
	lines = append(lines, ChartTitle)

	var b strings.Builder
	for threshold := 100; threshold >= 0; threshold -= 10 {
		b.Reset()
		fmt.Fprintf(&b, "%3d|", threshold)
		for _, s := range shares {
			if s.Percentage >= threshold {
				b.WriteString(" o ")
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" ")
		lines = append(lines, b.String())
	}

	lines = append(lines, "    "+strings.Repeat("---", len(shares))+"-")

	names := make([][]rune, len(shares))
	longest := 0
	for i, s := range shares {
		names[i] = []rune(s.Name)
		if len(names[i]) > longest {
			longest = len(names[i])
		}
	}
	for idx := 0; idx < longest; idx++ {
		b.Reset()
		b.WriteString("    ")
		for _, name := range names {
			if idx < len(name) {
				b.WriteString(" " + string(name[idx]) + " ")
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" ")
		lines = append(lines, b.String())
	}

	return strings.Join(lines, "\n")
}

// Snapshot returns detached copies of categories, all taken at one instant.
// Readers that render several views of the same categories use it so the
// views agree with each other.
func Snapshot(categories []*Category) []*Category {
	ledgers := snapshotAll(categories)
	out := make([]*Category, len(categories))
	for i, c := range categories {
		out[i] = RestoreCategory(c.id, c.name, ledgers[i])
	}
	return out
}

// snapshotAll copies every ledger while holding all read locks at once, so
// the result reflects a single instant. Locks are taken in id order and each
// distinct category is locked once.
func snapshotAll(categories []*Category) [][]Entry {
	distinct := make([]*Category, 0, len(categories))
	seen := make(map[*Category]struct{}, len(categories))
	for _, c := range categories {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		distinct = append(distinct, c)
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i].id < distinct[j].id })

	for _, c := range distinct {
		c.mu.RLock()
	}
	ledgers := make([][]Entry, len(categories))
	for i, c := range categories {
		ledgers[i], _ = c.snapshot()
	}
	for i := len(distinct) - 1; i >= 0; i-- {
		distinct[i].mu.RUnlock()
	}
	return ledgers
}
