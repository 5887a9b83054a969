package core

import (
	"strings"
	"unicode/utf8"
)

// String renders the category report: the name centered in asterisks, one
// line per ledger entry and the total. Every line but the total is
// ReportWidth characters wide.
func (c *Category) String() string {
	c.mu.RLock()
	entries, balance := c.snapshot()
	c.mu.RUnlock()

	lines := make([]string, 0, len(entries)+2)
	lines = append(lines, header(c.name))
	for _, e := range entries {
		desc := truncate(e.Description, maxDescriptionWidth)
		amount := FormatAmount(e.Amount)
		pad := ReportWidth - utf8.RuneCountInString(amount) - utf8.RuneCountInString(desc)
		lines = append(lines, desc+spaces(pad)+amount)
	}
	lines = append(lines, "Total: "+FormatTotal(balance))
	return strings.Join(lines, "\n")
}

// header centers name within ReportWidth; odd-length names get the extra
// star on the right.
func header(name string) string {
	n := utf8.RuneCountInString(name)
	left := (ReportWidth - n) / 2
	if left < 0 {
		left = 0
	}
	right := left
	if n%2 != 0 {
		right++
	}
	if n >= ReportWidth {
		right = 0
	}
	return strings.Repeat("*", left) + name + strings.Repeat("*", right)
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
