// Package export writes category reports and the spend breakdown to an
// Excel workbook.
package export

import (
	"fmt"
	"strings"

	"budget/internal/core"

	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	ChartSheet   = "Chart"

	maxSheetName = 31
)

// WriteWorkbook writes a Summary sheet, one sheet per category holding its
// ledger, and a Chart sheet holding the spend chart one line per row.
// It returns the sheet name used for each category, in input order.
// The sheets agree with each other even while the categories keep moving.
func WriteWorkbook(path string, categories []*core.Category) ([]string, error) {
	// Every sheet renders the same instant.
	categories = core.Snapshot(categories)

	f := excelize.NewFile()
	defer f.Close()

	f.SetDocProps(&excelize.DocProperties{
		Creator: "budget",
		Title:   "Budget report",
	})

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, categories); err != nil {
		return nil, fmt.Errorf("summary sheet: %w", err)
	}

	used := map[string]bool{strings.ToLower(SummarySheet): true, strings.ToLower(ChartSheet): true}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		sheet := sheetName(c.Name(), used)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheet, err)
		}
		if err := writeCategorySheet(f, sheet, c); err != nil {
			return nil, fmt.Errorf("category sheet %q: %w", sheet, err)
		}
		names = append(names, sheet)
	}

	if _, err := f.NewSheet(ChartSheet); err != nil {
		return nil, err
	}
	if err := writeChartSheet(f, categories); err != nil {
		return nil, fmt.Errorf("chart sheet: %w", err)
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	return names, nil
}

func writeSummarySheet(f *excelize.File, categories []*core.Category) error {
	sheet := SummarySheet
	headers := []string{"Category", "Balance", "Withdrawn", "Spent %"}
	if err := writeHeader(f, sheet, headers, "#4472C4"); err != nil {
		return err
	}

	for i, share := range core.Spending(categories) {
		row := i + 2
		values := []interface{}{
			share.Name,
			categories[i].Balance().InexactFloat64(),
			share.Withdrawn.InexactFloat64(),
			share.Percentage,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	numStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if len(categories) > 0 {
		last := len(categories) + 1
		f.SetCellStyle(sheet, "B2", fmt.Sprintf("C%d", last), numStyle)
	}
	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "D", 14)
	return nil
}

func writeCategorySheet(f *excelize.File, sheet string, c *core.Category) error {
	if err := writeHeader(f, sheet, []string{"Description", "Amount"}, "#70AD47"); err != nil {
		return err
	}

	entries := c.Entries()
	total := c.Balance()
	for i, e := range entries {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.Description)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.Amount.InexactFloat64())
	}
	totalRow := len(entries) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), total.InexactFloat64())

	numStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})
	f.SetCellStyle(sheet, "B2", fmt.Sprintf("B%d", totalRow), numStyle)
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("A%d", totalRow), boldStyle)

	f.SetColWidth(sheet, "A", "A", 40)
	f.SetColWidth(sheet, "B", "B", 14)
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeChartSheet(f *excelize.File, categories []*core.Category) error {
	mono, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Family: "Courier New"}})
	lines := strings.Split(core.SpendChart(categories), "\n")
	for i, line := range lines {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetCellStr(ChartSheet, cell, line); err != nil {
			return err
		}
	}
	f.SetCellStyle(ChartSheet, "A1", fmt.Sprintf("A%d", len(lines)), mono)
	f.SetColWidth(ChartSheet, "A", "A", 60)
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, color string) error {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

// sheetName turns a category name into a valid sheet name not yet in used.
// Sheet names compare case-insensitively, so used holds lowercase names.
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	clean = strings.Trim(clean, "'")
	if clean == "" {
		clean = "Category"
	}
	clean = truncateRunes(clean, maxSheetName)

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
