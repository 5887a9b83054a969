package core

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func sampleCategories() (food, clothing, auto *Category) {
	food = NewCategory("Food")
	food.Deposit(amt("1000"), "initial deposit")
	food.Withdraw(amt("10.15"), "groceries")
	food.Withdraw(amt("15.89"), "restaurant and more food for dessert")
	clothing = NewCategory("Clothing")
	food.Transfer(amt("50"), clothing)
	clothing.Withdraw(amt("25.55"), "")
	clothing.Withdraw(amt("100"), "")
	auto = NewCategory("Auto")
	auto.Deposit(amt("1000"), "initial deposit")
	auto.Withdraw(amt("15"), "")
	return food, clothing, auto
}

func TestReportEmptyCategory(t *testing.T) {
	got := NewCategory("Food").String()
	want := "*************Food*************\nTotal: 0"
	if got != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", got, want)
	}
}

func TestReportSample(t *testing.T) {
	food, _, _ := sampleCategories()
	want := strings.Join([]string{
		"*************Food*************",
		"initial deposit        1000.00",
		"groceries               -10.15",
		"restaurant and more foo -15.89",
		"Transfer to Clothing    -50.00",
		"Total: 923.96",
	}, "\n")
	if got := food.String(); got != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", got, want)
	}
}

func TestReportHeader(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Food", strings.Repeat("*", 13) + "Food" + strings.Repeat("*", 13)},
		{"Clothing", strings.Repeat("*", 11) + "Clothing" + strings.Repeat("*", 11)},
		{"Games", strings.Repeat("*", 12) + "Games" + strings.Repeat("*", 13)},
		{"Entertainment", strings.Repeat("*", 8) + "Entertainment" + strings.Repeat("*", 9)},
		{"Café", strings.Repeat("*", 13) + "Café" + strings.Repeat("*", 13)},
		{strings.Repeat("x", 40), strings.Repeat("x", 40)},
	}
	for _, tc := range cases {
		if got := header(tc.name); got != tc.want {
			t.Errorf("header(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestReportLineWidth(t *testing.T) {
	c := NewCategory("Clothing")
	c.Deposit(amt("100"), "init")
	c.Withdraw(amt("12.5"), "a very long description that gets cut")

	lines := strings.Split(c.String(), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[1] != "init"+strings.Repeat(" ", 20)+"100.00" {
		t.Fatalf("unexpected line %q", lines[1])
	}
	if lines[2] != "a very long description -12.50" {
		t.Fatalf("unexpected line %q", lines[2])
	}
	for _, l := range lines[:3] {
		if n := utf8.RuneCountInString(l); n != ReportWidth {
			t.Fatalf("line %q has width %d", l, n)
		}
	}
	if lines[3] != "Total: 87.5" {
		t.Fatalf("unexpected total %q", lines[3])
	}
}

func TestReportKeepsFullDescription(t *testing.T) {
	c := NewCategory("Food")
	desc := "restaurant and more food for dessert"
	c.Deposit(amt("1"), desc)
	if c.Entries()[0].Description != desc {
		t.Fatalf("stored description must not be truncated")
	}
}

func TestReportOverlongAmount(t *testing.T) {
	c := NewCategory("Food")
	c.Deposit(amt("123456789012345"), "a description of 23 chr")
	lines := strings.Split(c.String(), "\n")
	if lines[1] != "a description of 23 chr123456789012345.00" {
		t.Fatalf("unexpected line %q", lines[1])
	}
}

func TestReportIsIdempotent(t *testing.T) {
	food, _, _ := sampleCategories()
	if food.String() != food.String() {
		t.Fatalf("report changed without mutation")
	}
}
