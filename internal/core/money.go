// Package core provides the category ledger and the spend chart.
//
// This file contains the amount helpers shared by reports and adapters.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and keeps
// the sign, since ledger entries are signed. Blank input is rejected.
//
// Examples:
//   ParseAmount("12.34")  -> 12.34, nil
//   ParseAmount("-10,15") -> -10.15, nil
//   ParseAmount("abc")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with exactly two decimal digits, as report
// lines show it.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatTotal renders a balance in its natural form: no trailing zeros, no
// forced decimals ("0", "1000", "923.96").
func FormatTotal(d decimal.Decimal) string {
	return d.String()
}
