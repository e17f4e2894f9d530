// Package gst computes invoice totals, GST splits and the worded amount
// printed on Indian tax invoices.
//
// Every monetary value is a shopspring decimal. The only divisions performed
// are by 100 and by 2, both of which are exact, so results never lose
// precision regardless of how many lines an invoice carries.
package gst

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal currency amount.
type Money = decimal.Decimal

var (
	ErrParse             = errors.New("invalid_number")
	ErrNegativeQuantity  = errors.New("invalid_quantity")
	ErrNegativeUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidTaxRate    = errors.New("invalid_tax_rate")
)

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.New(5, -1)
)

// ParseError reports a numeric field that could not be parsed.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ParseMoney parses a plain decimal string such as "33.33".
func ParseMoney(value string) (Money, error) {
	return ParseField("amount", value)
}

// ParseField parses value and reports failures against field.
func ParseField(field, value string) (Money, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, &ParseError{Field: field, Value: value, Err: errors.New("empty value")}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, &ParseError{Field: field, Value: value, Err: err}
	}
	return d, nil
}

// FormatCurrency renders an amount with exactly two decimal places.
func FormatCurrency(amount Money) string {
	return amount.StringFixed(2)
}
