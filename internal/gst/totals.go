package gst

import (
	"github.com/shopspring/decimal"
)

// LineInput is one invoice line as seen by the calculator.
type LineInput struct {
	Quantity       Money
	UnitPrice      Money
	TaxRatePercent Money
}

// Totals are the four invoice amounts persisted at creation time.
type Totals struct {
	Subtotal     Money `json:"subtotal"`
	TaxTotal     Money `json:"tax_total"`
	TotalAmount  Money `json:"total_amount"`
	RoundedTotal Money `json:"rounded_total"`
}

// ParseLine builds a LineInput from raw form values.
func ParseLine(quantity, unitPrice, taxRatePercent string) (LineInput, error) {
	qty, err := ParseField("quantity", quantity)
	if err != nil {
		return LineInput{}, err
	}
	price, err := ParseField("unit_price", unitPrice)
	if err != nil {
		return LineInput{}, err
	}
	rate, err := ParseField("tax_rate", taxRatePercent)
	if err != nil {
		return LineInput{}, err
	}
	return LineInput{Quantity: qty, UnitPrice: price, TaxRatePercent: rate}, nil
}

// Validate checks the calculator's input domain.
func (l LineInput) Validate() error {
	if l.Quantity.IsNegative() {
		return ErrNegativeQuantity
	}
	if l.UnitPrice.IsNegative() {
		return ErrNegativeUnitPrice
	}
	if l.TaxRatePercent.IsNegative() || l.TaxRatePercent.GreaterThan(hundred) {
		return ErrInvalidTaxRate
	}
	return nil
}

// LineAmount returns quantity * unitPrice.
func LineAmount(quantity, unitPrice Money) Money {
	return quantity.Mul(unitPrice)
}

// LineTax returns lineTotal * ratePercent / 100 without rounding.
func LineTax(lineTotal, ratePercent Money) Money {
	return lineTotal.Mul(ratePercent).Shift(-2)
}

// ComputeTotals sums line amounts and taxes exactly and rounds the grand
// total once. Lines are never rounded individually.
func ComputeTotals(lines []LineInput) (Totals, error) {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero

	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return Totals{}, err
		}
		lineTotal := LineAmount(line.Quantity, line.UnitPrice)
		subtotal = subtotal.Add(lineTotal)
		taxTotal = taxTotal.Add(LineTax(lineTotal, line.TaxRatePercent))
	}

	total := subtotal.Add(taxTotal)
	return Totals{
		Subtotal:     subtotal,
		TaxTotal:     taxTotal,
		TotalAmount:  total,
		RoundedTotal: RoundHalfUp(total),
	}, nil
}

// RoundOff is the adjustment printed between the exact and rounded totals.
func (t Totals) RoundOff() Money {
	return t.RoundedTotal.Sub(t.TotalAmount)
}
