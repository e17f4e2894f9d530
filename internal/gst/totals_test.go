package gst

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(t *testing.T, s string) Money {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func assertMoney(t *testing.T, want string, got Money) {
	t.Helper()
	assert.Truef(t, d(t, want).Equal(got), "expected %s, got %s", want, got.String())
}

func line(t *testing.T, qty, price, rate string) LineInput {
	t.Helper()
	l, err := ParseLine(qty, price, rate)
	require.NoError(t, err)
	return l
}

func TestComputeTotals_ThreeLineInvoice(t *testing.T) {
	totals, err := ComputeTotals([]LineInput{
		line(t, "2", "100", "18"),
		line(t, "1", "50", "5"),
		line(t, "3", "33.33", "12"),
	})
	require.NoError(t, err)

	assertMoney(t, "349.99", totals.Subtotal)
	assertMoney(t, "50.4988", totals.TaxTotal)
	assertMoney(t, "400.4888", totals.TotalAmount)
	assertMoney(t, "400", totals.RoundedTotal)
	assertMoney(t, "-0.4888", totals.RoundOff())
}

func TestComputeTotals_EmptyInvoice(t *testing.T) {
	totals, err := ComputeTotals(nil)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.TaxTotal.IsZero())
	assert.True(t, totals.TotalAmount.IsZero())
	assert.True(t, totals.RoundedTotal.IsZero())
}

func TestComputeTotals_RejectsInvalidLines(t *testing.T) {
	cases := []struct {
		name string
		line LineInput
		want error
	}{
		{"negative quantity", line(t, "-1", "10", "5"), ErrNegativeQuantity},
		{"negative price", line(t, "1", "-10", "5"), ErrNegativeUnitPrice},
		{"rate above 100", line(t, "1", "10", "100.01"), ErrInvalidTaxRate},
		{"negative rate", line(t, "1", "10", "-1"), ErrInvalidTaxRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeTotals([]LineInput{line(t, "1", "1", "0"), tc.line})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseLine_NonNumeric(t *testing.T) {
	_, err := ParseLine("two", "100", "18")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "quantity", pe.Field)
	assert.Equal(t, "two", pe.Value)

	_, err = ParseLine("1", "", "18")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "unit_price", pe.Field)

	_, err = ParseLine("1", "10", "18%")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "tax_rate", pe.Field)
}

func TestComputeTotals_TotalIsExactSumProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rates := []int64{0, 5, 12, 18, 28}

	for i := 0; i < 500; i++ {
		n := rng.Intn(8)
		lines := make([]LineInput, 0, n)
		for j := 0; j < n; j++ {
			lines = append(lines, LineInput{
				Quantity:       decimal.New(rng.Int63n(100000), -3),
				UnitPrice:      decimal.New(rng.Int63n(10000000), -2),
				TaxRatePercent: decimal.NewFromInt(rates[rng.Intn(len(rates))]),
			})
		}

		totals, err := ComputeTotals(lines)
		require.NoError(t, err)

		assert.True(t, totals.TotalAmount.Equal(totals.Subtotal.Add(totals.TaxTotal)))
		assert.True(t, totals.RoundedTotal.Equal(totals.RoundedTotal.Truncate(0)), "rounded total must be integral")

		diff := totals.RoundedTotal.Sub(totals.TotalAmount)
		assert.True(t, diff.GreaterThanOrEqual(decimal.New(-5, -1)), "diff %s below -0.5", diff)
		assert.True(t, diff.LessThan(decimal.New(5, -1)), "diff %s not below 0.5", diff)
	}
}

func TestComputeTotals_RoundsOnceNotPerLine(t *testing.T) {
	lines := []LineInput{
		line(t, "1", "0.50", "0"),
		line(t, "1", "0.50", "0"),
		line(t, "1", "0.50", "0"),
	}

	totals, err := ComputeTotals(lines)
	require.NoError(t, err)

	perLine := decimal.Zero
	for _, l := range lines {
		perLine = perLine.Add(RoundHalfUp(LineAmount(l.Quantity, l.UnitPrice)))
	}

	assertMoney(t, "1.5", totals.TotalAmount)
	assertMoney(t, "2", totals.RoundedTotal)
	assertMoney(t, "3", perLine)
	assert.False(t, perLine.Equal(totals.RoundedTotal))
}

func TestComputeTotals_LineTaxNotPreRounded(t *testing.T) {
	totals, err := ComputeTotals([]LineInput{line(t, "1", "0.01", "18")})
	require.NoError(t, err)

	assertMoney(t, "0.0018", totals.TaxTotal)
	assertMoney(t, "0.0118", totals.TotalAmount)
	assertMoney(t, "0", totals.RoundedTotal)
}

func TestRoundHalfUp(t *testing.T) {
	cases := map[string]string{
		"100.50": "101",
		"100.49": "100",
		"100.51": "101",
		"0.5":    "1",
		"0.4999": "0",
		"7":      "7",
	}
	for in, want := range cases {
		assertMoney(t, want, RoundHalfUp(d(t, in)))
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "400.49", FormatCurrency(d(t, "400.4888")))
	assert.Equal(t, "50.00", FormatCurrency(d(t, "50")))
	assert.Equal(t, "0.01", FormatCurrency(d(t, "0.005")))
}
