package gst

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// OverflowSentinel is returned by WordsOrSentinel for amounts that cannot be
// worded. Documents omit the words line when they see it.
const OverflowSentinel = "overflow"

// MaxWordsAmount is the first rupee amount (100 crore) that cannot be worded.
const MaxWordsAmount = 1_000_000_000

var (
	ErrAmountOverflow = errors.New("amount_overflow")
	ErrNegativeAmount = errors.New("negative_amount")
)

var ones = [...]string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = [...]string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountToWords renders an amount in Indian words, e.g.
// "Rupees One Lakh Twenty Three Thousand Four Hundred and Fifty Six Only".
// The amount is first rounded half-up to whole paise.
func AmountToWords(amount Money) (string, error) {
	if amount.IsNegative() {
		return "", ErrNegativeAmount
	}

	rounded := amount.Round(2)
	rupees := rounded.Truncate(0)
	paise := rounded.Sub(rupees).Shift(2).IntPart()

	if rupees.GreaterThanOrEqual(decimal.NewFromInt(MaxWordsAmount)) {
		return "", ErrAmountOverflow
	}

	r := rupees.IntPart()
	if r == 0 && paise == 0 {
		return "Zero Rupees Only", nil
	}

	var sb strings.Builder
	sb.WriteString("Rupees ")
	if r == 0 {
		sb.WriteString("Zero")
	} else {
		sb.WriteString(integerWords(r))
	}
	if paise > 0 {
		sb.WriteString(" and ")
		sb.WriteString(integerWords(paise))
		sb.WriteString(" Paise")
	}
	sb.WriteString(" Only")
	return sb.String(), nil
}

// WordsOrSentinel is AmountToWords for templates: it never fails and returns
// OverflowSentinel when no words can be produced.
func WordsOrSentinel(amount Money) string {
	words, err := AmountToWords(amount)
	if err != nil {
		return OverflowSentinel
	}
	return words
}

// integerWords words n (0 < n < 10^9) using the ##,##,##,### grouping.
func integerWords(n int64) string {
	crore := n / 10_000_000
	lakh := n / 100_000 % 100
	thousand := n / 1_000 % 100
	hundreds := n / 100 % 10
	rest := n % 100

	parts := make([]string, 0, 10)
	if crore > 0 {
		parts = append(parts, twoDigitWords(crore), "Crore")
	}
	if lakh > 0 {
		parts = append(parts, twoDigitWords(lakh), "Lakh")
	}
	if thousand > 0 {
		parts = append(parts, twoDigitWords(thousand), "Thousand")
	}
	if hundreds > 0 {
		parts = append(parts, ones[hundreds], "Hundred")
	}
	if rest > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and")
		}
		parts = append(parts, twoDigitWords(rest))
	}
	return strings.Join(parts, " ")
}

func twoDigitWords(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
