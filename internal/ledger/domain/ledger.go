package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BuildLedger posts the opening balance, one debit per invoice and one credit
// per payment, then orders rows by date with the opening row first and keeps
// a running balance. Rows on the same instant keep their posting order, so an
// invoice precedes a payment made at the same moment.
func BuildLedger(opening decimal.Decimal, invoices []InvoiceEntry, payments []PaymentEntry) ClientLedger {
	type posting struct {
		at  time.Time
		row LedgerRow
	}

	postings := make([]posting, 0, len(invoices)+len(payments))
	totalInvoiced := decimal.Zero
	totalPaid := decimal.Zero

	for _, inv := range invoices {
		totalInvoiced = totalInvoiced.Add(inv.RoundedTotal)
		date := inv.IssueDate
		postings = append(postings, posting{at: date, row: LedgerRow{
			Type:      SourceTypeInvoice,
			SourceID:  inv.ID.String(),
			Date:      &date,
			Reference: inv.InvoiceNumber,
			Debit:     inv.RoundedTotal,
			Credit:    decimal.Zero,
		}})
	}
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.Amount)
		date := p.PaidAt
		postings = append(postings, posting{at: date, row: LedgerRow{
			Type:      SourceTypePayment,
			SourceID:  p.ID.String(),
			Date:      &date,
			Reference: fmt.Sprintf("PAY-%s (Inv: %s)", p.ID.String(), p.InvoiceNumber),
			Debit:     decimal.Zero,
			Credit:    p.Amount,
		}})
	}

	sort.SliceStable(postings, func(i, j int) bool {
		return postings[i].at.Before(postings[j].at)
	})

	openingRow := LedgerRow{
		Type:      SourceTypeOpeningBalance,
		Reference: "-",
		Debit:     decimal.Zero,
		Credit:    decimal.Zero,
	}
	if opening.IsPositive() {
		openingRow.Debit = opening
	} else if opening.IsNegative() {
		openingRow.Credit = opening.Neg()
	}
	balance := openingRow.Debit.Sub(openingRow.Credit)
	openingRow.Balance = balance

	rows := make([]LedgerRow, 0, len(postings)+1)
	rows = append(rows, openingRow)
	for _, p := range postings {
		balance = balance.Add(p.row.Debit).Sub(p.row.Credit)
		p.row.Balance = balance
		rows = append(rows, p.row)
	}

	return ClientLedger{
		OpeningBalance: opening,
		Rows:           rows,
		TotalInvoiced:  totalInvoiced,
		TotalPaid:      totalPaid,
		BalanceDue:     balance,
	}
}
