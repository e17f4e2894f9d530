package domain

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/gstbill/internal/invoice/domain"
)

// NextStatus returns the invoice status after payments totalling paid have
// been recorded against an invoice whose rounded total is due.
func NextStatus(current invoicedomain.InvoiceStatus, paid, due decimal.Decimal) invoicedomain.InvoiceStatus {
	switch {
	case paid.IsPositive() && paid.GreaterThanOrEqual(due):
		return invoicedomain.InvoiceStatusPaid
	case paid.IsPositive():
		return invoicedomain.InvoiceStatusPartiallyPaid
	case current == invoicedomain.InvoiceStatusDraft:
		return invoicedomain.InvoiceStatusDraft
	default:
		return invoicedomain.InvoiceStatusSent
	}
}
