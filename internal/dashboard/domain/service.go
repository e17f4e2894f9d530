package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RecentInvoiceLimit caps Summary.RecentInvoices.
const RecentInvoiceLimit = 5

// Summary is the organization-wide billing position. Receivable sums the
// rounded totals of issued invoices; drafts are counted but never owed.
type Summary struct {
	Currency       string          `json:"currency"`
	InvoiceCount   int64           `json:"invoice_count"`
	ClientCount    int64           `json:"client_count"`
	Receivable     decimal.Decimal `json:"receivable"`
	Received       decimal.Decimal `json:"received"`
	Pending        decimal.Decimal `json:"pending"`
	RecentInvoices []RecentInvoice `json:"recent_invoices"`
}

type RecentInvoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      string          `json:"client_id"`
	Status        string          `json:"status"`
	IssueDate     time.Time       `json:"issue_date"`
	RoundedTotal  decimal.Decimal `json:"rounded_total"`
}

type Service interface {
	Summary(ctx context.Context) (Summary, error)
}

var ErrInvalidOrganization = errors.New("invalid_organization")
