package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type LedgerSourceType string

const (
	SourceTypeOpeningBalance LedgerSourceType = "OPENING_BALANCE"
	SourceTypeInvoice        LedgerSourceType = "INVOICE"
	SourceTypePayment        LedgerSourceType = "PAYMENT"
)

// InvoiceEntry is an issued invoice as the ledger sees it: only the rounded
// total is ever posted.
type InvoiceEntry struct {
	ID            snowflake.ID
	InvoiceNumber string
	IssueDate     time.Time
	RoundedTotal  decimal.Decimal
}

type PaymentEntry struct {
	ID            snowflake.ID
	InvoiceID     snowflake.ID
	InvoiceNumber string
	PaidAt        time.Time
	Amount        decimal.Decimal
}

// LedgerRow is one line of a client statement. Date is nil for the opening
// balance row.
type LedgerRow struct {
	Type      LedgerSourceType `json:"type"`
	SourceID  string           `json:"source_id,omitempty"`
	Date      *time.Time       `json:"date"`
	Reference string           `json:"reference"`
	Debit     decimal.Decimal  `json:"debit"`
	Credit    decimal.Decimal  `json:"credit"`
	Balance   decimal.Decimal  `json:"balance"`
}

type ClientLedger struct {
	ClientID       string          `json:"client_id"`
	ClientName     string          `json:"client_name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Rows           []LedgerRow     `json:"rows"`
	TotalInvoiced  decimal.Decimal `json:"total_invoiced"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
}
