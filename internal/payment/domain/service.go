package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/gstbill/internal/invoice/domain"
	"gorm.io/gorm"
)

type RecordPaymentRequest struct {
	InvoiceID string     `json:"-"`
	Amount    string     `json:"amount"`
	PaidAt    *time.Time `json:"paid_at"`
	Method    string     `json:"method"`
	Reference string     `json:"reference"`
	Notes     string     `json:"notes"`
}

type RecordPaymentResponse struct {
	Payment       Payment                     `json:"payment"`
	InvoiceStatus invoicedomain.InvoiceStatus `json:"invoice_status"`
	TotalPaid     decimal.Decimal             `json:"total_paid"`
	BalanceDue    decimal.Decimal             `json:"balance_due"`
}

type Service interface {
	Record(ctx context.Context, req RecordPaymentRequest) (RecordPaymentResponse, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]Payment, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	ListByInvoice(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]Payment, error)
	ListByInvoices(ctx context.Context, db *gorm.DB, orgID snowflake.ID, invoiceIDs []snowflake.ID) ([]Payment, error)
	SumByInvoice(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) (decimal.Decimal, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidInvoiceID    = errors.New("invalid_invoice_id")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidMethod       = errors.New("invalid_method")
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrPaymentInProgress   = errors.New("payment_in_progress")
)
