package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	ClientLedger(ctx context.Context, clientID string) (ClientLedger, error)
}

type Repository interface {
	// ListIssuedInvoices excludes drafts.
	ListIssuedInvoices(ctx context.Context, db *gorm.DB, orgID, clientID snowflake.ID) ([]InvoiceEntry, error)
	ListPayments(ctx context.Context, db *gorm.DB, orgID snowflake.ID, invoiceIDs []snowflake.ID) ([]PaymentEntry, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidClientID     = errors.New("invalid_client_id")
	ErrClientNotFound      = errors.New("client_not_found")
)
