package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListIssuedInvoices(ctx context.Context, db *gorm.DB, orgID, clientID snowflake.ID) ([]domain.InvoiceEntry, error) {
	var items []domain.InvoiceEntry
	err := db.WithContext(ctx).Raw(
		`SELECT id, invoice_number, issue_date, rounded_total
		 FROM invoices
		 WHERE org_id = ? AND client_id = ? AND status <> 'DRAFT'
		 ORDER BY issue_date ASC, id ASC`,
		orgID,
		clientID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, orgID snowflake.ID, invoiceIDs []snowflake.ID) ([]domain.PaymentEntry, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}
	var items []domain.PaymentEntry
	err := db.WithContext(ctx).Raw(
		`SELECT p.id, p.invoice_id, i.invoice_number, p.paid_at, p.amount
		 FROM payments p
		 JOIN invoices i ON i.id = p.invoice_id AND i.org_id = p.org_id
		 WHERE p.org_id = ? AND p.invoice_id IN ?
		 ORDER BY p.paid_at ASC, p.id ASC`,
		orgID,
		invoiceIDs,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
