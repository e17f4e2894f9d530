package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gstbill/internal/payment/domain"
	"gorm.io/gorm"
)

const paymentColumns = `id, org_id, invoice_id, amount, paid_at, method, reference, notes, created_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (`+paymentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.OrgID,
		payment.InvoiceID,
		payment.Amount,
		payment.PaidAt,
		payment.Method,
		payment.Reference,
		payment.Notes,
		payment.CreatedAt,
	).Error
}

func (r *repo) ListByInvoice(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]domain.Payment, error) {
	var items []domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+`
		 FROM payments
		 WHERE org_id = ? AND invoice_id = ?
		 ORDER BY paid_at ASC, id ASC`,
		orgID,
		invoiceID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByInvoices(ctx context.Context, db *gorm.DB, orgID snowflake.ID, invoiceIDs []snowflake.ID) ([]domain.Payment, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}
	var items []domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+`
		 FROM payments
		 WHERE org_id = ? AND invoice_id IN ?
		 ORDER BY paid_at ASC, id ASC`,
		orgID,
		invoiceIDs,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SumByInvoice adds amounts in Go so the result stays exact on every dialect.
func (r *repo) SumByInvoice(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) (decimal.Decimal, error) {
	var rows []struct {
		Amount decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(
		`SELECT amount FROM payments WHERE org_id = ? AND invoice_id = ?`,
		orgID,
		invoiceID,
	).Scan(&rows).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total, nil
}
