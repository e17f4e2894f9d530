package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/internal/invoice/domain"
	"github.com/smallbiznis/gstbill/pkg/db/option"
	"github.com/smallbiznis/gstbill/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceColumns = `SELECT id, org_id, client_id, company_profile_id, invoice_number, public_uuid,
	 issue_date, due_date, place_of_supply, status, template, notes, subtotal, tax_total,
	 total_amount, rounded_total, metadata, created_at, updated_at
	 FROM invoices`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, org_id, client_id, company_profile_id, invoice_number, public_uuid,
		 issue_date, due_date, place_of_supply, status, template, notes, subtotal, tax_total,
		 total_amount, rounded_total, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.OrgID,
		inv.ClientID,
		inv.CompanyProfileID,
		inv.InvoiceNumber,
		inv.PublicUUID,
		inv.IssueDate,
		inv.DueDate,
		inv.PlaceOfSupply,
		inv.Status,
		inv.Template,
		inv.Notes,
		inv.Subtotal,
		inv.TaxTotal,
		inv.TotalAmount,
		inv.RoundedTotal,
		inv.Metadata,
		inv.CreatedAt,
		inv.UpdatedAt,
	).Error
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, lines []domain.InvoiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&lines).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	return r.findOne(ctx, db, invoiceColumns+` WHERE org_id = ? AND id = ?`, orgID, id)
}

func (r *repo) FindByPublicUUID(ctx context.Context, db *gorm.DB, publicUUID string) (*domain.Invoice, error) {
	return r.findOne(ctx, db, invoiceColumns+` WHERE public_uuid = ?`, publicUUID)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientID != 0 {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListLines(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]domain.InvoiceLine, error) {
	var lines []domain.InvoiceLine
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, invoice_id, position, description, quantity, unit, unit_price, hsn_sac,
		        tax_rate_id, tax_rate_percent, line_total, created_at
		 FROM invoice_lines
		 WHERE org_id = ? AND invoice_id = ?
		 ORDER BY position ASC, id ASC`,
		orgID,
		invoiceID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status domain.InvoiceStatus, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ? WHERE org_id = ? AND id = ?`,
		status,
		at,
		orgID,
		id,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	for _, stmt := range []string{
		`DELETE FROM payments WHERE org_id = ? AND invoice_id = ?`,
		`DELETE FROM invoice_lines WHERE org_id = ? AND invoice_id = ?`,
		`DELETE FROM invoices WHERE org_id = ? AND id = ?`,
	} {
		if err := db.WithContext(ctx).Exec(stmt, orgID, id).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) NextSequence(ctx context.Context, db *gorm.DB, orgID snowflake.ID, at time.Time) (int64, error) {
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_value": gorm.Expr("invoice_sequences.last_value + 1"),
			"updated_at": at,
		}),
	}).Create(&domain.InvoiceSequence{OrgID: orgID, LastValue: 1, UpdatedAt: at}).Error
	if err != nil {
		return 0, err
	}

	var seq int64
	err = db.WithContext(ctx).Raw(
		`SELECT last_value FROM invoice_sequences WHERE org_id = ?`,
		orgID,
	).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&inv).Error; err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}
