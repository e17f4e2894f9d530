package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertLines(ctx context.Context, db *gorm.DB, lines []InvoiceLine) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	FindByPublicUUID(ctx context.Context, db *gorm.DB, publicUUID string) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	ListLines(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]InvoiceLine, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status InvoiceStatus, at time.Time) error
	// Delete removes the invoice with its lines and payments.
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	// NextSequence must run inside the transaction that inserts the invoice.
	NextSequence(ctx context.Context, db *gorm.DB, orgID snowflake.ID, at time.Time) (int64, error)
}
