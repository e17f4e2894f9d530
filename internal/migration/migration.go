package migration

import (
	"errors"
	"fmt"

	clientdomain "github.com/smallbiznis/gstbill/internal/client/domain"
	companydomain "github.com/smallbiznis/gstbill/internal/companyprofile/domain"
	invoicedomain "github.com/smallbiznis/gstbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/gstbill/internal/payment/domain"
	taxratedomain "github.com/smallbiznis/gstbill/internal/taxrate/domain"
	"gorm.io/gorm"
)

// Models lists every persisted table.
func Models() []any {
	return []any{
		&clientdomain.Client{},
		&companydomain.CompanyProfile{},
		&taxratedomain.TaxRate{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLine{},
		&invoicedomain.InvoiceSequence{},
		&paymentdomain.Payment{},
	}
}

// EnsureSchema creates missing tables, columns and indexes. It never drops
// anything, so it is safe to run on every start.
func EnsureSchema(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
