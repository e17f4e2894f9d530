package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/gstbill/internal/client/domain"
	"github.com/smallbiznis/gstbill/internal/clock"
	companydomain "github.com/smallbiznis/gstbill/internal/companyprofile/domain"
	companyrepo "github.com/smallbiznis/gstbill/internal/companyprofile/repository"
	companyservice "github.com/smallbiznis/gstbill/internal/companyprofile/service"
	"github.com/smallbiznis/gstbill/internal/config"
	dashboarddomain "github.com/smallbiznis/gstbill/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/gstbill/internal/invoice/domain"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	paymentdomain "github.com/smallbiznis/gstbill/internal/payment/domain"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

func newDashboard(t *testing.T) (*gorm.DB, dashboarddomain.Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:dashboard_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&clientdomain.Client{},
		&companydomain.CompanyProfile{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(11)
	require.NoError(t, err)
	log := zap.NewNop()
	profiles := companyservice.New(companyservice.Params{
		DB: db, Log: log, GenID: node,
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		Defaults: config.DefaultCompanyDefaults(),
		Repo:     companyrepo.Provide(),
	})
	return db, NewService(Params{DB: db, Log: log, CompanySvc: profiles})
}

func seedInvoice(t *testing.T, db *gorm.DB, orgID, id snowflake.ID, status invoicedomain.InvoiceStatus, rounded string, day int) {
	t.Helper()
	at := time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
	total := decimal.RequireFromString(rounded)
	require.NoError(t, db.Create(&invoicedomain.Invoice{
		ID:            id,
		OrgID:         orgID,
		ClientID:      1,
		InvoiceNumber: fmt.Sprintf("INV-%d", id),
		PublicUUID:    uuid.NewString(),
		IssueDate:     at,
		Status:        status,
		Template:      invoicedomain.TemplateClassic,
		Subtotal:      numeric.New(total),
		TaxTotal:      numeric.New(decimal.Zero),
		TotalAmount:   numeric.New(total),
		RoundedTotal:  numeric.New(total),
		CreatedAt:     at,
		UpdatedAt:     at,
	}).Error)
}

func seedPayment(t *testing.T, db *gorm.DB, orgID, id, invoiceID snowflake.ID, amount string) {
	t.Helper()
	at := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&paymentdomain.Payment{
		ID:        id,
		OrgID:     orgID,
		InvoiceID: invoiceID,
		Amount:    numeric.New(decimal.RequireFromString(amount)),
		PaidAt:    at,
		Method:    paymentdomain.MethodUPI,
		CreatedAt: at,
	}).Error)
}

func TestSummarySumsIssuedRoundedTotals(t *testing.T) {
	db, svc := newDashboard(t)
	ctx := orgcontext.WithOrgID(context.Background(), snowflake.ID(77))

	require.NoError(t, db.Create(&clientdomain.Client{ID: 1, OrgID: 77, ClientNumber: "C-1", Name: "Ravi Stores"}).Error)
	require.NoError(t, db.Create(&clientdomain.Client{ID: 2, OrgID: 88, ClientNumber: "C-1", Name: "Elsewhere"}).Error)

	seedInvoice(t, db, 77, 101, invoicedomain.InvoiceStatusSent, "400", 1)
	seedInvoice(t, db, 77, 102, invoicedomain.InvoiceStatusDraft, "250", 2)
	seedInvoice(t, db, 77, 103, invoicedomain.InvoiceStatusPaid, "1180", 3)
	for i := 0; i < 4; i++ {
		seedInvoice(t, db, 77, snowflake.ID(104+i), invoicedomain.InvoiceStatusDraft, "10", 4+i)
	}
	seedInvoice(t, db, 88, 901, invoicedomain.InvoiceStatusSent, "99999", 1)

	seedPayment(t, db, 77, 201, 101, "150.50")
	seedPayment(t, db, 77, 202, 103, "1180")
	seedPayment(t, db, 88, 203, 901, "5")

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, "₹", summary.Currency)
	assert.Equal(t, int64(7), summary.InvoiceCount)
	assert.Equal(t, int64(1), summary.ClientCount)
	assert.True(t, summary.Receivable.Equal(decimal.RequireFromString("1580")), summary.Receivable.String())
	assert.True(t, summary.Received.Equal(decimal.RequireFromString("1330.50")), summary.Received.String())
	assert.True(t, summary.Pending.Equal(decimal.RequireFromString("249.50")), summary.Pending.String())

	require.Len(t, summary.RecentInvoices, dashboarddomain.RecentInvoiceLimit)
	assert.Equal(t, "INV-107", summary.RecentInvoices[0].InvoiceNumber)
	assert.Equal(t, "INV-103", summary.RecentInvoices[4].InvoiceNumber)
	assert.Equal(t, "PAID", summary.RecentInvoices[4].Status)
	assert.True(t, summary.RecentInvoices[4].RoundedTotal.Equal(decimal.NewFromInt(1180)))
}

func TestSummaryEmptyOrganization(t *testing.T) {
	_, svc := newDashboard(t)
	ctx := orgcontext.WithOrgID(context.Background(), snowflake.ID(5))

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.InvoiceCount)
	assert.True(t, summary.Pending.IsZero())
	assert.NotNil(t, summary.RecentInvoices)
	assert.Empty(t, summary.RecentInvoices)
}

func TestSummaryRequiresOrganization(t *testing.T) {
	_, svc := newDashboard(t)

	_, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, dashboarddomain.ErrInvalidOrganization)
}
