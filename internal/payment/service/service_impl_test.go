package service_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gstbill/internal/clock"
	"github.com/smallbiznis/gstbill/internal/gst"
	invoicedomain "github.com/smallbiznis/gstbill/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/gstbill/internal/invoice/repository"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	paymentdomain "github.com/smallbiznis/gstbill/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/gstbill/internal/payment/repository"
	paymentservice "github.com/smallbiznis/gstbill/internal/payment/service"
	"github.com/smallbiznis/gstbill/internal/ratelimit"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

const orgID = snowflake.ID(2002)

func setup(t *testing.T) (*gorm.DB, paymentdomain.Service, context.Context) {
	return setupWithLocker(t, nil)
}

func setupWithLocker(t *testing.T, locker *ratelimit.Locker) (*gorm.DB, paymentdomain.Service, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:payment_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&invoicedomain.Invoice{}, &paymentdomain.Payment{}))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	svc := paymentservice.NewService(paymentservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
		Repo:        paymentrepo.Provide(),
		InvoiceRepo: invoicerepo.Provide(),
		Locker:      locker,
	})
	return db, svc, orgcontext.WithOrgID(context.Background(), orgID)
}

func seedInvoice(t *testing.T, db *gorm.DB, id snowflake.ID, status invoicedomain.InvoiceStatus, rounded string) {
	t.Helper()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&invoicedomain.Invoice{
		ID:            id,
		OrgID:         orgID,
		ClientID:      1,
		InvoiceNumber: fmt.Sprintf("INV-%d", id),
		PublicUUID:    uuid.NewString(),
		IssueDate:     now,
		Status:        status,
		Template:      invoicedomain.TemplateClassic,
		Subtotal:      numeric.New(decimal.RequireFromString(rounded)),
		TaxTotal:      numeric.New(decimal.Zero),
		TotalAmount:   numeric.New(decimal.RequireFromString(rounded)),
		RoundedTotal:  numeric.New(decimal.RequireFromString(rounded)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}).Error)
}

func invoiceStatus(t *testing.T, db *gorm.DB, id snowflake.ID) invoicedomain.InvoiceStatus {
	t.Helper()
	var inv invoicedomain.Invoice
	require.NoError(t, db.First(&inv, "id = ?", id).Error)
	return inv.Status
}

func TestRecordMovesInvoiceThroughPartialToPaid(t *testing.T) {
	db, svc, ctx := setup(t)
	seedInvoice(t, db, 10, invoicedomain.InvoiceStatusSent, "400")

	resp, err := svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "10", Amount: "150.50", Method: "UPI", Reference: " UTR123 "})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPartiallyPaid, resp.InvoiceStatus)
	assert.Equal(t, paymentdomain.MethodUPI, resp.Payment.Method)
	assert.Equal(t, "UTR123", resp.Payment.Reference)
	assert.True(t, resp.BalanceDue.Equal(decimal.RequireFromString("249.50")))
	assert.Equal(t, invoicedomain.InvoiceStatusPartiallyPaid, invoiceStatus(t, db, 10))

	resp, err = svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "10", Amount: "249.50"})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, resp.InvoiceStatus)
	assert.True(t, resp.TotalPaid.Equal(decimal.NewFromInt(400)))
	assert.True(t, resp.BalanceDue.IsZero())
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, invoiceStatus(t, db, 10))

	items, err := svc.ListByInvoice(ctx, "10")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, paymentdomain.MethodCash, items[1].Method)
}

func TestRecordUsesProvidedPaidAt(t *testing.T) {
	db, svc, ctx := setup(t)
	seedInvoice(t, db, 11, invoicedomain.InvoiceStatusDraft, "100")

	paidAt := time.Date(2026, 2, 27, 15, 0, 0, 0, time.UTC)
	resp, err := svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "11", Amount: "100", PaidAt: &paidAt})
	require.NoError(t, err)
	assert.True(t, resp.Payment.PaidAt.Equal(paidAt))
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, resp.InvoiceStatus)
}

func TestRecordValidation(t *testing.T) {
	db, svc, ctx := setup(t)
	seedInvoice(t, db, 12, invoicedomain.InvoiceStatusSent, "100")

	_, err := svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "12", Amount: "0"})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)

	_, err = svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "12", Amount: "-5"})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)

	_, err = svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "12", Amount: "10.005"})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)

	_, err = svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "12", Amount: "100000000000000000000"})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)

	_, err = svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "12", Amount: "ten"})
	assert.ErrorIs(t, err, gst.ErrParse)

	_, err = svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "12", Amount: "10", Method: "barter"})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidMethod)

	_, err = svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "abc", Amount: "10"})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidInvoiceID)

	_, err = svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "999", Amount: "10"})
	assert.ErrorIs(t, err, paymentdomain.ErrInvoiceNotFound)

	_, err = svc.Record(context.Background(), paymentdomain.RecordPaymentRequest{InvoiceID: "12", Amount: "10"})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidOrganization)

	var count int64
	require.NoError(t, db.Model(&paymentdomain.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecordIsScopedToOrganization(t *testing.T) {
	db, svc, _ := setup(t)
	seedInvoice(t, db, 13, invoicedomain.InvoiceStatusSent, "100")

	other := orgcontext.WithOrgID(context.Background(), snowflake.ID(3003))
	_, err := svc.Record(other, paymentdomain.RecordPaymentRequest{InvoiceID: "13", Amount: "10"})
	assert.ErrorIs(t, err, paymentdomain.ErrInvoiceNotFound)

	_, err = svc.ListByInvoice(other, "13")
	assert.ErrorIs(t, err, paymentdomain.ErrInvoiceNotFound)
}

func TestRecordProceedsWhenLockBackendIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	db, svc, ctx := setupWithLocker(t, ratelimit.NewLocker(client))
	seedInvoice(t, db, 14, invoicedomain.InvoiceStatusSent, "50")

	resp, err := svc.Record(ctx, paymentdomain.RecordPaymentRequest{InvoiceID: "14", Amount: "50"})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, resp.InvoiceStatus)
}
