package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/internal/clock"
	"github.com/smallbiznis/gstbill/internal/config"
	"github.com/smallbiznis/gstbill/internal/gst"
	invoicedomain "github.com/smallbiznis/gstbill/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/gstbill/internal/observability/metrics"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	paymentdomain "github.com/smallbiznis/gstbill/internal/payment/domain"
	"github.com/smallbiznis/gstbill/internal/ratelimit"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultInvoiceLockTTL = 10 * time.Second

type Params struct {
	fx.In

	DB          *gorm.DB
	Cfg         config.Config `optional:"true"`
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        paymentdomain.Repository
	InvoiceRepo invoicedomain.Repository
	Locker      *ratelimit.Locker   `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        paymentdomain.Repository
	invoiceRepo invoicedomain.Repository
	locker      *ratelimit.Locker
	lockTTL     time.Duration
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	lockTTL := time.Duration(p.Cfg.RateLimit.PaymentLockTTL) * time.Second
	if lockTTL <= 0 {
		lockTTL = defaultInvoiceLockTTL
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		clock:       c,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		locker:      p.Locker,
		lockTTL:     lockTTL,
		obsMetrics:  p.ObsMetrics,
	}
}

// Record stores a payment and moves the invoice status in the same
// transaction. The status is derived from the sum of all payments against the
// persisted rounded total.
func (s *Service) Record(ctx context.Context, req paymentdomain.RecordPaymentRequest) (paymentdomain.RecordPaymentResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return paymentdomain.RecordPaymentResponse{}, paymentdomain.ErrInvalidOrganization
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil || invoiceID <= 0 {
		return paymentdomain.RecordPaymentResponse{}, paymentdomain.ErrInvalidInvoiceID
	}

	amount, err := gst.ParseField("amount", req.Amount)
	if err != nil {
		return paymentdomain.RecordPaymentResponse{}, err
	}
	if !amount.IsPositive() || !numeric.ScaleAtMost(amount, 2) || !numeric.Fits(amount) {
		return paymentdomain.RecordPaymentResponse{}, paymentdomain.ErrInvalidAmount
	}
	method, ok := paymentdomain.ParseMethod(strings.ToLower(strings.TrimSpace(req.Method)))
	if !ok {
		return paymentdomain.RecordPaymentResponse{}, paymentdomain.ErrInvalidMethod
	}

	release, err := s.lockInvoice(ctx, invoiceID)
	if err != nil {
		return paymentdomain.RecordPaymentResponse{}, err
	}
	defer release()

	now := s.clock.Now()
	paidAt := now
	if req.PaidAt != nil && !req.PaidAt.IsZero() {
		paidAt = req.PaidAt.UTC()
	}

	var resp paymentdomain.RecordPaymentResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.invoiceRepo.FindByID(ctx, tx, orgID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return paymentdomain.ErrInvoiceNotFound
		}

		payment := paymentdomain.Payment{
			ID:        s.genID.Generate(),
			OrgID:     orgID,
			InvoiceID: invoiceID,
			Amount:    numeric.New(amount),
			PaidAt:    paidAt,
			Method:    method,
			Reference: strings.TrimSpace(req.Reference),
			Notes:     strings.TrimSpace(req.Notes),
			CreatedAt: now,
		}
		if err := s.repo.Insert(ctx, tx, &payment); err != nil {
			return err
		}

		paid, err := s.repo.SumByInvoice(ctx, tx, orgID, invoiceID)
		if err != nil {
			return err
		}
		status := paymentdomain.NextStatus(invoice.Status, paid, invoice.RoundedTotal.Decimal)
		if status != invoice.Status {
			if err := s.invoiceRepo.UpdateStatus(ctx, tx, orgID, invoiceID, status, now); err != nil {
				return err
			}
		}

		resp = paymentdomain.RecordPaymentResponse{
			Payment:       payment,
			InvoiceStatus: status,
			TotalPaid:     paid,
			BalanceDue:    invoice.RoundedTotal.Sub(paid),
		}
		return nil
	})
	if err != nil {
		return paymentdomain.RecordPaymentResponse{}, err
	}

	s.obsMetrics.RecordPayment(ctx, orgID.String(), string(resp.InvoiceStatus))
	s.log.Info("payment recorded",
		zap.String("org_id", orgID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.String("payment_id", resp.Payment.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("invoice_status", string(resp.InvoiceStatus)),
	)
	return resp, nil
}

func (s *Service) ListByInvoice(ctx context.Context, rawInvoiceID string) ([]paymentdomain.Payment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, paymentdomain.ErrInvalidOrganization
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(rawInvoiceID))
	if err != nil || invoiceID <= 0 {
		return nil, paymentdomain.ErrInvalidInvoiceID
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, s.db, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, paymentdomain.ErrInvoiceNotFound
	}

	items, err := s.repo.ListByInvoice(ctx, s.db, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []paymentdomain.Payment{}
	}
	return items, nil
}

// lockInvoice serializes payments per invoice across instances when redis is
// configured. A redis failure is logged and the payment proceeds on the
// database transaction alone.
func (s *Service) lockInvoice(ctx context.Context, invoiceID snowflake.ID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf("payment:invoice:%s", invoiceID.String())
	token, acquired, err := s.locker.TryLock(ctx, key, s.lockTTL)
	if err != nil {
		s.log.Warn("invoice payment lock unavailable", zap.String("invoice_id", invoiceID.String()), zap.Error(err))
		return func() {}, nil
	}
	if !acquired {
		return nil, paymentdomain.ErrPaymentInProgress
	}
	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn("release invoice payment lock", zap.String("invoice_id", invoiceID.String()), zap.Error(err))
		}
	}, nil
}
