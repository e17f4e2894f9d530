package service

import (
	"context"

	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/gstbill/internal/client/domain"
	companydomain "github.com/smallbiznis/gstbill/internal/companyprofile/domain"
	dashboarddomain "github.com/smallbiznis/gstbill/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/gstbill/internal/invoice/domain"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	paymentdomain "github.com/smallbiznis/gstbill/internal/payment/domain"
	"github.com/smallbiznis/gstbill/pkg/db/option"
	"github.com/smallbiznis/gstbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	CompanySvc companydomain.Service
}

type Service struct {
	log        *zap.Logger
	invoices   repository.Repository[invoicedomain.Invoice]
	clients    repository.Repository[clientdomain.Client]
	payments   repository.Repository[paymentdomain.Payment]
	companySvc companydomain.Service
}

func NewService(p Params) dashboarddomain.Service {
	return &Service{
		log:        p.Log.Named("dashboard.service"),
		invoices:   repository.ProvideStore[invoicedomain.Invoice](p.DB),
		clients:    repository.ProvideStore[clientdomain.Client](p.DB),
		payments:   repository.ProvideStore[paymentdomain.Payment](p.DB),
		companySvc: p.CompanySvc,
	}
}

// Summary sums persisted rounded totals and payment amounts in decimal.
// Lines are never re-summed here.
func (s *Service) Summary(ctx context.Context) (dashboarddomain.Summary, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return dashboarddomain.Summary{}, dashboarddomain.ErrInvalidOrganization
	}

	invoiceCount, err := s.invoices.Count(ctx, &invoicedomain.Invoice{OrgID: orgID})
	if err != nil {
		return dashboarddomain.Summary{}, err
	}
	clientCount, err := s.clients.Count(ctx, &clientdomain.Client{OrgID: orgID})
	if err != nil {
		return dashboarddomain.Summary{}, err
	}

	invoices, err := s.invoices.Find(ctx, &invoicedomain.Invoice{OrgID: orgID})
	if err != nil {
		return dashboarddomain.Summary{}, err
	}
	receivable := decimal.Zero
	for _, inv := range invoices {
		if inv.Status == invoicedomain.InvoiceStatusDraft {
			continue
		}
		receivable = receivable.Add(inv.RoundedTotal.Decimal)
	}

	payments, err := s.payments.Find(ctx, &paymentdomain.Payment{OrgID: orgID})
	if err != nil {
		return dashboarddomain.Summary{}, err
	}
	received := decimal.Zero
	for _, p := range payments {
		received = received.Add(p.Amount.Decimal)
	}

	recent, err := s.invoices.Find(ctx, &invoicedomain.Invoice{OrgID: orgID},
		option.WithOrder("created_at", true),
		option.WithLimit(dashboarddomain.RecentInvoiceLimit),
	)
	if err != nil {
		return dashboarddomain.Summary{}, err
	}

	seller, err := s.companySvc.Resolve(ctx, nil)
	if err != nil {
		return dashboarddomain.Summary{}, err
	}

	summary := dashboarddomain.Summary{
		Currency:       seller.Currency,
		InvoiceCount:   invoiceCount,
		ClientCount:    clientCount,
		Receivable:     receivable,
		Received:       received,
		Pending:        receivable.Sub(received),
		RecentInvoices: make([]dashboarddomain.RecentInvoice, 0, len(recent)),
	}
	for _, inv := range recent {
		summary.RecentInvoices = append(summary.RecentInvoices, dashboarddomain.RecentInvoice{
			ID:            inv.ID.String(),
			InvoiceNumber: inv.InvoiceNumber,
			ClientID:      inv.ClientID.String(),
			Status:        string(inv.Status),
			IssueDate:     inv.IssueDate,
			RoundedTotal:  inv.RoundedTotal.Decimal,
		})
	}

	s.log.Debug("dashboard summary built",
		zap.String("org_id", orgID.String()),
		zap.Int64("invoices", invoiceCount),
		zap.String("pending", summary.Pending.String()),
	)
	return summary, nil
}
