package service

import (
	"context"
	"errors"

	clientdomain "github.com/smallbiznis/gstbill/internal/client/domain"
	"github.com/smallbiznis/gstbill/internal/gst"
	invoicedomain "github.com/smallbiznis/gstbill/internal/invoice/domain"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	"go.uber.org/zap"
)

func (s *Service) Document(ctx context.Context, id string) (invoicedomain.DocumentView, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return invoicedomain.DocumentView{}, err
	}
	return s.buildDocument(ctx, invoice)
}

func (s *Service) PublicDocument(ctx context.Context, publicUUID string) (invoicedomain.DocumentView, error) {
	invoice, err := s.GetByPublicUUID(ctx, publicUUID)
	if err != nil {
		return invoicedomain.DocumentView{}, err
	}
	return s.buildDocument(orgcontext.WithOrgID(ctx, invoice.OrgID), invoice)
}

func (s *Service) RenderHTML(ctx context.Context, id string) (string, error) {
	doc, err := s.Document(ctx, id)
	if err != nil {
		return "", err
	}
	return s.render(doc)
}

func (s *Service) RenderPublicHTML(ctx context.Context, publicUUID string) (string, error) {
	doc, err := s.PublicDocument(ctx, publicUUID)
	if err != nil {
		return "", err
	}
	return s.render(doc)
}

func (s *Service) render(doc invoicedomain.DocumentView) (string, error) {
	if s.renderer == nil {
		return "", invoicedomain.ErrRendererNotConfigured
	}
	return s.renderer.RenderHTML(doc)
}

// buildDocument derives the tax split and the worded amount from the
// persisted totals. The seller state is read from the profile as it is now,
// so editing a profile's state changes the split on documents already issued.
func (s *Service) buildDocument(ctx context.Context, invoice invoicedomain.Invoice) (invoicedomain.DocumentView, error) {
	client, err := s.clientSvc.GetByID(ctx, invoice.ClientID.String())
	if err != nil {
		if errors.Is(err, clientdomain.ErrNotFound) {
			return invoicedomain.DocumentView{}, invoicedomain.ErrClientNotFound
		}
		return invoicedomain.DocumentView{}, err
	}

	seller, err := s.companySvc.Resolve(ctx, invoice.CompanyProfileID)
	if err != nil {
		return invoicedomain.DocumentView{}, err
	}

	split := gst.SplitTax(invoice.TaxTotal.Decimal, seller.State, client.State)

	wordsAmount := invoice.RoundedTotal.Decimal
	if invoice.Template == invoicedomain.TemplateTransportSlip {
		wordsAmount = invoice.Subtotal.Decimal
	}
	words := gst.WordsOrSentinel(wordsAmount)
	if words == gst.OverflowSentinel {
		words = ""
		s.metrics.RecordWordsOverflow(ctx, invoice.OrgID.String())
		s.log.Warn("amount too large for words",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("amount", wordsAmount.String()),
		)
	}

	lines := make([]invoicedomain.LineView, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		lines = append(lines, invoicedomain.LineView{
			Position:       line.Position,
			Description:    line.Description,
			HSNSAC:         line.HSNSAC,
			Quantity:       line.Quantity.String(),
			Unit:           line.Unit,
			UnitPrice:      gst.FormatCurrency(line.UnitPrice.Decimal),
			TaxRatePercent: line.TaxRatePercent.String(),
			TaxAmount:      gst.FormatCurrency(gst.LineTax(line.LineTotal.Decimal, line.TaxRatePercent.Decimal)),
			LineTotal:      gst.FormatCurrency(line.LineTotal.Decimal),
		})
	}

	totals := gst.Totals{
		Subtotal:     invoice.Subtotal.Decimal,
		TaxTotal:     invoice.TaxTotal.Decimal,
		TotalAmount:  invoice.TotalAmount.Decimal,
		RoundedTotal: invoice.RoundedTotal.Decimal,
	}

	return invoicedomain.DocumentView{
		Template: invoice.Template,
		Invoice: invoicedomain.InvoiceView{
			ID:            invoice.ID.String(),
			Number:        invoice.InvoiceNumber,
			PublicUUID:    invoice.PublicUUID,
			Status:        string(invoice.Status),
			IssueDate:     invoice.IssueDate,
			DueDate:       invoice.DueDate,
			PlaceOfSupply: invoice.PlaceOfSupply,
			Notes:         invoice.Notes,
		},
		Seller: invoicedomain.PartyView{
			Name:    seller.Name,
			Address: seller.Address,
			State:   seller.State,
			GSTIN:   seller.GSTIN,
		},
		Buyer: invoicedomain.PartyView{
			Name:            client.Name,
			Address:         client.BillingAddress,
			ShippingAddress: client.ShippingAddress,
			State:           client.State,
			GSTIN:           client.GSTIN,
			Email:           client.Email,
			Phone:           client.Phone,
		},
		Bank: invoicedomain.BankView{
			Name:      seller.BankName,
			Branch:    seller.BankBranch,
			AccountNo: seller.BankAccountNo,
			IFSC:      seller.BankIFSC,
		},
		Lines: lines,
		Totals: invoicedomain.TotalsView{
			Subtotal:     gst.FormatCurrency(totals.Subtotal),
			TaxTotal:     gst.FormatCurrency(totals.TaxTotal),
			CGST:         gst.FormatCurrency(split.CGST),
			SGST:         gst.FormatCurrency(split.SGST),
			IGST:         gst.FormatCurrency(split.IGST),
			TotalAmount:  gst.FormatCurrency(totals.TotalAmount),
			RoundOff:     gst.FormatCurrency(totals.RoundOff()),
			RoundedTotal: gst.FormatCurrency(totals.RoundedTotal),
		},
		Split: split,
		Words: words,

		Currency:           seller.Currency,
		PaymentTerms:       seller.PaymentTerms,
		TermsAndConditions: seller.TermsAndConditions,
		SealURL:            seller.SealURL,
		SignatureURL:       seller.SignatureURL,
		UPIQRURL:           seller.UPIQRURL,
		LogoURL:            seller.LogoURL,
	}, nil
}
