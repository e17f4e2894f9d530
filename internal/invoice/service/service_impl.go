package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/gstbill/internal/client/domain"
	"github.com/smallbiznis/gstbill/internal/clock"
	companydomain "github.com/smallbiznis/gstbill/internal/companyprofile/domain"
	"github.com/smallbiznis/gstbill/internal/gst"
	invoicedomain "github.com/smallbiznis/gstbill/internal/invoice/domain"
	invoiceformat "github.com/smallbiznis/gstbill/internal/invoice/format"
	"github.com/smallbiznis/gstbill/internal/invoice/render"
	"github.com/smallbiznis/gstbill/internal/observability/metrics"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	taxratedomain "github.com/smallbiznis/gstbill/internal/taxrate/domain"
	"github.com/smallbiznis/gstbill/pkg/db"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
	"github.com/smallbiznis/gstbill/pkg/db/option"
	"github.com/smallbiznis/gstbill/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     invoicedomain.Repository
	Renderer render.Renderer

	ClientSvc  clientdomain.Service
	CompanySvc companydomain.Service
	TaxRateSvc taxratedomain.Service

	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	repo     invoicedomain.Repository
	renderer render.Renderer

	clientSvc  clientdomain.Service
	companySvc companydomain.Service
	taxRateSvc taxratedomain.Service

	metrics *metrics.Metrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: c,

		repo:     p.Repo,
		renderer: p.Renderer,

		clientSvc:  p.ClientSvc,
		companySvc: p.CompanySvc,
		taxRateSvc: p.TaxRateSvc,

		metrics: p.Metrics,
	}
}

// Create validates the request, computes totals once and stores the invoice
// and its lines in a single transaction. The new invoice is a DRAFT.
func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	clientID, err := parseID(req.ClientID)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidClient
	}
	if len(req.Lines) == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidLines
	}
	tmpl, ok := invoicedomain.ParseTemplate(strings.TrimSpace(req.Template))
	if !ok {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidTemplate
	}

	var profileID *snowflake.ID
	if raw := strings.TrimSpace(req.CompanyProfileID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidCompanyProfile
		}
		if _, err := s.companySvc.GetByID(ctx, id.String()); err != nil {
			if errors.Is(err, companydomain.ErrNotFound) {
				return invoicedomain.Invoice{}, invoicedomain.ErrCompanyProfileNotFound
			}
			return invoicedomain.Invoice{}, err
		}
		profileID = &id
	}

	client, err := s.clientSvc.GetByID(ctx, clientID.String())
	if err != nil {
		if errors.Is(err, clientdomain.ErrNotFound) {
			return invoicedomain.Invoice{}, invoicedomain.ErrClientNotFound
		}
		return invoicedomain.Invoice{}, err
	}

	lines, inputs, err := s.buildLines(ctx, orgID, req.Lines)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	totals, err := gst.ComputeTotals(inputs)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if !numeric.Fits(totals.TotalAmount) {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidAmount
	}

	now := s.clock.Now()
	issueDate := now
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issueDate = req.IssueDate.UTC()
	}
	var dueDate *time.Time
	if req.DueDate != nil && !req.DueDate.IsZero() {
		due := req.DueDate.UTC()
		if due.Before(issueDate) {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidDueDate
		}
		dueDate = &due
	}
	placeOfSupply := strings.TrimSpace(req.PlaceOfSupply)
	if placeOfSupply == "" {
		placeOfSupply = client.State
	}
	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	invoice := invoicedomain.Invoice{
		ID:               s.genID.Generate(),
		OrgID:            orgID,
		ClientID:         client.ID,
		CompanyProfileID: profileID,
		InvoiceNumber:    strings.TrimSpace(req.InvoiceNumber),
		PublicUUID:       uuid.NewString(),
		IssueDate:        issueDate,
		DueDate:          dueDate,
		PlaceOfSupply:    placeOfSupply,
		Status:           invoicedomain.InvoiceStatusDraft,
		Template:         tmpl,
		Notes:            strings.TrimSpace(req.Notes),
		Subtotal:         numeric.New(totals.Subtotal),
		TaxTotal:         numeric.New(totals.TaxTotal),
		TotalAmount:      numeric.New(totals.TotalAmount),
		RoundedTotal:     numeric.New(totals.RoundedTotal),
		Metadata:         metadata,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for i := range lines {
		lines[i].InvoiceID = invoice.ID
		lines[i].CreatedAt = now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if invoice.InvoiceNumber == "" {
			seq, err := s.repo.NextSequence(ctx, tx, orgID, now)
			if err != nil {
				return err
			}
			number, err := invoiceformat.FormatInvoiceNumber(invoiceformat.DefaultInvoiceNumberTemplate, issueDate, seq)
			if err != nil {
				return err
			}
			invoice.InvoiceNumber = number
		}

		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return invoicedomain.ErrDuplicateInvoiceNumber
			}
			return err
		}
		return s.repo.InsertLines(ctx, tx, lines)
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoice.Lines = lines
	s.metrics.RecordInvoiceCreated(ctx, orgID.String(), string(invoice.Template), invoice.RoundedTotal.InexactFloat64())
	s.log.Info("invoice created",
		zap.String("org_id", orgID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("rounded_total", gst.FormatCurrency(invoice.RoundedTotal.Decimal)),
		zap.Int("lines", len(lines)),
	)
	return invoice, nil
}

func (s *Service) buildLines(ctx context.Context, orgID snowflake.ID, reqs []invoicedomain.CreateInvoiceLineRequest) ([]invoicedomain.InvoiceLine, []gst.LineInput, error) {
	lines := make([]invoicedomain.InvoiceLine, 0, len(reqs))
	rateIDs := make([]snowflake.ID, 0, len(reqs))

	for i, item := range reqs {
		description := strings.TrimSpace(item.Description)
		if description == "" {
			return nil, nil, invoicedomain.ErrInvalidDescription
		}
		qty, err := gst.ParseField("quantity", item.Quantity)
		if err != nil {
			return nil, nil, err
		}
		if !numeric.ScaleAtMost(qty, invoicedomain.MaxQuantityScale) {
			return nil, nil, invoicedomain.ErrInvalidQuantity
		}
		price, err := gst.ParseField("unit_price", item.UnitPrice)
		if err != nil {
			return nil, nil, err
		}
		if !numeric.ScaleAtMost(price, invoicedomain.MaxUnitPriceScale) {
			return nil, nil, invoicedomain.ErrInvalidUnitPrice
		}
		lineTotal := gst.LineAmount(qty, price)
		if !numeric.Fits(lineTotal) {
			return nil, nil, invoicedomain.ErrInvalidAmount
		}

		line := invoicedomain.InvoiceLine{
			ID:             s.genID.Generate(),
			OrgID:          orgID,
			Position:       i + 1,
			Description:    description,
			Quantity:       numeric.New(qty),
			Unit:           strings.TrimSpace(item.Unit),
			UnitPrice:      numeric.New(price),
			HSNSAC:         strings.TrimSpace(item.HSNSAC),
			TaxRatePercent: numeric.New(decimal.Zero),
			LineTotal:      numeric.New(lineTotal),
		}
		if raw := strings.TrimSpace(item.TaxRateID); raw != "" {
			rateID, err := parseID(raw)
			if err != nil {
				return nil, nil, invoicedomain.ErrInvalidTaxRateID
			}
			line.TaxRateID = &rateID
			rateIDs = append(rateIDs, rateID)
		}
		lines = append(lines, line)
	}

	percents, err := s.taxRateSvc.Percents(ctx, rateIDs)
	if err != nil {
		if errors.Is(err, taxratedomain.ErrNotFound) {
			return nil, nil, invoicedomain.ErrTaxRateNotFound
		}
		return nil, nil, err
	}

	inputs := make([]gst.LineInput, 0, len(lines))
	for i := range lines {
		if lines[i].TaxRateID != nil {
			lines[i].TaxRatePercent = numeric.New(percents[*lines[i].TaxRateID])
		}
		inputs = append(inputs, gst.LineInput{
			Quantity:       lines[i].Quantity.Decimal,
			UnitPrice:      lines[i].UnitPrice.Decimal,
			TaxRatePercent: lines[i].TaxRatePercent.Decimal,
		})
	}
	return lines, inputs, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidInvoiceID
	}

	item, err := s.load(ctx, s.db, orgID, invoiceID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	lines, err := s.repo.ListLines(ctx, s.db, orgID, invoiceID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	item.Lines = lines
	return *item, nil
}

// GetByPublicUUID looks an invoice up without an organization in context.
func (s *Service) GetByPublicUUID(ctx context.Context, publicUUID string) (invoicedomain.Invoice, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(publicUUID))
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}

	item, err := s.repo.FindByPublicUUID(ctx, s.db, parsed.String())
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if item == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}
	lines, err := s.repo.ListLines(ctx, s.db, item.OrgID, item.ID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	item.Lines = lines
	return *item, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	filter := invoicedomain.ListInvoiceFilter{}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		if !validStatus(invoicedomain.InvoiceStatus(status)) {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidStatus
		}
		filter.Status = invoicedomain.InvoiceStatus(status)
	}
	if raw := strings.TrimSpace(req.ClientID); raw != "" {
		clientID, err := parseID(raw)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidClient
		}
		filter.ClientID = clientID
	}

	pageSize := int32(option.NormalizePageSize(int(req.PageSize)))
	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(inv *invoicedomain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        inv.ID.String(),
			CreatedAt: inv.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	return invoicedomain.ListInvoiceResponse{PageInfo: *pageInfo, Invoices: invoices}, nil
}

// Delete removes the invoice together with its lines and payments.
func (s *Service) Delete(ctx context.Context, id string) error {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return err
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.ErrInvalidInvoiceID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.load(ctx, tx, orgID, invoiceID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, orgID, invoiceID)
	})
	if err != nil {
		return err
	}

	s.log.Info("invoice deleted",
		zap.String("org_id", orgID.String()),
		zap.String("invoice_id", invoiceID.String()),
	)
	return nil
}

// MarkSent moves a DRAFT invoice to SENT.
func (s *Service) MarkSent(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidInvoiceID
	}

	var updated *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.load(ctx, tx, orgID, invoiceID)
		if err != nil {
			return err
		}
		if item.Status != invoicedomain.InvoiceStatusDraft {
			return invoicedomain.ErrInvoiceNotDraft
		}
		now := s.clock.Now()
		if err := s.repo.UpdateStatus(ctx, tx, orgID, invoiceID, invoicedomain.InvoiceStatusSent, now); err != nil {
			return err
		}
		item.Status = invoicedomain.InvoiceStatusSent
		item.UpdatedAt = now
		updated = item
		return nil
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return *updated, nil
}

func (s *Service) load(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*invoicedomain.Invoice, error) {
	item, err := s.repo.FindByID(ctx, db, orgID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return item, nil
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, invoicedomain.ErrInvalidOrganization
	}
	return orgID, nil
}

func validStatus(status invoicedomain.InvoiceStatus) bool {
	switch status {
	case invoicedomain.InvoiceStatusDraft,
		invoicedomain.InvoiceStatusSent,
		invoicedomain.InvoiceStatusPartiallyPaid,
		invoicedomain.InvoiceStatusPaid:
		return true
	default:
		return false
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
