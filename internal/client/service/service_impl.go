package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gstbill/internal/client/domain"
	"github.com/smallbiznis/gstbill/internal/clock"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
	"github.com/smallbiznis/gstbill/pkg/db/option"
	"github.com/smallbiznis/gstbill/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		clock: c,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Client{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Client{}, domain.ErrInvalidEmail
	}
	gstin, err := normalizeGSTIN(req.GSTIN)
	if err != nil {
		return domain.Client{}, err
	}

	now := s.clock.Now()
	number := strings.TrimSpace(req.ClientNumber)
	if number == "" {
		number = fmt.Sprintf("CL-%d", now.UnixMilli())
	}
	opening := decimal.Zero
	if req.OpeningBalance != nil {
		if !numeric.Fits(*req.OpeningBalance) {
			return domain.Client{}, domain.ErrInvalidOpeningBalance
		}
		opening = *req.OpeningBalance
	}
	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	client := domain.Client{
		ID:              s.genID.Generate(),
		OrgID:           orgID,
		ClientNumber:    number,
		Name:            name,
		Email:           email,
		Phone:           strings.TrimSpace(req.Phone),
		GSTIN:           gstin,
		BillingAddress:  strings.TrimSpace(req.BillingAddress),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		State:           strings.TrimSpace(req.State),
		OpeningBalance:  numeric.New(opening),
		Metadata:        metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}

	s.log.Info("client created",
		zap.String("org_id", orgID.String()),
		zap.String("client_id", client.ID.String()),
	)
	return client, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Client{}, domain.ErrInvalidOrganization
	}
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Client{}, err
	}
	if existing == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.Contains(email, "@") {
			return domain.Client{}, domain.ErrInvalidEmail
		}
		fields["email"] = email
	}
	if req.GSTIN != nil {
		gstin, err := normalizeGSTIN(*req.GSTIN)
		if err != nil {
			return domain.Client{}, err
		}
		fields["gstin"] = gstin
	}
	setTrimmed(fields, "phone", req.Phone)
	setTrimmed(fields, "billing_address", req.BillingAddress)
	setTrimmed(fields, "shipping_address", req.ShippingAddress)
	setTrimmed(fields, "state", req.State)
	if req.OpeningBalance != nil {
		if !numeric.Fits(*req.OpeningBalance) {
			return domain.Client{}, domain.ErrInvalidOpeningBalance
		}
		fields["opening_balance"] = numeric.New(*req.OpeningBalance)
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, orgID, id, fields); err != nil {
			return domain.Client{}, err
		}
	}

	updated, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Client{}, err
	}
	if updated == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *updated, nil
}

// Delete removes a client that has never been invoiced.
func (s *Service) Delete(ctx context.Context, rawID string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		count, err := s.repo.CountInvoices(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrHasInvoices
		}
		return s.repo.Delete(ctx, tx, orgID, id)
	})
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Client, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Client{}, domain.ErrInvalidOrganization
	}
	id, err := parseID(rawID)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListClientResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := int32(option.NormalizePageSize(int(req.PageSize)))

	items, err := s.repo.List(ctx, s.db, orgID, domain.ListClientFilter{
		Name:  strings.ToLower(strings.TrimSpace(req.Name)),
		State: strings.ToLower(strings.TrimSpace(req.State)),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(c *domain.Client) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        c.ID.String(),
			CreatedAt: c.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}

	return domain.ListClientResponse{PageInfo: *pageInfo, Clients: clients}, nil
}

func normalizeGSTIN(value string) (string, error) {
	gstin := strings.ToUpper(strings.TrimSpace(value))
	if gstin == "" {
		return "", nil
	}
	if !gstinPattern.MatchString(gstin) {
		return "", domain.ErrInvalidGSTIN
	}
	return gstin, nil
}

func setTrimmed(fields map[string]any, column string, value *string) {
	if value != nil {
		fields[column] = strings.TrimSpace(*value)
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
