package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gstbill/internal/clock"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	"github.com/smallbiznis/gstbill/internal/taxrate/domain"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
	"github.com/smallbiznis/gstbill/pkg/db/option"
	"github.com/smallbiznis/gstbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  repository.Repository[domain.TaxRate]
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  repository.Repository[domain.TaxRate]
}

func NewService(p ServiceParams) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Service{
		log:   p.Log.Named("taxrate.service"),
		genID: p.GenID,
		clock: c,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	opts := []option.QueryOption{option.WithOrder("name", false), option.WithOrder("id", false)}
	if req.IsEnabled != nil {
		enabled := *req.IsEnabled
		opts = append(opts, option.QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
			return db.Where("is_enabled = ?", enabled)
		}))
	}

	items, err := s.repo.Find(ctx, &domain.TaxRate{
		OrgID: orgID,
		Name:  strings.TrimSpace(req.Name),
	}, opts...)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	isEnabled := true
	if req.IsEnabled != nil {
		isEnabled = *req.IsEnabled
	}

	now := s.clock.Now()
	record := &domain.TaxRate{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		Name:        strings.TrimSpace(req.Name),
		Rate:        numeric.New(req.Rate),
		Description: trimOptional(req.Description),
		IsEnabled:   isEnabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info("tax rate created",
		zap.String("org_id", orgID.String()),
		zap.String("tax_rate_id", record.ID.String()),
		zap.String("rate", record.Rate.String()),
	)

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Rate != nil {
		item.Rate = numeric.New(*req.Rate)
	}
	if req.Description != nil {
		item.Description = trimOptional(req.Description)
	}
	item.UpdatedAt = s.clock.Now()
	if err := item.Validate(); err != nil {
		return nil, err
	}

	err = s.repo.Update(ctx, item.ID, map[string]any{
		"name":        item.Name,
		"rate":        item.Rate,
		"description": item.Description,
		"updated_at":  item.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

// Disable hides a rate from new invoices. Lines already issued keep their
// snapshotted percent.
func (s *Service) Disable(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	item.IsEnabled = false
	item.UpdatedAt = s.clock.Now()
	err = s.repo.Update(ctx, item.ID, map[string]any{
		"is_enabled": false,
		"updated_at": item.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Percents(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]decimal.Decimal, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	unique := make([]snowflake.ID, 0, len(ids))
	seen := make(map[snowflake.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return map[snowflake.ID]decimal.Decimal{}, nil
	}

	items, err := s.repo.Find(ctx, &domain.TaxRate{OrgID: orgID, IsEnabled: true},
		option.QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
			return db.Where("id IN ?", unique)
		}),
	)
	if err != nil {
		return nil, err
	}

	out := make(map[snowflake.ID]decimal.Decimal, len(items))
	for _, item := range items {
		out[item.ID] = item.Rate.Decimal
	}
	for _, id := range unique {
		if _, ok := out[id]; !ok {
			return nil, domain.ErrNotFound
		}
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, rawID string) (*domain.TaxRate, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id <= 0 {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindOne(ctx, &domain.TaxRate{ID: id, OrgID: orgID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func toResponse(rate *domain.TaxRate) domain.Response {
	return domain.Response{
		ID:             rate.ID.String(),
		OrganizationID: rate.OrgID.String(),
		Name:           rate.Name,
		Rate:           rate.Rate.Decimal,
		Description:    rate.Description,
		IsEnabled:      rate.IsEnabled,
		CreatedAt:      rate.CreatedAt,
		UpdatedAt:      rate.UpdatedAt,
	}
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
