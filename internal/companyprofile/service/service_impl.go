package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/internal/clock"
	"github.com/smallbiznis/gstbill/internal/companyprofile/domain"
	"github.com/smallbiznis/gstbill/internal/config"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Defaults config.CompanyDefaults
	Repo     domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	defaults config.CompanyDefaults
	repo     domain.Repository
}

func New(p Params) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("companyprofile.service"),
		genID:    p.GenID,
		clock:    c,
		defaults: p.Defaults,
		repo:     p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.CompanyProfile, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.CompanyProfile{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CompanyProfile{}, domain.ErrInvalidName
	}
	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = s.defaults.Currency
	}

	now := s.clock.Now()
	profile := domain.CompanyProfile{
		ID:                 s.genID.Generate(),
		OrgID:              orgID,
		Name:               name,
		Address:            strings.TrimSpace(req.Address),
		State:              strings.TrimSpace(req.State),
		GSTIN:              strings.ToUpper(strings.TrimSpace(req.GSTIN)),
		BankName:           strings.TrimSpace(req.BankName),
		BankBranch:         strings.TrimSpace(req.BankBranch),
		BankAccountNo:      strings.TrimSpace(req.BankAccountNo),
		BankIFSC:           strings.ToUpper(strings.TrimSpace(req.BankIFSC)),
		SealURL:            strings.TrimSpace(req.SealURL),
		SignatureURL:       strings.TrimSpace(req.SignatureURL),
		UPIQRURL:           strings.TrimSpace(req.UPIQRURL),
		LogoURL:            strings.TrimSpace(req.LogoURL),
		PaymentTerms:       strings.TrimSpace(req.PaymentTerms),
		TermsAndConditions: strings.TrimSpace(req.TermsAndConditions),
		Currency:           currency,
		IsDefault:          req.IsDefault,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if profile.IsDefault {
			if err := s.repo.ClearDefault(ctx, tx, orgID); err != nil {
				return err
			}
		}
		return s.repo.Insert(ctx, tx, &profile)
	})
	if err != nil {
		return domain.CompanyProfile{}, err
	}

	s.log.Info("company profile created",
		zap.String("org_id", orgID.String()),
		zap.String("company_profile_id", profile.ID.String()),
		zap.Bool("is_default", profile.IsDefault),
	)
	return profile, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.CompanyProfile, error) {
	orgID, id, err := s.scope(ctx, req.ID)
	if err != nil {
		return domain.CompanyProfile{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	if existing == nil {
		return domain.CompanyProfile{}, domain.ErrNotFound
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return domain.CompanyProfile{}, domain.ErrInvalidName
	}

	fields := map[string]any{}
	for column, value := range map[string]*string{
		"name":                 req.Name,
		"address":              req.Address,
		"state":                req.State,
		"bank_name":            req.BankName,
		"bank_branch":          req.BankBranch,
		"bank_account_no":      req.BankAccountNo,
		"seal_url":             req.SealURL,
		"signature_url":        req.SignatureURL,
		"upi_qr_url":           req.UPIQRURL,
		"logo_url":             req.LogoURL,
		"payment_terms":        req.PaymentTerms,
		"terms_and_conditions": req.TermsAndConditions,
		"currency":             req.Currency,
	} {
		if value != nil {
			fields[column] = strings.TrimSpace(*value)
		}
	}
	if req.GSTIN != nil {
		fields["gstin"] = strings.ToUpper(strings.TrimSpace(*req.GSTIN))
	}
	if req.BankIFSC != nil {
		fields["bank_ifsc"] = strings.ToUpper(strings.TrimSpace(*req.BankIFSC))
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, orgID, id, fields); err != nil {
			return domain.CompanyProfile{}, err
		}
	}

	return s.get(ctx, s.db, orgID, id)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.CompanyProfile, error) {
	orgID, id, err := s.scope(ctx, rawID)
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	return s.get(ctx, s.db, orgID, id)
}

func (s *Service) List(ctx context.Context) ([]domain.CompanyProfile, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	items, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.CompanyProfile, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		profiles = append(profiles, *item)
	}
	return profiles, nil
}

// SetDefault makes one profile the organization default, clearing the flag
// on every other profile in the same transaction.
func (s *Service) SetDefault(ctx context.Context, rawID string) (domain.CompanyProfile, error) {
	orgID, id, err := s.scope(ctx, rawID)
	if err != nil {
		return domain.CompanyProfile{}, err
	}

	var profile domain.CompanyProfile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.get(ctx, tx, orgID, id); err != nil {
			return err
		}
		if err := s.repo.ClearDefault(ctx, tx, orgID); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, orgID, id, map[string]any{
			"is_default": true,
			"updated_at": s.clock.Now(),
		}); err != nil {
			return err
		}
		profile, err = s.get(ctx, tx, orgID, id)
		return err
	})
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	return profile, nil
}

func (s *Service) Resolve(ctx context.Context, id *snowflake.ID) (domain.CompanyProfile, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.CompanyProfile{}, domain.ErrInvalidOrganization
	}

	if id != nil && *id != 0 {
		profile, err := s.repo.FindByID(ctx, s.db, orgID, *id)
		if err != nil {
			return domain.CompanyProfile{}, err
		}
		if profile != nil {
			return *profile, nil
		}
		s.log.Warn("company profile missing, falling back",
			zap.String("org_id", orgID.String()),
			zap.String("company_profile_id", id.String()),
		)
	}

	profile, err := s.repo.FindDefault(ctx, s.db, orgID)
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	if profile != nil {
		return *profile, nil
	}

	profile, err = s.repo.FindFirst(ctx, s.db, orgID)
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	if profile != nil {
		return *profile, nil
	}

	return s.fallback(orgID), nil
}

func (s *Service) fallback(orgID snowflake.ID) domain.CompanyProfile {
	d := s.defaults
	return domain.CompanyProfile{
		OrgID:              orgID,
		Name:               d.Name,
		Address:            d.Address,
		State:              d.State,
		GSTIN:              d.GSTIN,
		BankName:           d.Bank.Name,
		BankBranch:         d.Bank.Branch,
		BankAccountNo:      d.Bank.AccountNo,
		BankIFSC:           d.Bank.IFSC,
		SealURL:            d.SealURL,
		SignatureURL:       d.SignatureURL,
		UPIQRURL:           d.UPIQRURL,
		PaymentTerms:       d.PaymentTerms,
		TermsAndConditions: d.TermsAndConditions,
		Currency:           d.Currency,
		IsDefault:          true,
	}
}

func (s *Service) get(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (domain.CompanyProfile, error) {
	profile, err := s.repo.FindByID(ctx, db, orgID, id)
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	if profile == nil {
		return domain.CompanyProfile{}, domain.ErrNotFound
	}
	return *profile, nil
}

func (s *Service) scope(ctx context.Context, rawID string) (snowflake.ID, snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, 0, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id <= 0 {
		return 0, 0, domain.ErrInvalidID
	}
	return orgID, id, nil
}
