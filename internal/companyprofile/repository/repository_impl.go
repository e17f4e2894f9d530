package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/internal/companyprofile/domain"
	"gorm.io/gorm"
)

const selectColumns = `SELECT id, org_id, name, address, state, gstin, bank_name, bank_branch,
	 bank_account_no, bank_ifsc, seal_url, signature_url, upi_qr_url, logo_url, payment_terms,
	 terms_and_conditions, currency, is_default, created_at, updated_at
	 FROM company_profiles`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *domain.CompanyProfile) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO company_profiles (id, org_id, name, address, state, gstin, bank_name, bank_branch,
		 bank_account_no, bank_ifsc, seal_url, signature_url, upi_qr_url, logo_url, payment_terms,
		 terms_and_conditions, currency, is_default, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.OrgID,
		p.Name,
		p.Address,
		p.State,
		p.GSTIN,
		p.BankName,
		p.BankBranch,
		p.BankAccountNo,
		p.BankIFSC,
		p.SealURL,
		p.SignatureURL,
		p.UPIQRURL,
		p.LogoURL,
		p.PaymentTerms,
		p.TermsAndConditions,
		p.Currency,
		p.IsDefault,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.CompanyProfile, error) {
	return r.findOne(ctx, db, selectColumns+` WHERE org_id = ? AND id = ?`, orgID, id)
}

func (r *repo) FindDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*domain.CompanyProfile, error) {
	return r.findOne(ctx, db, selectColumns+` WHERE org_id = ? AND is_default = ? ORDER BY id ASC LIMIT 1`, orgID, true)
}

func (r *repo) FindFirst(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*domain.CompanyProfile, error) {
	return r.findOne(ctx, db, selectColumns+` WHERE org_id = ? ORDER BY created_at ASC, id ASC LIMIT 1`, orgID)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*domain.CompanyProfile, error) {
	var items []*domain.CompanyProfile
	err := db.WithContext(ctx).Raw(
		selectColumns+` WHERE org_id = ? ORDER BY is_default DESC, created_at ASC, id ASC`,
		orgID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.CompanyProfile{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(fields).Error
}

func (r *repo) ClearDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE company_profiles SET is_default = ? WHERE org_id = ? AND is_default = ?`,
		false,
		orgID,
		true,
	).Error
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.CompanyProfile, error) {
	var profile domain.CompanyProfile
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&profile).Error; err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, nil
	}
	return &profile, nil
}
