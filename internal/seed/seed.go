package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/gstbill/internal/companyprofile/domain"
	"github.com/smallbiznis/gstbill/internal/config"
	taxratedomain "github.com/smallbiznis/gstbill/internal/taxrate/domain"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
	"github.com/smallbiznis/gstbill/pkg/repository"
	"gorm.io/gorm"
)

// DefaultGSTRates are the slab percents every new organization starts with.
var DefaultGSTRates = []int64{5, 12, 18, 28}

// EnsureOrganization seeds the GST rate slabs and a default company profile
// built from defaults. Existing rows are left alone, so it can run on every
// start.
func EnsureOrganization(ctx context.Context, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID, defaults config.CompanyDefaults, now time.Time) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil || orgID == 0 {
		return errors.New("seed requires an id generator and organization")
	}

	rates := repository.ProvideStore[taxratedomain.TaxRate](db)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTaxRatesTx(ctx, rates.WithTrx(tx), node, orgID, now); err != nil {
			return err
		}
		return ensureCompanyProfileTx(ctx, tx, node, orgID, defaults, now)
	})
}

func ensureTaxRatesTx(ctx context.Context, rates repository.Repository[taxratedomain.TaxRate], node *snowflake.Node, orgID snowflake.ID, now time.Time) error {
	existing, err := rates.Find(ctx, &taxratedomain.TaxRate{OrgID: orgID})
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[item.Rate.String()] = struct{}{}
	}

	missing := make([]*taxratedomain.TaxRate, 0, len(DefaultGSTRates))
	for _, percent := range DefaultGSTRates {
		rate := decimal.NewFromInt(percent)
		if _, ok := seen[rate.String()]; ok {
			continue
		}
		missing = append(missing, &taxratedomain.TaxRate{
			ID:        node.Generate(),
			OrgID:     orgID,
			Name:      fmt.Sprintf("GST %s%%", rate.String()),
			Rate:      numeric.New(rate),
			IsEnabled: true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return rates.BatchCreate(ctx, missing)
}

func ensureCompanyProfileTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, defaults config.CompanyDefaults, now time.Time) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&companydomain.CompanyProfile{}).Where("org_id = ?", orgID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	profile := companydomain.CompanyProfile{
		ID:                 node.Generate(),
		OrgID:              orgID,
		Name:               defaults.Name,
		Address:            defaults.Address,
		State:              defaults.State,
		GSTIN:              defaults.GSTIN,
		BankName:           defaults.Bank.Name,
		BankBranch:         defaults.Bank.Branch,
		BankAccountNo:      defaults.Bank.AccountNo,
		BankIFSC:           defaults.Bank.IFSC,
		SealURL:            defaults.SealURL,
		SignatureURL:       defaults.SignatureURL,
		UPIQRURL:           defaults.UPIQRURL,
		PaymentTerms:       defaults.PaymentTerms,
		TermsAndConditions: defaults.TermsAndConditions,
		Currency:           defaults.Currency,
		IsDefault:          true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return tx.WithContext(ctx).Create(&profile).Error
}
