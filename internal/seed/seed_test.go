package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	companydomain "github.com/smallbiznis/gstbill/internal/companyprofile/domain"
	"github.com/smallbiznis/gstbill/internal/config"
	"github.com/smallbiznis/gstbill/internal/migration"
	taxratedomain "github.com/smallbiznis/gstbill/internal/taxrate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnsureOrganizationIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.EnsureSchema(db))

	node, err := snowflake.NewNode(11)
	require.NoError(t, err)
	orgID := snowflake.ID(4004)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	defaults := config.DefaultCompanyDefaults()
	require.NoError(t, EnsureOrganization(context.Background(), db, node, orgID, defaults, now))
	require.NoError(t, EnsureOrganization(context.Background(), db, node, orgID, defaults, now))

	var rates []taxratedomain.TaxRate
	require.NoError(t, db.Where("org_id = ?", orgID).Find(&rates).Error)
	require.Len(t, rates, len(DefaultGSTRates))
	byName := map[string]taxratedomain.TaxRate{}
	for _, rate := range rates {
		byName[rate.Name] = rate
	}
	require.Contains(t, byName, "GST 5%")
	require.Contains(t, byName, "GST 28%")
	assert.Equal(t, "28", byName["GST 28%"].Rate.String())
	assert.True(t, byName["GST 5%"].IsEnabled)

	var profiles []companydomain.CompanyProfile
	require.NoError(t, db.Where("org_id = ?", orgID).Find(&profiles).Error)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Demo Company", profiles[0].Name)
	assert.Equal(t, "Tamil Nadu", profiles[0].State)
	assert.True(t, profiles[0].IsDefault)
}

func TestEnsureOrganizationRequiresInputs(t *testing.T) {
	assert.Error(t, EnsureOrganization(context.Background(), nil, nil, 1, config.CompanyDefaults{}, time.Now()))
}
