package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/gstbill/internal/clock"
	"github.com/smallbiznis/gstbill/internal/companyprofile/domain"
	"github.com/smallbiznis/gstbill/internal/companyprofile/repository"
	"github.com/smallbiznis/gstbill/internal/config"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:companyprofile_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.CompanyProfile{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Defaults: config.DefaultCompanyDefaults(),
		Repo:     repository.Provide(),
	})
	return svc, fake, orgcontext.WithOrgID(context.Background(), snowflake.ID(77))
}

func TestResolveFallsBackToConfiguredDefaults(t *testing.T) {
	svc, _, ctx := newTestService(t)

	profile, err := svc.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.True(t, profile.IsFallback())
	assert.Equal(t, "Demo Company", profile.Name)
	assert.Equal(t, "Tamil Nadu", profile.State)
	assert.Equal(t, "29ABCDE1234F1Z5", profile.GSTIN)
	assert.Equal(t, "₹", profile.Currency)
}

func TestResolveOrder(t *testing.T) {
	svc, fake, ctx := newTestService(t)

	first, err := svc.Create(ctx, domain.CreateRequest{Name: "First Co", State: "Kerala"})
	require.NoError(t, err)
	assert.Equal(t, "₹", first.Currency)

	resolved, err := svc.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, resolved.ID, "first profile wins without a default")

	fake.Advance(time.Minute)
	second, err := svc.Create(ctx, domain.CreateRequest{Name: "Second Co", State: "Karnataka", IsDefault: true})
	require.NoError(t, err)

	resolved, err = svc.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, second.ID, resolved.ID, "default beats first")

	resolved, err = svc.Resolve(ctx, &first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, resolved.ID, "explicit id beats default")

	missing := snowflake.ID(12345)
	resolved, err = svc.Resolve(ctx, &missing)
	require.NoError(t, err)
	assert.Equal(t, second.ID, resolved.ID)
}

func TestSetDefaultClearsOthers(t *testing.T) {
	svc, _, ctx := newTestService(t)

	a, err := svc.Create(ctx, domain.CreateRequest{Name: "A", IsDefault: true})
	require.NoError(t, err)
	b, err := svc.Create(ctx, domain.CreateRequest{Name: "B"})
	require.NoError(t, err)

	updated, err := svc.SetDefault(ctx, b.ID.String())
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)

	reloaded, err := svc.GetByID(ctx, a.ID.String())
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)

	_, err = svc.SetDefault(ctx, "424242")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, ctx := newTestService(t)

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Acme", State: "Tamil Nadu"})
	require.NoError(t, err)

	state := " Kerala "
	ifsc := "sbin0001234"
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID.String(), State: &state, BankIFSC: &ifsc})
	require.NoError(t, err)
	assert.Equal(t, "Kerala", updated.State)
	assert.Equal(t, "SBIN0001234", updated.BankIFSC)
	assert.Equal(t, "Acme", updated.Name)

	blank := ""
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID.String(), Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}
