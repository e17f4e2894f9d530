package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gstbill/internal/client/domain"
	"github.com/smallbiznis/gstbill/internal/client/repository"
	"github.com/smallbiznis/gstbill/internal/clock"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	"github.com/smallbiznis/gstbill/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

func setupService(t *testing.T) (domain.Service, *gorm.DB, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:client_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Client{}))
	require.NoError(t, db.Exec(`CREATE TABLE invoices (id INTEGER PRIMARY KEY, org_id INTEGER, client_id INTEGER)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, db, orgcontext.WithOrgID(context.Background(), snowflake.ID(42))
}

func TestCreateClientDefaults(t *testing.T) {
	svc, _, ctx := setupService(t)

	created, err := svc.Create(ctx, domain.CreateClientRequest{
		Name:  "  Acme Traders ",
		GSTIN: "33abcde1234f1z5",
		State: "Tamil Nadu",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Traders", created.Name)
	assert.Equal(t, "33ABCDE1234F1Z5", created.GSTIN)
	assert.Equal(t, fmt.Sprintf("CL-%d", time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC).UnixMilli()), created.ClientNumber)
	assert.True(t, created.OpeningBalance.IsZero())

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Tamil Nadu", got.State)
	assert.Equal(t, created.ClientNumber, got.ClientNumber)
}

func TestCreateClientValidation(t *testing.T) {
	svc, _, ctx := setupService(t)

	_, err := svc.Create(ctx, domain.CreateClientRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "A", Email: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "A", GSTIN: "12345"})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTIN)

	huge := decimal.RequireFromString("100000000000000000000")
	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "A", OpeningBalance: &huge})
	assert.ErrorIs(t, err, domain.ErrInvalidOpeningBalance)

	_, err = svc.Create(context.Background(), domain.CreateClientRequest{Name: "A"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestUpdateClientPartial(t *testing.T) {
	svc, _, ctx := setupService(t)

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", State: "Kerala", Email: "a@acme.in"})
	require.NoError(t, err)

	state := "Karnataka"
	balance := decimal.RequireFromString("1250.50")
	updated, err := svc.Update(ctx, domain.UpdateClientRequest{
		ID:             created.ID.String(),
		State:          &state,
		OpeningBalance: &balance,
	})
	require.NoError(t, err)
	assert.Equal(t, "Karnataka", updated.State)
	assert.Equal(t, "a@acme.in", updated.Email)
	assert.True(t, balance.Equal(updated.OpeningBalance.Decimal), updated.OpeningBalance.String())

	empty := ""
	_, err = svc.Update(ctx, domain.UpdateClientRequest{ID: created.ID.String(), Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestDeleteClientWithInvoicesIsRejected(t *testing.T) {
	svc, db, ctx := setupService(t)

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO invoices (id, org_id, client_id) VALUES (1, 42, ?)`, created.ID).Error)

	err = svc.Delete(ctx, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrHasInvoices)

	require.NoError(t, db.Exec(`DELETE FROM invoices`).Error)
	require.NoError(t, svc.Delete(ctx, created.ID.String()))

	_, err = svc.GetByID(ctx, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByIDIsScopedToOrganization(t *testing.T) {
	svc, _, ctx := setupService(t)

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)

	other := orgcontext.WithOrgID(context.Background(), snowflake.ID(7))
	_, err = svc.GetByID(other, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListClientsFiltersByNameAndState(t *testing.T) {
	svc, _, ctx := setupService(t)

	for _, req := range []domain.CreateClientRequest{
		{Name: "Acme Traders", State: "Tamil Nadu"},
		{Name: "Acme Logistics", State: "Kerala"},
		{Name: "Zenith Foods", State: "Tamil Nadu"},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, domain.ListClientRequest{Name: "ACME"})
	require.NoError(t, err)
	assert.Len(t, resp.Clients, 2)
	assert.False(t, resp.HasMore)

	resp, err = svc.List(ctx, domain.ListClientRequest{State: "tamil nadu"})
	require.NoError(t, err)
	assert.Len(t, resp.Clients, 2)

	resp, err = svc.List(ctx, domain.ListClientRequest{PageSize: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Clients, 1)
	assert.True(t, resp.HasMore)
	assert.NotEmpty(t, resp.NextPageToken)

	next, err := svc.List(ctx, domain.ListClientRequest{PageSize: 1, PageToken: resp.NextPageToken})
	require.NoError(t, err)
	require.Len(t, next.Clients, 1)
	assert.NotEqual(t, resp.Clients[0].ID, next.Clients[0].ID)

	_, err = svc.List(ctx, domain.ListClientRequest{PageSize: 1, PageToken: "not-a-cursor"})
	assert.ErrorIs(t, err, pagination.ErrInvalidPageToken)
}
