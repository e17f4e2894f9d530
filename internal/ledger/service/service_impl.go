package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/gstbill/internal/client/domain"
	ledgerdomain "github.com/smallbiznis/gstbill/internal/ledger/domain"
	"github.com/smallbiznis/gstbill/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      ledgerdomain.Repository
	ClientSvc clientdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      ledgerdomain.Repository
	clientSvc clientdomain.Service
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("ledger.service"),
		repo:      p.Repo,
		clientSvc: p.ClientSvc,
	}
}

// ClientLedger reads only persisted rounded totals and payment amounts. Lines
// are never re-summed here.
func (s *Service) ClientLedger(ctx context.Context, rawClientID string) (ledgerdomain.ClientLedger, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return ledgerdomain.ClientLedger{}, ledgerdomain.ErrInvalidOrganization
	}
	clientID, err := snowflake.ParseString(strings.TrimSpace(rawClientID))
	if err != nil || clientID <= 0 {
		return ledgerdomain.ClientLedger{}, ledgerdomain.ErrInvalidClientID
	}

	client, err := s.clientSvc.GetByID(ctx, clientID.String())
	if err != nil {
		if errors.Is(err, clientdomain.ErrNotFound) {
			return ledgerdomain.ClientLedger{}, ledgerdomain.ErrClientNotFound
		}
		return ledgerdomain.ClientLedger{}, err
	}

	invoices, err := s.repo.ListIssuedInvoices(ctx, s.db, orgID, clientID)
	if err != nil {
		return ledgerdomain.ClientLedger{}, err
	}
	ids := make([]snowflake.ID, 0, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
	}
	payments, err := s.repo.ListPayments(ctx, s.db, orgID, ids)
	if err != nil {
		return ledgerdomain.ClientLedger{}, err
	}

	ledger := ledgerdomain.BuildLedger(client.OpeningBalance.Decimal, invoices, payments)
	ledger.ClientID = client.ID.String()
	ledger.ClientName = client.Name

	s.log.Debug("client ledger built",
		zap.String("org_id", orgID.String()),
		zap.String("client_id", ledger.ClientID),
		zap.Int("rows", len(ledger.Rows)),
	)
	return ledger, nil
}
