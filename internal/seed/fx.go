package seed

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/internal/clock"
	"github.com/smallbiznis/gstbill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg      config.Config
	Defaults config.CompanyDefaults
	DB       *gorm.DB
	GenID    *snowflake.Node
	Clock    clock.Clock
	Log      *zap.Logger
}

var Module = fx.Module("seed",
	fx.Invoke(func(p Params) error {
		if p.Cfg.SeedOrgID == 0 {
			return nil
		}
		orgID := snowflake.ID(p.Cfg.SeedOrgID)
		if err := EnsureOrganization(context.Background(), p.DB, p.GenID, orgID, p.Defaults, p.Clock.Now()); err != nil {
			return err
		}
		p.Log.Info("organization seeded", zap.String("org_id", orgID.String()))
		return nil
	}),
)
