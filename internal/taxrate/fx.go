package taxrate

import (
	"github.com/smallbiznis/gstbill/internal/taxrate/repository"
	"github.com/smallbiznis/gstbill/internal/taxrate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxrate.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
