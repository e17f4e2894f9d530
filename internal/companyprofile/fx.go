package companyprofile

import (
	"github.com/smallbiznis/gstbill/internal/companyprofile/repository"
	"github.com/smallbiznis/gstbill/internal/companyprofile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("companyprofile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
