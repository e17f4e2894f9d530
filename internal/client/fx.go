package client

import (
	"github.com/smallbiznis/gstbill/internal/client/repository"
	"github.com/smallbiznis/gstbill/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
