package request

import (
	"github.com/procurehq/intake/internal/request/repository"
	"github.com/procurehq/intake/internal/request/service"
	"go.uber.org/fx"
)

var Module = fx.Module("request.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
