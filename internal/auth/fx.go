package auth

import (
	"github.com/smallbiznis/kpi/internal/auth/repository"
	"github.com/smallbiznis/kpi/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
