package application

import (
	"github.com/smallbiznis/kpi/internal/application/domain"
	"github.com/smallbiznis/kpi/internal/application/service"
	"github.com/smallbiznis/kpi/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("application.service",
	fx.Provide(repository.ProvideStore[domain.AuthorizedApplication]),
	fx.Provide(service.New),
)
