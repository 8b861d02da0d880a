package collection

import (
	"github.com/smallbiznis/kpi/internal/collection/domain"
	"github.com/smallbiznis/kpi/internal/collection/service"
	"github.com/smallbiznis/kpi/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("collection.service",
	fx.Provide(repository.ProvideStore[domain.Collection]),
	fx.Provide(service.New),
)
