package tag

import (
	"github.com/smallbiznis/kpi/internal/tag/domain"
	"github.com/smallbiznis/kpi/internal/tag/service"
	"github.com/smallbiznis/kpi/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tag.service",
	fx.Provide(repository.ProvideStore[domain.Tag]),
	fx.Provide(service.New),
)
