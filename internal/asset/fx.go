package asset

import (
	"github.com/smallbiznis/kpi/internal/asset/domain"
	"github.com/smallbiznis/kpi/internal/asset/service"
	"github.com/smallbiznis/kpi/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("asset.service",
	fx.Provide(repository.ProvideStore[domain.SurveyAsset]),
	fx.Provide(repository.ProvideStore[domain.AssetVersion]),
	fx.Provide(service.New),
)
