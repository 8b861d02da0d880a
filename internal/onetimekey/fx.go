package onetimekey

import (
	"github.com/smallbiznis/kpi/internal/onetimekey/domain"
	"github.com/smallbiznis/kpi/internal/onetimekey/service"
	"github.com/smallbiznis/kpi/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("onetimekey.service",
	fx.Provide(repository.ProvideStore[domain.OneTimeAuthenticationKey]),
	fx.Provide(service.New),
)
