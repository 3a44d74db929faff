package counter

import (
	"github.com/ovenlight/orderboard/internal/counter/repository"
	"github.com/ovenlight/orderboard/internal/counter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("counter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
