// Package customer wires the billing registry and its snapshot store.
package customer

import (
	"context"

	"github.com/Cab6701/WaterService/internal/customer/domain"
	"github.com/Cab6701/WaterService/internal/customer/registry"
	"github.com/Cab6701/WaterService/internal/customer/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("customer",
	fx.Provide(repository.Provide),
	fx.Provide(registry.New),
	fx.Provide(func(r *registry.Registry) domain.Service { return r }),
	fx.Invoke(func(lc fx.Lifecycle, r *registry.Registry) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return r.Load(ctx)
			},
		})
	}),
)
