package store

import (
	"github.com/smallbiznis/loadstone/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("store",
	fx.Provide(
		func(cfg config.Config) Store {
			return NewFS(cfg.StoreDir)
		},
	),
)
