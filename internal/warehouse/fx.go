package warehouse

import "go.uber.org/fx"

var Module = fx.Module("warehouse",
	fx.Provide(NewMerger),
)
