package summary

import "go.uber.org/fx"

var Module = fx.Module("summary",
	fx.Provide(NewAggregator),
)
