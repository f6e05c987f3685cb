package extract

import "go.uber.org/fx"

var Module = fx.Module("extract",
	fx.Provide(NewExtractor),
)
