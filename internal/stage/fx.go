package stage

import "go.uber.org/fx"

var Module = fx.Module("stage",
	fx.Provide(NewLoader),
)
