package history

import "go.uber.org/fx"

var Module = fx.Module("history",
	fx.Provide(NewTracker),
)
