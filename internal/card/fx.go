package card

import "go.uber.org/fx"

var Module = fx.Module("card.renderer",
	fx.Provide(NewRenderer),
)
