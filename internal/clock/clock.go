package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts the current time so aggregation results stay deterministic
// under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystem returns the wall clock, normalized to UTC.
func NewSystem() Clock {
	return systemClock{}
}

// Module provides the system clock to the fx graph.
var Module = fx.Module("clock",
	fx.Provide(NewSystem),
)
