// Package strategy defines the decision unit a backtest drives bar by bar,
// plus the built-in strategy variants. Strategies read prices and indicators
// only at indices at or before the current bar and never mutate account
// state; they communicate through order intents.
package strategy

import (
	"github.com/rxtech-lab/barsim/internal/indicator"
	"github.com/rxtech-lab/barsim/internal/series"
	"github.com/rxtech-lab/barsim/internal/types"
)

// Context carries everything a strategy may consult when deciding on a bar.
// Account is a copy; mutating it has no effect on the engine.
type Context struct {
	// Series is the price series being replayed.
	Series *series.Series
	// Indicators resolves and caches indicator computations.
	Indicators *indicator.Engine
	// Account is a read-only snapshot of cash and the open position.
	Account types.Account
}

func indicatorParams(period int) indicator.Params {
	return indicator.Params{"period": float64(period)}
}

// Strategy is the polymorphic decision interface. OnBar is called once per
// bar in strictly increasing index order.
type Strategy interface {
	// Initialize sets up the strategy from a YAML configuration string.
	// An empty string keeps the defaults.
	Initialize(config string) error
	// OnBar inspects the context at the given bar index and returns an
	// order intent. Returning IntentHold leaves the account untouched.
	OnBar(ctx Context, index int) (types.OrderIntent, error)
	// Name returns the name of the strategy.
	Name() string
}
