package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents the single open holding. At most one position exists
// at any time; pyramiding and netting are not modeled.
type Position struct {
	Direction  PositionDirection `csv:"direction" yaml:"direction"`
	EntryIndex int               `csv:"entry_index" yaml:"entry_index"`
	EntryPrice float64           `csv:"entry_price" yaml:"entry_price"`
	EntryTime  time.Time         `csv:"entry_time" yaml:"entry_time"`
	Size       float64           `csv:"size" yaml:"size"`
}

// UnrealizedPnL marks the position to market at the given price.
func (p Position) UnrealizedPnL(markPrice float64) float64 {
	entry := decimal.NewFromFloat(p.EntryPrice)
	mark := decimal.NewFromFloat(markPrice)
	size := decimal.NewFromFloat(p.Size * p.Direction.Sign())

	pnl, _ := mark.Sub(entry).Mul(size).Float64()

	return pnl
}

// Trade is an immutable closed-position record.
type Trade struct {
	ID         string            `csv:"trade_id" yaml:"trade_id"`
	Direction  PositionDirection `csv:"direction" yaml:"direction"`
	EntryIndex int               `csv:"entry_index" yaml:"entry_index"`
	EntryTime  time.Time         `csv:"entry_time" yaml:"entry_time"`
	EntryPrice float64           `csv:"entry_price" yaml:"entry_price"`
	ExitIndex  int               `csv:"exit_index" yaml:"exit_index"`
	ExitTime   time.Time         `csv:"exit_time" yaml:"exit_time"`
	ExitPrice  float64           `csv:"exit_price" yaml:"exit_price"`
	Size       float64           `csv:"size" yaml:"size"`
	// PnL is the realized profit and loss, excluding commission.
	PnL float64 `csv:"pnl" yaml:"pnl"`
	// Commission is the total commission paid for entry and exit fills.
	Commission float64 `csv:"commission" yaml:"commission"`
}
