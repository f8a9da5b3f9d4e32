package engine_v1

import (
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/barsim/internal/backtest/engine/engine_v1/commission"
	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
	"github.com/shopspring/decimal"
)

// Simulator executes order intents against a single account. Fills are
// market-on-close at the bar the intent was produced on. Every intent is
// validated against the account state before any mutation, so a rejected
// intent leaves cash, position and the trade log untouched.
type Simulator struct {
	account      types.Account
	positionSize float64
	commission   commission.Model
	equityCurve  types.EquityCurve
	trades       []types.Trade
}

// NewSimulator creates a simulator with a flat account holding the given
// starting cash.
func NewSimulator(initialCapital float64, positionSize float64, model commission.Model) *Simulator {
	return &Simulator{
		account:      types.NewAccount(initialCapital),
		positionSize: positionSize,
		commission:   model,
		equityCurve:  nil,
		trades:       nil,
	}
}

// Account returns a snapshot of the current account state.
func (s *Simulator) Account() types.Account {
	return s.account
}

// EquityCurve returns the mark-to-market valuations recorded so far.
func (s *Simulator) EquityCurve() types.EquityCurve {
	return s.equityCurve
}

// Trades returns the closed trades in close order.
func (s *Simulator) Trades() []types.Trade {
	return s.trades
}

// Apply validates and executes an intent on the given bar. Entry intents
// require a flat account; exit intents require an open position of the
// matching direction. A violation returns ErrCodeInvalidIntent without
// changing any state.
func (s *Simulator) Apply(intent types.OrderIntent, index int, bar types.Bar) error {
	switch intent {
	case types.IntentHold:
		return nil
	case types.IntentBuy, types.IntentSell:
		return s.open(intent, index, bar)
	case types.IntentCloseLong, types.IntentCloseShort:
		return s.close(intent, index, bar)
	default:
		return errors.Newf(errors.ErrCodeInvalidIntent, "unknown order intent %q", intent)
	}
}

// MarkToMarket appends one equity point valuing the account at the bar's
// close. It is called exactly once per bar, after the bar's intent settles.
func (s *Simulator) MarkToMarket(bar types.Bar) {
	s.equityCurve = append(s.equityCurve, types.EquityPoint{
		Time:   bar.Time,
		Equity: s.account.Equity(bar.Close),
	})
}

// ForceClose liquidates any open position at the bar's close. It is a no-op
// on a flat account.
func (s *Simulator) ForceClose(index int, bar types.Bar) error {
	if s.account.IsFlat() {
		return nil
	}

	if s.account.Position.Unwrap().Direction == types.DirectionLong {
		return s.close(types.IntentCloseLong, index, bar)
	}

	return s.close(types.IntentCloseShort, index, bar)
}

func (s *Simulator) open(intent types.OrderIntent, index int, bar types.Bar) error {
	if !s.account.IsFlat() {
		return errors.Newf(errors.ErrCodeInvalidIntent,
			"cannot %s at bar %d: a position is already open", intent, index)
	}

	direction := types.DirectionLong
	if intent == types.IntentSell {
		direction = types.DirectionShort
	}

	fee := s.commission.Calculate(bar.Close * s.positionSize)

	s.account.Cash -= fee
	s.account.Position = optional.Some(types.Position{
		Direction:  direction,
		EntryIndex: index,
		EntryPrice: bar.Close,
		EntryTime:  bar.Time,
		Size:       s.positionSize,
	})

	return nil
}

func (s *Simulator) close(intent types.OrderIntent, index int, bar types.Bar) error {
	if s.account.IsFlat() {
		return errors.Newf(errors.ErrCodeInvalidIntent,
			"cannot %s at bar %d: no position is open", intent, index)
	}

	position := s.account.Position.Unwrap()

	if intent == types.IntentCloseLong && position.Direction != types.DirectionLong {
		return errors.Newf(errors.ErrCodeInvalidIntent,
			"cannot CLOSE_LONG at bar %d: open position is short", index)
	}

	if intent == types.IntentCloseShort && position.Direction != types.DirectionShort {
		return errors.Newf(errors.ErrCodeInvalidIntent,
			"cannot CLOSE_SHORT at bar %d: open position is long", index)
	}

	entryFee := s.commission.Calculate(position.EntryPrice * position.Size)
	exitFee := s.commission.Calculate(bar.Close * position.Size)
	pnl := realizedPnL(position, bar.Close)

	s.account.Cash += pnl - exitFee
	s.account.Position = optional.None[types.Position]()

	s.trades = append(s.trades, types.Trade{
		ID:         uuid.New().String(),
		Direction:  position.Direction,
		EntryIndex: position.EntryIndex,
		EntryTime:  position.EntryTime,
		EntryPrice: position.EntryPrice,
		ExitIndex:  index,
		ExitTime:   bar.Time,
		ExitPrice:  bar.Close,
		Size:       position.Size,
		PnL:        pnl,
		Commission: entryFee + exitFee,
	})

	return nil
}

// realizedPnL computes (exit - entry) * size * direction with decimal
// arithmetic so long chains of fills stay exactly reproducible.
func realizedPnL(position types.Position, exitPrice float64) float64 {
	entry := decimal.NewFromFloat(position.EntryPrice)
	exit := decimal.NewFromFloat(exitPrice)
	size := decimal.NewFromFloat(position.Size * position.Direction.Sign())

	pnl, _ := exit.Sub(entry).Mul(size).Float64()

	return pnl
}
