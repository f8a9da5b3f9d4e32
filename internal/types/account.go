package types

import (
	"github.com/moznion/go-optional"
)

// Account holds the cash balance and the optional open position. It is
// mutated only by the execution simulator; strategies receive copies.
type Account struct {
	Cash     float64
	Position optional.Option[Position]
}

// NewAccount creates a flat account with the given starting cash.
func NewAccount(initialCash float64) Account {
	return Account{
		Cash:     initialCash,
		Position: optional.None[Position](),
	}
}

// IsFlat reports whether no position is open.
func (a Account) IsFlat() bool {
	return a.Position.IsNone()
}

// Equity is the mark-to-market account value: cash plus the open position's
// unrealized P&L at the given price.
func (a Account) Equity(markPrice float64) float64 {
	if a.Position.IsNone() {
		return a.Cash
	}

	return a.Cash + a.Position.Unwrap().UnrealizedPnL(markPrice)
}
