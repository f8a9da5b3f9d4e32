package types

// OrderIntent is a strategy's decision for a single bar. Intents are
// market-on-close: the execution simulator fills them at the bar's close.
type OrderIntent string

const (
	IntentHold       OrderIntent = "HOLD"
	IntentBuy        OrderIntent = "BUY"
	IntentSell       OrderIntent = "SELL"
	IntentCloseLong  OrderIntent = "CLOSE_LONG"
	IntentCloseShort OrderIntent = "CLOSE_SHORT"
)

// IsEntry reports whether the intent opens a new position.
func (i OrderIntent) IsEntry() bool {
	return i == IntentBuy || i == IntentSell
}

// IsExit reports whether the intent closes an existing position.
func (i OrderIntent) IsExit() bool {
	return i == IntentCloseLong || i == IntentCloseShort
}

// PositionDirection is the side of an open position.
type PositionDirection string

const (
	DirectionLong  PositionDirection = "LONG"
	DirectionShort PositionDirection = "SHORT"
)

// Sign returns +1 for long positions and -1 for short positions.
func (d PositionDirection) Sign() float64 {
	if d == DirectionShort {
		return -1
	}

	return 1
}
