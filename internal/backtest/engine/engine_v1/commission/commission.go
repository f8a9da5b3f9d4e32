package commission

// Model calculates the commission fee for a fill with the given notional
// value (price times size) and returns the fee in account currency.
type Model interface {
	Calculate(notional float64) float64
}

type ModelName string

const (
	ModelFractional ModelName = "fractional"
	ModelZero       ModelName = "zero"
)

var AllModels = []any{
	ModelFractional,
	ModelZero,
}

// GetModel resolves a named commission model. The fractional model uses the
// given rate; unknown names fall back to zero commission.
func GetModel(name ModelName, rate float64) Model {
	switch name {
	case ModelFractional:
		return NewFractional(rate)
	case ModelZero:
		return NewZero()
	default:
		return NewZero()
	}
}
