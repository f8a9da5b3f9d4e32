package commission

// Zero implements Model with no commission.
type Zero struct{}

// NewZero creates a commission model that always charges nothing.
func NewZero() Model {
	return &Zero{}
}

// Calculate returns 0 for any notional.
func (c *Zero) Calculate(notional float64) float64 {
	return 0.0
}
