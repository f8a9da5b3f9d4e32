package commission

// Fractional charges a fixed fraction of the fill's notional value.
type Fractional struct {
	rate float64
}

// NewFractional creates a fractional commission model with the given rate.
// A rate of 0.001 charges 0.1% of notional per fill.
func NewFractional(rate float64) Model {
	return &Fractional{rate: rate}
}

// Calculate implements Model.
func (c *Fractional) Calculate(notional float64) float64 {
	return c.rate * notional
}
