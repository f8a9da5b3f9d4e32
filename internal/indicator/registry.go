package indicator

import (
	"sync"

	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
)

// Registry manages all available indicator functions. New indicators are
// added by name without touching existing ones.
type Registry struct {
	mu         sync.RWMutex
	indicators map[types.IndicatorType]Func
}

// NewRegistry creates an empty indicator registry.
func NewRegistry() *Registry {
	return &Registry{
		indicators: make(map[types.IndicatorType]Func),
	}
}

// DefaultRegistry creates a registry with all built-in indicators registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Registration of built-ins cannot collide on an empty registry.
	_ = r.Register(types.IndicatorTypeRSI, RSI)
	_ = r.Register(types.IndicatorTypeEMA, EMA)
	_ = r.Register(types.IndicatorTypeMACD, MACD)
	_ = r.Register(types.IndicatorTypeMACDSignal, MACDSignal)
	_ = r.Register(types.IndicatorTypeATR, ATR)

	return r
}

// Register adds an indicator function to the registry.
func (r *Registry) Register(name types.IndicatorType, fn Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator with name %s already registered", name)
	}

	r.indicators[name] = fn

	return nil
}

// Get retrieves an indicator function by name.
func (r *Registry) Get(name types.IndicatorType) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	return fn, nil
}

// List returns the names of all registered indicators.
func (r *Registry) List() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}

	return names
}

// Remove deletes an indicator from the registry.
func (r *Registry) Remove(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	delete(r.indicators, name)

	return nil
}
