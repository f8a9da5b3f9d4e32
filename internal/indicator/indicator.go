// Package indicator computes derived series (RSI, EMA, MACD, ATR) from a
// price series. Indicator functions are registered by name and results are
// memoized per (series identity, indicator, parameters), so strategies can
// ask for the same indicator on every bar without recomputation.
package indicator

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rxtech-lab/barsim/internal/series"
	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
)

// Params carries named indicator parameters. Periods are stored as float64
// but must be positive integers.
type Params map[string]float64

// Int returns the parameter under key as a positive integer period.
func (p Params) Int(key string) (int, error) {
	value, ok := p[key]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeMissingParameter, "missing required parameter %q", key)
	}

	period := int(value)
	if float64(period) != value || period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "parameter %q must be a positive integer, got %v", key, value)
	}

	return period, nil
}

// canonical renders the parameters in a stable order for cache keying.
func (p Params) canonical() string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = fmt.Sprintf("%s=%g", key, p[key])
	}

	return strings.Join(parts, ",")
}

// Func computes an indicator series from a price series. The result must
// have the same length as the input, with NaN at warm-up indices.
type Func func(s *series.Series, params Params) (types.IndicatorSeries, error)

type cacheKey struct {
	seriesID string
	name     types.IndicatorType
	params   string
}

// Engine resolves indicator computations through a registry and memoizes
// results by (series identity, indicator name, parameters).
type Engine struct {
	registry *Registry
	mu       sync.RWMutex
	cache    map[cacheKey]types.IndicatorSeries
}

// NewEngine creates an engine backed by a registry with all built-in
// indicators registered.
func NewEngine() *Engine {
	return NewEngineWithRegistry(DefaultRegistry())
}

// NewEngineWithRegistry creates an engine backed by the given registry.
func NewEngineWithRegistry(registry *Registry) *Engine {
	return &Engine{
		registry: registry,
		cache:    make(map[cacheKey]types.IndicatorSeries),
	}
}

// Register adds an indicator function under the given name.
func (e *Engine) Register(name types.IndicatorType, fn Func) error {
	return e.registry.Register(name, fn)
}

// Compute returns the indicator series for the given series and parameters,
// computing it on first use and serving the cached result afterwards.
func (e *Engine) Compute(s *series.Series, name types.IndicatorType, params Params) (types.IndicatorSeries, error) {
	key := cacheKey{
		seriesID: s.ID(),
		name:     name,
		params:   params.canonical(),
	}

	e.mu.RLock()
	cached, ok := e.cache[key]
	e.mu.RUnlock()

	if ok {
		return cached, nil
	}

	fn, err := e.registry.Get(name)
	if err != nil {
		return nil, err
	}

	result, err := fn(s, params)
	if err != nil {
		return nil, err
	}

	if result.Len() != s.Len() {
		return nil, errors.Newf(errors.ErrCodeIndicatorCalculation,
			"indicator %s produced %d values for %d bars", name, result.Len(), s.Len())
	}

	e.mu.Lock()
	e.cache[key] = result
	e.mu.Unlock()

	return result, nil
}

// Reset drops all cached results.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache = make(map[cacheKey]types.IndicatorSeries)
}

// CacheSize returns the number of memoized indicator series.
func (e *Engine) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.cache)
}

// ema computes an exponential moving average over raw values, seeded with
// the first value and alpha = 2/(period+1).
func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / (float64(period) + 1.0)
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			out[i] = out[i-1]

			continue
		}

		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}

	return out
}
