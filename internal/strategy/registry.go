package strategy

import (
	"sort"

	"github.com/quantfolio/stockdash-engine/internal/types"
	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

// factories maps registry identifiers to constructors. Constructors are used
// so concurrent runs never share strategy instances.
var factories = map[string]func() Strategy{
	"golden_cross": func() Strategy { return NewGoldenCross() },
	"rsi":          func() Strategy { return NewRSI() },
	"macd":         func() Strategy { return NewMACD() },
	"bollinger":    func() Strategy { return NewBollinger() },
	"combo":        func() Strategy { return NewCombo() },
}

// Get returns a fresh instance of the named strategy.
func Get(name string) (Strategy, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound,
			"unknown strategy %q, available: %v", name, Names())
	}
	return factory(), nil
}

// Names returns the registered strategy identifiers in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequiredIndicators returns the union of indicator columns needed by the
// named strategies, preserving first-seen order.
func RequiredIndicators(strategies []Strategy) []types.IndicatorName {
	seen := make(map[types.IndicatorName]bool)
	out := make([]types.IndicatorName, 0)

	for _, s := range strategies {
		for _, name := range s.RequiredIndicators() {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}

	return out
}
