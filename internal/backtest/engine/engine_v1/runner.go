package engine

import (
	"context"
	"sync"

	"github.com/quantfolio/stockdash-engine/internal/backtest/engine"
	"github.com/quantfolio/stockdash-engine/internal/logger"
	"github.com/quantfolio/stockdash-engine/internal/strategy"
	"github.com/quantfolio/stockdash-engine/internal/types"
)

// RunAll simulates each named strategy concurrently over the same series,
// one engine per goroutine so no run state is ever shared. Results come back
// in input order regardless of completion order. The first error aborts the
// batch result, but running goroutines are left to drain via the context.
func RunAll(ctx context.Context, config BacktestEngineV1Config, series types.BarSeries, names []string) ([]engine.Result, error) {
	strategies := make([]strategy.Strategy, len(names))

	for i, name := range names {
		s, err := strategy.Get(name)
		if err != nil {
			return nil, err
		}

		strategies[i] = s
	}

	results := make([][]engine.Result, len(strategies))
	runErrs := make([]error, len(strategies))

	var wg sync.WaitGroup

	for i, s := range strategies {
		wg.Add(1)

		go func(i int, s strategy.Strategy) {
			defer wg.Done()

			eng := NewBacktestEngineV1().(*BacktestEngineV1)
			eng.SetConfig(config)
			eng.SetLogger(logger.NewNopLogger())

			if err := eng.SetSeries(series); err != nil {
				runErrs[i] = err

				return
			}

			if err := eng.LoadStrategy(s); err != nil {
				runErrs[i] = err

				return
			}

			results[i], runErrs[i] = eng.Run(ctx, nil)
		}(i, s)
	}

	wg.Wait()

	out := make([]engine.Result, 0, len(strategies))

	for i := range strategies {
		if runErrs[i] != nil {
			return nil, runErrs[i]
		}

		out = append(out, results[i]...)
	}

	return out, nil
}
