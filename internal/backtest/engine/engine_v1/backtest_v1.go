package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/quantfolio/stockdash-engine/internal/analyzer"
	"github.com/quantfolio/stockdash-engine/internal/backtest/engine"
	"github.com/quantfolio/stockdash-engine/internal/backtest/engine/engine_v1/costmodel"
	"github.com/quantfolio/stockdash-engine/internal/logger"
	"github.com/quantfolio/stockdash-engine/internal/strategy"
	"github.com/quantfolio/stockdash-engine/internal/types"
	"github.com/quantfolio/stockdash-engine/internal/utils"
	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

// BacktestEngineV1 is the in-memory simulation engine: one pass over the bar
// series per strategy, no persistence, no network. All inputs are validated
// up front so a run either starts clean or not at all.
type BacktestEngineV1 struct {
	config     BacktestEngineV1Config
	series     types.BarSeries
	strategies []strategy.Strategy
	log        *logger.Logger
}

// pendingFill is a decision waiting for the next bar's open under the
// next_open fill policy.
type pendingFill struct {
	action    types.Action
	signalBar int
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:     EmptyConfig(),
		series:     nil,
		strategies: nil,
		log:        logger.NewNopLogger(),
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	if err := yaml.Unmarshal([]byte(config), &b.config); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine configuration", err)
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}

	b.log = log
	b.log.Debug("backtest engine initialized",
		zap.String("config", config),
	)

	return nil
}

// SetLogger replaces the engine's logger. Useful for tests and for callers
// running many engines concurrently.
func (b *BacktestEngineV1) SetLogger(log *logger.Logger) {
	if log != nil {
		b.log = log
	}
}

// SetConfig sets the engine configuration directly, bypassing YAML parsing.
func (b *BacktestEngineV1) SetConfig(config BacktestEngineV1Config) {
	b.config = config
}

// SetSeries implements engine.Engine.
func (b *BacktestEngineV1) SetSeries(series types.BarSeries) error {
	if len(series) == 0 {
		return errors.New(errors.ErrCodeEmptySeries, "series must contain at least one bar")
	}

	b.series = series

	return nil
}

// LoadStrategy implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategy(s strategy.Strategy) error {
	if s == nil {
		return errors.New(errors.ErrCodeStrategyConfigError, "cannot load a nil strategy")
	}

	b.strategies = append(b.strategies, s)

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	return b.config.GenerateSchemaJSON()
}

// Run implements engine.Engine. Every loaded strategy is simulated over the
// same series, in load order. Validation failures abort before the first bar
// of the first strategy is processed.
func (b *BacktestEngineV1) Run(ctx context.Context, onProcessData engine.OnProcessDataCallback) ([]engine.Result, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	if len(b.strategies) == 0 {
		return nil, errors.New(errors.ErrCodeSimulationFailed, "no strategies loaded")
	}

	series, err := b.prepareSeries()
	if err != nil {
		return nil, err
	}

	// Every strategy's indicator requirements are checked before any run
	// starts, so a late strategy cannot fail a half-finished batch.
	for _, s := range b.strategies {
		if err := series.RequireIndicators(s.RequiredIndicators()); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMissingIndicator, err,
				"strategy %q cannot run on this series", s.Name())
		}
	}

	total := len(series) * len(b.strategies)
	results := make([]engine.Result, 0, len(b.strategies))

	for idx, s := range b.strategies {
		b.log.Info("starting run",
			zap.String("strategy", s.Name()),
			zap.Int("bars", len(series)),
		)

		result, err := b.runStrategy(ctx, s, series, func(bar int) error {
			if onProcessData == nil {
				return nil
			}

			return onProcessData(idx*len(series)+bar+1, total)
		})
		if err != nil {
			return nil, err
		}

		b.log.Info("run finished",
			zap.String("strategy", s.Name()),
			zap.String("run_id", result.RunID),
			zap.Int("trades", len(result.Trades)),
			zap.Int("rejections", len(result.Rejections)),
			zap.Float64("final_equity", result.FinalState.Equity(series[len(series)-1].Close)),
		)

		results = append(results, result)
	}

	return results, nil
}

// prepareSeries validates the series and applies the configured time window.
func (b *BacktestEngineV1) prepareSeries() (types.BarSeries, error) {
	if err := b.series.Validate(); err != nil {
		return nil, err
	}

	series := b.series

	if b.config.StartTime.IsSome() || b.config.EndTime.IsSome() {
		filtered := make(types.BarSeries, 0, len(series))

		for _, bar := range series {
			if start, err := b.config.StartTime.Take(); err == nil && bar.Time.Before(start) {
				continue
			}

			if end, err := b.config.EndTime.Take(); err == nil && bar.Time.After(end) {
				continue
			}

			filtered = append(filtered, bar)
		}

		series = filtered
	}

	if len(series) == 0 {
		return nil, errors.New(errors.ErrCodeInsufficientData,
			"no bars remain after applying the configured time window")
	}

	return series, nil
}

// runState is the accumulating output of one strategy's pass over the series.
type runState struct {
	port       *portfolio
	trades     []types.Trade
	rejections []types.RejectedAction
	curve      types.EquityCurve
}

func (b *BacktestEngineV1) runStrategy(ctx context.Context, s strategy.Strategy, series types.BarSeries, onBar func(int) error) (engine.Result, error) {
	runID := uuid.NewString()
	cost := costmodel.GetCostModel(b.config.CostModel, b.config.FixedFee, b.config.SpreadRate)

	state := &runState{
		port:       newPortfolio(b.config.InitialCash),
		trades:     []types.Trade{},
		rejections: []types.RejectedAction{},
		curve:      make(types.EquityCurve, 0, len(series)),
	}

	var pending *pendingFill

	for i, bar := range series {
		if err := ctx.Err(); err != nil {
			return engine.Result{}, errors.Wrapf(errors.ErrCodeSimulationFailed, err,
				"run of %q canceled at bar %d", s.Name(), i)
		}

		// A decision from the previous bar fills at this bar's open.
		if pending != nil {
			b.execute(state, s.Name(), cost, pending.action, pending.signalBar, i, bar.Open, bar.Time)

			pending = nil
		}

		action, err := s.Decide(strategy.NewHistory(series[:i+1]), state.port.snapshot())
		if err != nil {
			return engine.Result{}, errors.Wrapf(errors.ErrCodeStrategyDecideFailed, err,
				"strategy %q failed at bar %d", s.Name(), i)
		}

		if err := validateAction(action); err != nil {
			return engine.Result{}, errors.Wrapf(errors.ErrCodeInvalidAction, err,
				"strategy %q returned an invalid action at bar %d", s.Name(), i)
		}

		if !action.IsHold() {
			switch b.config.FillPolicy {
			case FillSameClose:
				b.execute(state, s.Name(), cost, action, i, i, bar.Close, bar.Time)
			case FillNextOpen:
				if i == len(series)-1 {
					state.rejections = append(state.rejections, types.RejectedAction{
						BarIndex: i,
						Time:     bar.Time,
						Side:     action.Side,
						Reason:   types.ReasonEndOfData,
						Message:  "decision on the final bar has no next open to fill at",
					})
				} else {
					pending = &pendingFill{action: action, signalBar: i}
				}
			}
		}

		// Flatten on the last bar before its equity point is recorded, so
		// the curve's final point reflects the closed book.
		if b.config.CloseAtEnd && i == len(series)-1 && state.port.hasPosition() {
			b.execute(state, s.Name(), cost, types.SellAll(types.ReasonCloseAtEnd), i, i, bar.Close, bar.Time)
		}

		snapshot := state.port.snapshot()
		state.curve = append(state.curve, types.EquityPoint{
			Time:     bar.Time,
			Equity:   state.port.equity(bar.Close),
			Cash:     snapshot.Cash,
			Quantity: snapshot.Quantity,
			Close:    bar.Close,
		})

		if err := onBar(i); err != nil {
			return engine.Result{}, errors.Wrapf(errors.ErrCodeSimulationFailed, err,
				"run of %q aborted by callback at bar %d", s.Name(), i)
		}
	}

	report, err := analyzer.Analyze(runID, s.Name(), state.curve, state.trades, state.rejections, analyzer.Config{
		InitialCash:  b.config.InitialCash,
		RiskFreeRate: b.config.RiskFreeRate,
		BarsPerYear:  b.config.BarsPerYear,
	})
	if err != nil {
		return engine.Result{}, err
	}

	configEcho, err := yaml.Marshal(b.config)
	if err != nil {
		return engine.Result{}, errors.Wrap(errors.ErrCodeSimulationFailed,
			"failed to render config echo", err)
	}

	return engine.Result{
		RunID:        runID,
		StrategyName: s.Name(),
		Config:       string(configEcho),
		Trades:       state.trades,
		Rejections:   state.rejections,
		EquityCurve:  state.curve,
		FinalState:   state.port.snapshot(),
		Report:       report,
	}, nil
}

// validateAction rejects malformed actions. A malformed action is a strategy
// bug and aborts the run, unlike an unaffordable one which is just recorded.
func validateAction(action types.Action) error {
	switch action.Side {
	case types.ActionHold:
		return nil
	case types.ActionBuy, types.ActionSell:
		if action.Fraction <= 0 || action.Fraction > 1 {
			return errors.Newf(errors.ErrCodeInvalidAction,
				"%s fraction must be in (0, 1], got %f", action.Side, action.Fraction)
		}

		return nil
	default:
		return errors.Newf(errors.ErrCodeInvalidAction, "unknown action side %q", action.Side)
	}
}

// execute applies one validated action to the portfolio at the given fill
// price. Unaffordable or impossible actions become rejections; the run
// continues either way.
func (b *BacktestEngineV1) execute(state *runState, strategyName string, cost costmodel.CostModel, action types.Action, signalBar, fillBar int, price float64, fillTime time.Time) {
	switch action.Side {
	case types.ActionBuy:
		b.executeBuy(state, strategyName, cost, action, signalBar, fillBar, price, fillTime)
	case types.ActionSell:
		b.executeSell(state, strategyName, cost, action, signalBar, fillBar, price, fillTime)
	case types.ActionHold:
	}
}

func (b *BacktestEngineV1) executeBuy(state *runState, strategyName string, cost costmodel.CostModel, action types.Action, signalBar, fillBar int, price float64, fillTime time.Time) {
	snapshot := state.port.snapshot()

	var quantity float64

	switch b.config.SizingPolicy {
	case SizeFixedFraction:
		quantity = utils.CalculateQuantityForBudget(snapshot.Cash, price, cost, b.config.PositionSize*action.Fraction)
	case SizeAllIn:
		quantity = utils.CalculateQuantityForBudget(snapshot.Cash, price, cost, action.Fraction)
	case SizeFixedQuantity:
		quantity = b.config.FixedQuantity
	}

	quantity = utils.RoundToDecimalPrecision(quantity, b.config.DecimalPrecision)

	if quantity <= 0 {
		state.rejections = append(state.rejections, types.RejectedAction{
			BarIndex: fillBar,
			Time:     fillTime,
			Side:     types.ActionBuy,
			Reason:   types.ReasonInsufficientCash,
			Message:  fmt.Sprintf("cash %.2f cannot buy at price %.2f", snapshot.Cash, price),
		})

		return
	}

	fee := cost.Calculate(quantity, price)

	if err := state.port.buy(quantity, price, fee); err != nil {
		state.rejections = append(state.rejections, types.RejectedAction{
			BarIndex: fillBar,
			Time:     fillTime,
			Side:     types.ActionBuy,
			Reason:   types.ReasonInsufficientCash,
			Message:  err.Error(),
		})

		return
	}

	state.trades = append(state.trades, types.Trade{
		ID:             uuid.NewString(),
		BarIndex:       fillBar,
		SignalBarIndex: signalBar,
		Time:           fillTime,
		Side:           types.ActionBuy,
		Quantity:       quantity,
		FillPrice:      price,
		Cost:           fee,
		RealizedPnL:    0,
		Reason:         action.Reason,
		StrategyName:   strategyName,
	})

	b.log.Debug("buy filled",
		zap.String("strategy", strategyName),
		zap.Int("bar", fillBar),
		zap.Float64("quantity", quantity),
		zap.Float64("price", price),
		zap.Float64("cost", fee),
	)
}

func (b *BacktestEngineV1) executeSell(state *runState, strategyName string, cost costmodel.CostModel, action types.Action, signalBar, fillBar int, price float64, fillTime time.Time) {
	if !state.port.hasPosition() {
		state.rejections = append(state.rejections, types.RejectedAction{
			BarIndex: fillBar,
			Time:     fillTime,
			Side:     types.ActionSell,
			Reason:   types.ReasonNoPosition,
			Message:  "sell requested with no shares held",
		})

		return
	}

	snapshot := state.port.snapshot()
	quantity := snapshot.Quantity

	if action.Fraction < 1 {
		quantity = utils.RoundToDecimalPrecision(quantity*action.Fraction, b.config.DecimalPrecision)
	}

	if quantity <= 0 {
		state.rejections = append(state.rejections, types.RejectedAction{
			BarIndex: fillBar,
			Time:     fillTime,
			Side:     types.ActionSell,
			Reason:   types.ReasonZeroQuantity,
			Message:  fmt.Sprintf("fraction %.4f of position %.4f rounds to zero shares", action.Fraction, snapshot.Quantity),
		})

		return
	}

	fee := cost.Calculate(quantity, price)

	pnl, err := state.port.sell(quantity, price, fee)
	if err != nil {
		reason := types.ReasonNoPosition
		if errors.HasCode(err, errors.ErrCodeNegativeCash) {
			reason = types.ReasonInsufficientCash
		}

		state.rejections = append(state.rejections, types.RejectedAction{
			BarIndex: fillBar,
			Time:     fillTime,
			Side:     types.ActionSell,
			Reason:   reason,
			Message:  err.Error(),
		})

		return
	}

	state.trades = append(state.trades, types.Trade{
		ID:             uuid.NewString(),
		BarIndex:       fillBar,
		SignalBarIndex: signalBar,
		Time:           fillTime,
		Side:           types.ActionSell,
		Quantity:       quantity,
		FillPrice:      price,
		Cost:           fee,
		RealizedPnL:    pnl,
		Reason:         action.Reason,
		StrategyName:   strategyName,
	})

	b.log.Debug("sell filled",
		zap.String("strategy", strategyName),
		zap.Int("bar", fillBar),
		zap.Float64("quantity", quantity),
		zap.Float64("price", price),
		zap.Float64("pnl", pnl),
	)
}
