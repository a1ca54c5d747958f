package engine

import (
	"context"

	"github.com/quantfolio/stockdash-engine/internal/strategy"
	"github.com/quantfolio/stockdash-engine/internal/types"
)

// OnProcessDataCallback is called for each bar processed. Returning an error
// aborts the run.
type OnProcessDataCallback func(current int, total int) error

// Result is the complete outcome of simulating one strategy over one series.
type Result struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id" yaml:"run_id"`
	// StrategyName is the registry identifier of the strategy that ran.
	StrategyName string `json:"strategy_name" yaml:"strategy_name"`
	// Config echoes the engine configuration the run used, rendered as YAML.
	Config string `json:"config" yaml:"config"`
	// Trades is the append-only log of executed fills, in time order.
	Trades []types.Trade `json:"trades" yaml:"trades"`
	// Rejections lists actions that could not be honored and were degraded
	// to hold.
	Rejections []types.RejectedAction `json:"rejections" yaml:"rejections"`
	// EquityCurve has exactly one point per bar processed.
	EquityCurve types.EquityCurve `json:"equity_curve" yaml:"equity_curve"`
	// FinalState is the portfolio at the end of the run.
	FinalState types.PortfolioState `json:"final_state" yaml:"final_state"`
	// Report is the performance analysis of the run.
	Report types.PerformanceReport `json:"report" yaml:"report"`
}

// Engine simulates strategies over a bar series. Implementations hold no
// state between runs beyond their configuration; the same series, config, and
// strategies always produce identical results.
type Engine interface {
	// Initialize parses the YAML engine configuration.
	Initialize(config string) error
	// SetSeries provides the bar series, indicators already attached. The
	// series is validated on Run, not here.
	SetSeries(series types.BarSeries) error
	// LoadStrategy adds a strategy to the run set. May be called multiple
	// times; each strategy is simulated independently over the same series.
	LoadStrategy(s strategy.Strategy) error
	// Run simulates every loaded strategy and returns one result per
	// strategy, in load order. The context cancels in-flight runs.
	Run(ctx context.Context, onProcessData OnProcessDataCallback) ([]Result, error)
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
