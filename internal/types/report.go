package types

import (
	"fmt"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

// PerformanceReport is the flat metric record computed once at the end of a
// run from the equity curve and trade log. It is never mutated afterward.
//
// Ratio metrics whose denominator can be zero (no closing trades, zero
// volatility, zero gross loss) are optional: None means "undefined", never an
// error and never a fabricated zero.
type PerformanceReport struct {
	// RunID is the unique identifier of the run that produced this report.
	RunID string `json:"run_id" yaml:"run_id"`
	// StrategyName is the strategy evaluated by the run.
	StrategyName string `json:"strategy_name" yaml:"strategy_name"`
	// GeneratedAt is when the report was computed.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
	FinalEquity float64 `json:"final_equity" yaml:"final_equity"`

	// TotalReturn is the absolute profit/loss over the run.
	TotalReturn float64 `json:"total_return" yaml:"total_return"`
	// TotalReturnPct is the total return as a percentage of initial cash.
	TotalReturnPct float64 `json:"total_return_pct" yaml:"total_return_pct"`
	// AnnualizedReturnPct scales the total return by the sampling frequency.
	AnnualizedReturnPct optional.Option[float64] `json:"annualized_return_pct" yaml:"annualized_return_pct"`
	// VolatilityPct is the annualized standard deviation of per-step returns.
	VolatilityPct optional.Option[float64] `json:"volatility_pct" yaml:"volatility_pct"`

	// MaxDrawdownPct is the largest peak-to-trough equity decline, percent.
	MaxDrawdownPct float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	// MaxDrawdownPeak and MaxDrawdownTrough are the curve indices bounding the
	// drawdown; both are -1 when the curve never declined.
	MaxDrawdownPeak   int `json:"max_drawdown_peak" yaml:"max_drawdown_peak"`
	MaxDrawdownTrough int `json:"max_drawdown_trough" yaml:"max_drawdown_trough"`

	NumberOfTrades int `json:"number_of_trades" yaml:"number_of_trades"`
	WinningTrades  int `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades   int `json:"losing_trades" yaml:"losing_trades"`
	// WinRate is the fraction of closing trades with positive realized PnL.
	WinRate optional.Option[float64] `json:"win_rate" yaml:"win_rate"`

	GrossProfit float64                  `json:"gross_profit" yaml:"gross_profit"`
	GrossLoss   float64                  `json:"gross_loss" yaml:"gross_loss"`
	AvgWin      optional.Option[float64] `json:"avg_win" yaml:"avg_win"`
	AvgLoss     optional.Option[float64] `json:"avg_loss" yaml:"avg_loss"`
	MaxWin      float64                  `json:"max_win" yaml:"max_win"`
	MaxLoss     float64                  `json:"max_loss" yaml:"max_loss"`
	// ProfitFactor is gross profit / gross loss.
	ProfitFactor optional.Option[float64] `json:"profit_factor" yaml:"profit_factor"`
	// PayoffRatio is |avg win / avg loss|.
	PayoffRatio optional.Option[float64] `json:"payoff_ratio" yaml:"payoff_ratio"`
	// Expectancy is the probability-weighted expected PnL per trade.
	Expectancy optional.Option[float64] `json:"expectancy" yaml:"expectancy"`

	// SharpeRatio is the excess return over the risk-free rate divided by the
	// return volatility, annualized. None when volatility is zero.
	SharpeRatio optional.Option[float64] `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	// SortinoRatio uses downside deviation instead of total volatility.
	SortinoRatio optional.Option[float64] `json:"sortino_ratio" yaml:"sortino_ratio"`

	// BuyAndHoldReturnPct is the return of holding from first to last close.
	BuyAndHoldReturnPct float64 `json:"buy_and_hold_return_pct" yaml:"buy_and_hold_return_pct"`
	// AlphaPct is the strategy's excess return over buy and hold.
	AlphaPct float64 `json:"alpha_pct" yaml:"alpha_pct"`

	// AvgHoldingBars is the mean number of bars between entry and exit.
	AvgHoldingBars optional.Option[float64] `json:"avg_holding_bars" yaml:"avg_holding_bars"`

	// Trades and EquityCurve reference the input series the report was
	// computed from, so the presentation layer can serialize everything in one
	// response.
	Trades      []Trade     `json:"trades" yaml:"trades"`
	EquityCurve EquityCurve `json:"equity_curve" yaml:"equity_curve"`
	// Rejections lists strategy actions the engine degraded to hold.
	Rejections []RejectedAction `json:"rejections" yaml:"rejections"`
}

// reportYAML mirrors PerformanceReport with plain pointers so undefined
// metrics serialize as explicit nulls in YAML.
type reportYAML struct {
	RunID               string           `yaml:"run_id"`
	StrategyName        string           `yaml:"strategy_name"`
	GeneratedAt         time.Time        `yaml:"generated_at"`
	InitialCash         float64          `yaml:"initial_cash"`
	FinalEquity         float64          `yaml:"final_equity"`
	TotalReturn         float64          `yaml:"total_return"`
	TotalReturnPct      float64          `yaml:"total_return_pct"`
	AnnualizedReturnPct *float64         `yaml:"annualized_return_pct"`
	VolatilityPct       *float64         `yaml:"volatility_pct"`
	MaxDrawdownPct      float64          `yaml:"max_drawdown_pct"`
	MaxDrawdownPeak     int              `yaml:"max_drawdown_peak"`
	MaxDrawdownTrough   int              `yaml:"max_drawdown_trough"`
	NumberOfTrades      int              `yaml:"number_of_trades"`
	WinningTrades       int              `yaml:"winning_trades"`
	LosingTrades        int              `yaml:"losing_trades"`
	WinRate             *float64         `yaml:"win_rate"`
	GrossProfit         float64          `yaml:"gross_profit"`
	GrossLoss           float64          `yaml:"gross_loss"`
	AvgWin              *float64         `yaml:"avg_win"`
	AvgLoss             *float64         `yaml:"avg_loss"`
	MaxWin              float64          `yaml:"max_win"`
	MaxLoss             float64          `yaml:"max_loss"`
	ProfitFactor        *float64         `yaml:"profit_factor"`
	PayoffRatio         *float64         `yaml:"payoff_ratio"`
	Expectancy          *float64         `yaml:"expectancy"`
	SharpeRatio         *float64         `yaml:"sharpe_ratio"`
	SortinoRatio        *float64         `yaml:"sortino_ratio"`
	BuyAndHoldReturnPct float64          `yaml:"buy_and_hold_return_pct"`
	AlphaPct            float64          `yaml:"alpha_pct"`
	AvgHoldingBars      *float64         `yaml:"avg_holding_bars"`
	Trades              []Trade          `yaml:"trades"`
	EquityCurve         EquityCurve      `yaml:"equity_curve"`
	Rejections          []RejectedAction `yaml:"rejections"`
}

func optPtr(o optional.Option[float64]) *float64 {
	if o.IsNone() {
		return nil
	}

	v := o.Unwrap()

	return &v
}

// MarshalYAML implements yaml.Marshaler so optional metrics become nulls.
func (r PerformanceReport) MarshalYAML() (any, error) {
	return reportYAML{
		RunID:               r.RunID,
		StrategyName:        r.StrategyName,
		GeneratedAt:         r.GeneratedAt,
		InitialCash:         r.InitialCash,
		FinalEquity:         r.FinalEquity,
		TotalReturn:         r.TotalReturn,
		TotalReturnPct:      r.TotalReturnPct,
		AnnualizedReturnPct: optPtr(r.AnnualizedReturnPct),
		VolatilityPct:       optPtr(r.VolatilityPct),
		MaxDrawdownPct:      r.MaxDrawdownPct,
		MaxDrawdownPeak:     r.MaxDrawdownPeak,
		MaxDrawdownTrough:   r.MaxDrawdownTrough,
		NumberOfTrades:      r.NumberOfTrades,
		WinningTrades:       r.WinningTrades,
		LosingTrades:        r.LosingTrades,
		WinRate:             optPtr(r.WinRate),
		GrossProfit:         r.GrossProfit,
		GrossLoss:           r.GrossLoss,
		AvgWin:              optPtr(r.AvgWin),
		AvgLoss:             optPtr(r.AvgLoss),
		MaxWin:              r.MaxWin,
		MaxLoss:             r.MaxLoss,
		ProfitFactor:        optPtr(r.ProfitFactor),
		PayoffRatio:         optPtr(r.PayoffRatio),
		Expectancy:          optPtr(r.Expectancy),
		SharpeRatio:         optPtr(r.SharpeRatio),
		SortinoRatio:        optPtr(r.SortinoRatio),
		BuyAndHoldReturnPct: r.BuyAndHoldReturnPct,
		AlphaPct:            r.AlphaPct,
		AvgHoldingBars:      optPtr(r.AvgHoldingBars),
		Trades:              r.Trades,
		EquityCurve:         r.EquityCurve,
		Rejections:          r.Rejections,
	}, nil
}

// WriteReport serializes the report to a YAML file.
func WriteReport(path string, report PerformanceReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal performance report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write performance report to file: %w", err)
	}

	return nil
}
