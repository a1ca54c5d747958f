// Package analyzer computes the performance report of a finished run. It is
// pure: the equity curve and trade log go in, a flat metric record comes out,
// and nothing is mutated. Ratio metrics with a zero denominator are reported
// as undefined rather than zero.
package analyzer

import (
	"math"
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantfolio/stockdash-engine/internal/types"
	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

// Config carries the run parameters the analyzer needs beyond the curve and
// trade log.
type Config struct {
	// InitialCash is the starting cash of the run.
	InitialCash float64
	// RiskFreeRate is the annual risk-free rate used for Sharpe and Sortino.
	RiskFreeRate float64
	// BarsPerYear converts per-bar figures to annual ones. 252 for daily bars.
	BarsPerYear int
}

// Analyze computes the full performance report for one run.
func Analyze(runID, strategyName string, curve types.EquityCurve, trades []types.Trade, rejections []types.RejectedAction, cfg Config) (types.PerformanceReport, error) {
	if len(curve) == 0 {
		return types.PerformanceReport{}, errors.New(errors.ErrCodeEmptyEquityCurve,
			"cannot analyze a run with an empty equity curve")
	}

	if cfg.InitialCash <= 0 {
		return types.PerformanceReport{}, errors.Newf(errors.ErrCodeInvalidInitialCash,
			"initial cash must be positive, got %f", cfg.InitialCash)
	}

	if cfg.BarsPerYear <= 0 {
		cfg.BarsPerYear = 252
	}

	final, _ := curve.Final()
	returns := curve.Returns()

	report := types.PerformanceReport{
		RunID:        runID,
		StrategyName: strategyName,
		GeneratedAt:  time.Now().UTC(),
		InitialCash:  cfg.InitialCash,
		FinalEquity:  final.Equity,
		Trades:       trades,
		EquityCurve:  curve,
		Rejections:   rejections,
	}

	report.TotalReturn = final.Equity - cfg.InitialCash
	report.TotalReturnPct = report.TotalReturn / cfg.InitialCash * 100

	report.AnnualizedReturnPct = annualizedReturn(cfg.InitialCash, final.Equity, len(curve)-1, cfg.BarsPerYear)
	report.VolatilityPct = annualizedVolatility(returns, cfg.BarsPerYear)
	report.SharpeRatio = sharpe(returns, cfg.RiskFreeRate, cfg.BarsPerYear)
	report.SortinoRatio = sortino(returns, cfg.RiskFreeRate, cfg.BarsPerYear)

	report.MaxDrawdownPct, report.MaxDrawdownPeak, report.MaxDrawdownTrough = maxDrawdown(curve)

	fillTradeStats(&report, trades)

	report.BuyAndHoldReturnPct = buyAndHold(curve)
	report.AlphaPct = report.TotalReturnPct - report.BuyAndHoldReturnPct

	return report, nil
}

// annualizedReturn compounds the total return over the number of steps up to
// a full year of bars. Undefined for runs with no steps or a wiped-out
// account.
func annualizedReturn(initial, final float64, steps, barsPerYear int) optional.Option[float64] {
	if steps <= 0 || final <= 0 {
		return optional.None[float64]()
	}

	growth := final / initial
	annualized := math.Pow(growth, float64(barsPerYear)/float64(steps)) - 1

	return optional.Some(annualized * 100)
}

func annualizedVolatility(returns []float64, barsPerYear int) optional.Option[float64] {
	if len(returns) < 2 {
		return optional.None[float64]()
	}

	sd := stdDev(returns)

	return optional.Some(sd * math.Sqrt(float64(barsPerYear)) * 100)
}

// sharpe is the annualized mean excess return over its standard deviation.
// Undefined when the return series has zero volatility.
func sharpe(returns []float64, riskFreeRate float64, barsPerYear int) optional.Option[float64] {
	if len(returns) < 2 {
		return optional.None[float64]()
	}

	perBarRF := riskFreeRate / float64(barsPerYear)

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - perBarRF
	}

	sd := stdDev(excess)
	if sd == 0 {
		return optional.None[float64]()
	}

	return optional.Some(mean(excess) / sd * math.Sqrt(float64(barsPerYear)))
}

// sortino replaces total volatility with downside deviation. Undefined when
// no excess return was ever negative.
func sortino(returns []float64, riskFreeRate float64, barsPerYear int) optional.Option[float64] {
	if len(returns) < 2 {
		return optional.None[float64]()
	}

	perBarRF := riskFreeRate / float64(barsPerYear)

	var sumSq float64

	var meanExcess float64

	for _, r := range returns {
		excess := r - perBarRF
		meanExcess += excess

		if excess < 0 {
			sumSq += excess * excess
		}
	}

	meanExcess /= float64(len(returns))

	downside := math.Sqrt(sumSq / float64(len(returns)))
	if downside == 0 {
		return optional.None[float64]()
	}

	return optional.Some(meanExcess / downside * math.Sqrt(float64(barsPerYear)))
}

// maxDrawdown returns the largest peak-to-trough decline in percent along
// with the indices of the peak and trough. A curve that never declines
// reports zero drawdown and -1 indices.
func maxDrawdown(curve types.EquityCurve) (pct float64, peakIdx, troughIdx int) {
	peakIdx, troughIdx = -1, -1
	bestPeak := 0
	peak := curve[0].Equity

	for i, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
			bestPeak = i

			continue
		}

		if peak <= 0 {
			continue
		}

		drawdown := (peak - point.Equity) / peak * 100
		if drawdown > pct {
			pct = drawdown
			peakIdx = bestPeak
			troughIdx = i
		}
	}

	return pct, peakIdx, troughIdx
}

func fillTradeStats(report *types.PerformanceReport, trades []types.Trade) {
	report.NumberOfTrades = len(trades)

	var (
		wins, losses           int
		grossProfit, grossLoss float64
		maxWin, maxLoss        float64
		closing                int
		holdingBars            float64
		roundTrips             int
		entryBar               = -1
	)

	for _, trade := range trades {
		if trade.Side == types.ActionBuy {
			entryBar = trade.SignalBarIndex

			continue
		}

		if !trade.IsClosing() {
			continue
		}

		closing++

		pnl := trade.RealizedPnL

		switch {
		case pnl > 0:
			wins++

			grossProfit += pnl
			if pnl > maxWin {
				maxWin = pnl
			}
		case pnl < 0:
			losses++

			grossLoss += -pnl
			if pnl < maxLoss {
				maxLoss = pnl
			}
		}

		if entryBar >= 0 {
			holdingBars += float64(trade.SignalBarIndex - entryBar)
			roundTrips++
			entryBar = -1
		}
	}

	report.WinningTrades = wins
	report.LosingTrades = losses
	report.GrossProfit = grossProfit
	report.GrossLoss = grossLoss
	report.MaxWin = maxWin
	report.MaxLoss = maxLoss

	if closing > 0 {
		winRate := float64(wins) / float64(closing)
		report.WinRate = optional.Some(winRate)

		var avgWin, avgLoss float64

		if wins > 0 {
			avgWin = grossProfit / float64(wins)
			report.AvgWin = optional.Some(avgWin)
		}

		if losses > 0 {
			avgLoss = -grossLoss / float64(losses)
			report.AvgLoss = optional.Some(avgLoss)
		}

		if grossLoss > 0 {
			report.ProfitFactor = optional.Some(grossProfit / grossLoss)
		}

		if wins > 0 && losses > 0 {
			report.PayoffRatio = optional.Some(avgWin / math.Abs(avgLoss))
		}

		lossRate := float64(losses) / float64(closing)
		report.Expectancy = optional.Some(winRate*avgWin + lossRate*avgLoss)
	}

	if roundTrips > 0 {
		report.AvgHoldingBars = optional.Some(holdingBars / float64(roundTrips))
	}
}

// buyAndHold is the return of buying at the first close and holding to the
// last, in percent.
func buyAndHold(curve types.EquityCurve) float64 {
	first := curve[0].Close
	if first == 0 {
		return 0
	}

	last := curve[len(curve)-1].Close

	return (last - first) / first * 100
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	m := mean(values)

	var sumSq float64

	for _, v := range values {
		diff := v - m
		sumSq += diff * diff
	}

	return math.Sqrt(sumSq / float64(len(values)))
}
