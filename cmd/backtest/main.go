package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	backtestengine "github.com/quantfolio/stockdash-engine/internal/backtest/engine"
	engine "github.com/quantfolio/stockdash-engine/internal/backtest/engine/engine_v1"
	"github.com/quantfolio/stockdash-engine/internal/indicator"
	"github.com/quantfolio/stockdash-engine/internal/logger"
	"github.com/quantfolio/stockdash-engine/internal/strategy"
	"github.com/quantfolio/stockdash-engine/pkg/marketdata"
	"github.com/quantfolio/stockdash-engine/pkg/results"
)

// runAction loads the data file, attaches indicators, simulates the selected
// strategies, and prints one summary line per run. With --output set, every
// run is also exported as Parquet files plus a YAML report.
func runAction(ctx context.Context, cmd *cli.Command) error {
	dataPath := cmd.String("data")
	configPath := cmd.String("config")
	outputFolder := cmd.String("output")
	initialCash := cmd.Float("cash")

	names := cmd.StringSlice("strategy")
	if len(names) == 0 {
		names = strategy.Names()
	}

	appLog, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer appLog.Sync() //nolint:errcheck

	loader, err := marketdata.NewLoader(appLog)
	if err != nil {
		return err
	}
	defer loader.Close()

	series, err := loader.Load(dataPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", dataPath, err)
	}

	attached, err := indicator.Attach(series, indicator.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to attach indicators: %w", err)
	}

	backtester := engine.NewBacktestEngineV1()

	if configPath != "" {
		config, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := backtester.Initialize(string(config)); err != nil {
			return err
		}
	} else {
		cfg := engine.EmptyConfig()
		cfg.InitialCash = initialCash
		cfg.CloseAtEnd = cmd.Bool("close-at-end")
		backtester.(*engine.BacktestEngineV1).SetConfig(cfg)
	}

	if err := backtester.SetSeries(attached); err != nil {
		return err
	}

	for _, name := range names {
		s, err := strategy.Get(name)
		if err != nil {
			return err
		}

		if err := backtester.LoadStrategy(s); err != nil {
			return err
		}
	}

	bar := progressbar.Default(int64(len(attached) * len(names)))
	bar.Describe(fmt.Sprintf("Simulating %s over %d bars", filepath.Base(dataPath), len(attached)))

	runResults, err := backtester.Run(ctx, func(current, total int) error {
		return bar.Set(current)
	})
	if err != nil {
		return err
	}

	_ = bar.Finish()

	printSummary(runResults)

	if outputFolder != "" {
		store, err := results.NewStore(appLog)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, result := range runResults {
			if err := store.Save(result); err != nil {
				return err
			}

			folder := filepath.Join(outputFolder, fmt.Sprintf("%s_%s", result.StrategyName, result.RunID))
			if err := store.Export(folder, result); err != nil {
				return err
			}
		}
	}

	return nil
}

func printSummary(runResults []backtestengine.Result) {
	fmt.Printf("\n%-14s %10s %10s %8s %8s %8s %8s\n",
		"STRATEGY", "FINAL", "RETURN%", "TRADES", "WIN%", "MAXDD%", "SHARPE")

	for _, result := range runResults {
		report := result.Report

		winRate := "n/a"
		if rate, err := report.WinRate.Take(); err == nil {
			winRate = fmt.Sprintf("%.1f", rate*100)
		}

		sharpe := "n/a"
		if value, err := report.SharpeRatio.Take(); err == nil {
			sharpe = fmt.Sprintf("%.2f", value)
		}

		fmt.Printf("%-14s %10.2f %10.2f %8d %8s %8.2f %8s\n",
			result.StrategyName,
			report.FinalEquity,
			report.TotalReturnPct,
			report.NumberOfTrades,
			winRate,
			report.MaxDrawdownPct,
			sharpe,
		)
	}
}

// schemaAction prints the JSON schema of the engine configuration file.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	schema, err := engine.NewBacktestEngineV1().GetConfigSchema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Simulate trading strategies over historical OHLCV data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to a CSV or Parquet file with time/open/high/low/close/volume columns",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the engine YAML configuration (see the schema command)",
			},
			&cli.StringSliceFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   fmt.Sprintf("Strategy to simulate, repeatable (available: %v; default all)", strategy.Names()),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Folder to export per-run Parquet files and YAML reports into",
			},
			&cli.FloatFlag{
				Name:  "cash",
				Usage: "Initial cash when no config file is given",
				Value: 10000,
			},
			&cli.BoolFlag{
				Name:  "close-at-end",
				Usage: "Sell any open position at the final bar's close",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the engine configuration file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
