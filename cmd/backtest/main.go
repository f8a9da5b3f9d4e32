package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/barsim/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/barsim/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/barsim/internal/loader"
	"github.com/rxtech-lab/barsim/internal/logger"
	"github.com/rxtech-lab/barsim/internal/strategy"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func newStrategy(name string) (strategy.Strategy, error) {
	switch name {
	case "rsi_mean_reversion":
		return strategy.NewRSIMeanReversion(), nil
	case "macd_crossover":
		return strategy.NewMACDCrossover(), nil
	case "trend_filtered_rsi":
		return strategy.NewTrendFilteredRSI(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

func readOptionalFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return string(content), nil
}

// backtestAction is the core logic executed by the CLI command.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	appLog, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLog.Sync()

	engineConfig, err := readOptionalFile(cmd.String("config"))
	if err != nil {
		return err
	}

	strategyConfig, err := readOptionalFile(cmd.String("strategy-config"))
	if err != nil {
		return err
	}

	s, err := newStrategy(cmd.String("strategy"))
	if err != nil {
		return err
	}

	if err := s.Initialize(strategyConfig); err != nil {
		return fmt.Errorf("failed to initialize strategy: %w", err)
	}

	bars, err := loader.CSV(cmd.String("data"))
	if err != nil {
		return err
	}

	backtester := engine_v1.NewBacktestEngineV1(appLog)

	if err := backtester.Initialize(engineConfig); err != nil {
		return err
	}

	if err := backtester.LoadBars(bars); err != nil {
		return err
	}

	if err := backtester.SetStrategy(s); err != nil {
		return err
	}

	if err := backtester.SetResultsFolder(cmd.String("output")); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	callback := engine.OnProcessDataCallback(func(current int, total int) error {
		if bar == nil {
			bar = progressbar.Default(int64(total))
		}

		return bar.Set(current)
	})

	result, err := backtester.Run(optional.Some(callback))
	if err != nil {
		return err
	}

	fmt.Printf("\nRun %s (%s, %d bars, %d trades)\n",
		result.Run.ID, result.Run.Strategy, result.Run.Bars, len(result.Trades))
	fmt.Printf("  win rate:     %.2f%%\n", result.Stats.WinRate*100)
	fmt.Printf("  sharpe:       %.4f\n", result.Stats.Sharpe)
	fmt.Printf("  sortino:      %.4f\n", result.Stats.Sortino)
	fmt.Printf("  max drawdown: %.2f%%\n", result.Stats.MaxDrawdown*100)
	fmt.Printf("  cagr:         %.4f\n", result.Stats.CAGR)
	fmt.Printf("  calmar:       %.4f\n", result.Stats.Calmar)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay a CSV bar series through a trading strategy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the CSV bar file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the engine configuration YAML",
			},
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Strategy to run: rsi_mean_reversion, macd_crossover or trend_filtered_rsi",
				Value:   "rsi_mean_reversion",
			},
			&cli.StringFlag{
				Name:  "strategy-config",
				Usage: "Path to the strategy configuration YAML",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Results folder for stats and Parquet exports",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
