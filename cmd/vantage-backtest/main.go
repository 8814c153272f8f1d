// One-shot tool: run a backtest from the command line without the HTTP
// server and print a comparison table.
//
// Usage:
//
//	go run cmd/vantage-backtest/main.go -symbols SPY,QQQ -start 2020-01-01 -end 2024-01-01 -amount 10000
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"vantage/internal/backtest"
	"vantage/internal/config"
	"vantage/internal/domain"
	"vantage/internal/marketdata"
	"vantage/internal/store"
	"vantage/internal/util"
)

func main() {
	var (
		symbolsFlag = flag.String("symbols", "", "comma-separated symbols (required)")
		startFlag   = flag.String("start", "", "start date YYYY-MM-DD (required)")
		endFlag     = flag.String("end", "", "end date YYYY-MM-DD (required)")
		strategy    = flag.String("strategy", "lump_sum", "lump_sum or dca")
		amount      = flag.Float64("amount", 10000, "investment amount (per period for dca)")
		frequency   = flag.String("frequency", "monthly", "dca contribution frequency")
		cfgPath     = flag.String("config", "config/vantage.yaml", "config file path")
		csvOut      = flag.String("csv", "", "write results to a CSV file")
	)
	flag.Parse()

	if *symbolsFlag == "" || *startFlag == "" || *endFlag == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger := util.NewLogger(cfg.Logging.Level, "text")
	util.SetDefault(logger)

	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -start: %v\n", err)
		os.Exit(1)
	}
	end, err := time.Parse("2006-01-02", *endFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -end: %v\n", err)
		os.Exit(1)
	}

	var symbols []string
	for _, s := range strings.Split(*symbolsFlag, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}

	strat, err := backtest.NewStrategy(domain.StrategyKind(*strategy), *amount, domain.Frequency(*frequency))
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad strategy: %v\n", err)
		os.Exit(1)
	}

	alpacaSrc := marketdata.NewAlpacaSource(
		cfg.Alpaca.APIKey, cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL, cfg.Alpaca.BaseURL,
		cfg.Backtest.RateLimitPerMin, cfg.Backtest.RateLimitBurst,
	)
	prices := store.NewParquetStore(cfg.Storage.DataDir)
	source := marketdata.NewCachedSource(alpacaSrc, prices)

	runner := backtest.NewRunner(source, alpacaSrc)
	runner.SetFanOut(cfg.Backtest.MaxConcurrentFetches,
		time.Duration(cfg.Backtest.FetchTimeoutSec)*time.Second)

	report, err := runner.Run(context.Background(), symbols, start, end, strat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backtest: %v\n", err)
		os.Exit(1)
	}

	printReport(report)

	if *csvOut != "" {
		if err := writeCSV(*csvOut, report); err != nil {
			fmt.Fprintf(os.Stderr, "writing csv: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nresults written to %s\n", *csvOut)
	}

	if report.AllFailed() {
		os.Exit(1)
	}
}

func printReport(report *backtest.Report) {
	fmt.Printf("%-8s %12s %9s %10s %11s %8s %14s %14s\n",
		"Symbol", "Return %", "CAGR %", "MaxDD %", "Vol %", "Sharpe", "Final $", "Invested $")
	for _, res := range report.Results {
		fmt.Printf("%-8s %12.2f %9.2f %10.2f %11.2f %8.2f %14.2f %14.2f\n",
			res.Symbol, res.TotalReturn, res.CAGR, res.MaxDrawdown,
			res.Volatility, res.SharpeRatio, res.FinalValue, res.TotalInvested)
	}
	for _, se := range report.Errors {
		fmt.Printf("%-8s FAILED: %v\n", se.Symbol, se.Err)
	}

	if len(report.Results) > 1 {
		c := report.Comparison
		fmt.Printf("\nbest performer: %s (%.2f%%)   lowest risk: %s   best sharpe: %s\n",
			c.BestPerformer, c.HighestReturn, c.LowestRisk, c.BestSharpe)
	}
}

func writeCSV(path string, report *backtest.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	header := []string{"symbol", "total_return", "cagr", "max_drawdown",
		"volatility", "sharpe_ratio", "final_value", "total_invested"}
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, res := range report.Results {
		row := []string{
			res.Symbol,
			strconv.FormatFloat(res.TotalReturn, 'f', 2, 64),
			strconv.FormatFloat(res.CAGR, 'f', 2, 64),
			strconv.FormatFloat(res.MaxDrawdown, 'f', 2, 64),
			strconv.FormatFloat(res.Volatility, 'f', 2, 64),
			strconv.FormatFloat(res.SharpeRatio, 'f', 2, 64),
			strconv.FormatFloat(res.FinalValue, 'f', 2, 64),
			strconv.FormatFloat(res.TotalInvested, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
