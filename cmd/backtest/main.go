// Package main provides the entry point for the backtest CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wheels195/cfb-market-edge-sub002/internal/backtest"
	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/database"
	"github.com/wheels195/cfb-market-edge-sub002/internal/logger"
	"github.com/wheels195/cfb-market-edge-sub002/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub002/internal/repository"
)

func main() {
	var (
		configPath  = flag.String("config", "config/config.yaml", "Path to config file")
		startSeason = flag.Int("start-season", 0, "Override start season")
		endSeason   = flag.Int("end-season", 0, "Override end season")
		trainEnd    = flag.Int("train-end", 0, "Override last training season")
		seed        = flag.Int("seed", 0, "Override bootstrap seed (0 derives one from the clock)")
		output      = flag.String("output", "", "Override output path for the JSON report")
		save        = flag.Bool("save", true, "Persist the report to the database")
		compare     = flag.Bool("compare", false, "Replay a rating-only baseline and run the promotion decision")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	appLog := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	btCfg := cfg.Backtest
	if *startSeason != 0 {
		btCfg.StartSeason = *startSeason
	}
	if *endSeason != 0 {
		btCfg.EndSeason = *endSeason
	}
	if *trainEnd != 0 {
		btCfg.TrainEndSeason = *trainEnd
	}
	if *seed != 0 {
		btCfg.BootstrapSeed = int64(*seed)
	}
	if *output != "" {
		btCfg.OutputPath = *output
	}

	ctx := context.Background()
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db, cfg.Database.PageSize)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build repositories")
	}

	engine, err := backtest.NewEngine(btCfg, cfg.Rating, cfg.Projection, cfg.Edge, repository.NewBacktestSource(repos), appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build backtest engine")
	}

	appLog.WithFields(logrus.Fields{
		"start_season": btCfg.StartSeason,
		"end_season":   btCfg.EndSeason,
		"train_end":    btCfg.TrainEndSeason,
	}).Info("Starting backtest replay")

	report, state, err := engine.Run(ctx)
	if err != nil {
		appLog.WithError(err).Fatal("Backtest failed")
	}

	if *compare {
		baselineCfg := cfg.Projection
		baselineCfg.EnsembleEnabled = false
		baselineCfg.Anchor.Enabled = false
		baselineCfg.ModelVersion = cfg.Projection.ModelVersion + "-rating-only"

		baselineEngine, err := backtest.NewEngine(btCfg, cfg.Rating, baselineCfg, cfg.Edge, repository.NewBacktestSource(repos), appLog)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to build baseline engine")
		}
		_, baselineState, err := baselineEngine.Run(ctx)
		if err != nil {
			appLog.WithError(err).Fatal("Baseline replay failed")
		}

		candidate := backtest.NewCandidate(cfg.Projection.ModelVersion, state.Bets, btCfg.SubPeriodWeek)
		baseline := backtest.NewCandidate(baselineCfg.ModelVersion, baselineState.Bets, btCfg.SubPeriodWeek)
		criteria := backtest.DecidePromotion(candidate, baseline, appLog)
		report.Decision = criteria.Decision
		appLog.WithFields(logrus.Fields{
			"decision":        criteria.Decision,
			"criteria_met":    criteria.CriteriaMet,
			"sign_consistent": criteria.SignConsistent,
		}).Info("Promotion decision")
	}

	fmt.Print(backtest.GenerateConsoleReport(report))
	appLog.WithFields(logrus.Fields{
		"games_processed": state.GamesProcessed,
		"exclusions":      state.TotalExclusions(),
	}).Info("Replay accounting")

	if btCfg.OutputPath != "" {
		if err := backtest.WriteJSONReport(report, btCfg.OutputPath); err != nil {
			appLog.WithError(err).Fatal("Failed to write JSON report")
		}
		appLog.WithField("path", btCfg.OutputPath).Info("Report written")
	}

	if *save {
		if err := repos.BacktestReport.Save(ctx, report); err != nil {
			appLog.WithError(err).Fatal("Failed to persist report")
		}
		appLog.WithField("report_id", report.ID).Info("Report persisted")
	}
}
