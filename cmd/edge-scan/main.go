// Package main provides the entry point for the live edge scan daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/database"
	"github.com/wheels195/cfb-market-edge-sub002/internal/health"
	"github.com/wheels195/cfb-market-edge-sub002/internal/logger"
	"github.com/wheels195/cfb-market-edge-sub002/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub002/internal/repository"
	"github.com/wheels195/cfb-market-edge-sub002/internal/scheduler"
	"github.com/wheels195/cfb-market-edge-sub002/internal/service"
)

// Build information, set via ldflags
var (
	Version = "dev"
)

var (
	configFile string
	gameLimit  int
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
	ratingSvc  *service.RatingService
	edgeSvc    *service.EdgeService
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().IntVar(&gameLimit, "limit", 200, "Maximum upcoming games per scan")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(syncCmd)
}

var rootCmd = &cobra.Command{
	Use:   "edge-scan",
	Short: "Run the edge scan daemon",
	Long:  `Projects upcoming games against current team ratings, compares each projection to the latest market line, and records qualified edges on a recurring schedule.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd.Context())
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single scan of the upcoming slate and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ratingSvc.Rebuild(cmd.Context(), cfg.Backtest.StartSeason, currentSeason()); err != nil {
			return fmt.Errorf("rating sync: %w", err)
		}
		result, err := edgeSvc.ScanUpcoming(cmd.Context(), gameLimit)
		if err != nil {
			return err
		}
		fmt.Printf("Scanned %d games: %d evaluated, %d qualified, %d skipped\n",
			result.GamesScanned, result.Evaluated, result.Qualified, result.Skipped)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync-ratings",
	Short: "Rebuild team ratings from the completed-game history and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ratingSvc.Rebuild(cmd.Context(), cfg.Backtest.StartSeason, currentSeason())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup(ctx context.Context) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	repos, err = repository.NewRepositories(db, cfg.Database.PageSize)
	if err != nil {
		return err
	}
	ratingSvc, err = service.NewRatingService(cfg.Rating, repos, appLog)
	if err != nil {
		return err
	}
	edgeSvc, err = service.NewEdgeService(cfg.Edge, cfg.Projection, repos, ratingSvc, appLog)
	if err != nil {
		return err
	}
	return nil
}

func runDaemon(ctx context.Context) error {
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"model":       cfg.Projection.ModelVersion,
		"version":     Version,
	}).Info("Edge scan daemon starting")

	if err := ratingSvc.Rebuild(ctx, cfg.Backtest.StartSeason, currentSeason()); err != nil {
		return fmt.Errorf("initial rating sync: %w", err)
	}

	sched := scheduler.NewScheduler(edgeSvc, ratingSvc, appLog)
	var schedCheck health.ScanScheduler
	if cfg.Scheduler.Enabled {
		schedCheck = sched
		if err := sched.ScheduleEdgeScan(cfg.Scheduler.RescanSchedule, gameLimit); err != nil {
			return err
		}
		if err := sched.ScheduleRatingSync("0 6 * * *", cfg.Backtest.StartSeason, currentSeason()); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Metrics.Port,
		MetricsPath: cfg.Metrics.Path,
		Logger:      appLog,
		DB:          db,
		Scheduler:   schedCheck,
	})
	if err := healthServer.Start(ctx); err != nil {
		return err
	}
	healthServer.SetReady(true)

	<-ctx.Done()
	appLog.Info("Shutdown signal received")
	healthServer.SetReady(false)
	return nil
}

// currentSeason maps the calendar date to the football season: games
// in January belong to the prior fall's season.
func currentSeason() int {
	now := time.Now()
	if now.Month() < time.June {
		return now.Year() - 1
	}
	return now.Year()
}
