// Package backtest replays frozen historical snapshots through the
// rating, projection and edge pipeline, grades the resulting bets,
// and gates model promotion on multi-criteria improvement. The replay
// is single-threaded: each update depends on the latest prior rating
// of both teams, so game processing forms a strict sequential chain.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/edge"
	"github.com/wheels195/cfb-market-edge-sub002/internal/logger"
	"github.com/wheels195/cfb-market-edge-sub002/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
	"github.com/wheels195/cfb-market-edge-sub002/internal/projection"
	"github.com/wheels195/cfb-market-edge-sub002/internal/rating"
)

// Source supplies frozen historical snapshots to a replay. Every
// method must return its full result set; a silent truncation corrupts
// exclusion counts and rating sequencing.
type Source interface {
	// CompletedGames returns games for the season range in ascending
	// (season, startTime) order.
	CompletedGames(ctx context.Context, startSeason, endSeason int) ([]*models.Game, error)
	// LineHistory returns the append-only spread snapshot series for
	// an event, ascending by capture time. Empty when no book posted.
	LineHistory(ctx context.Context, eventID string) ([]*models.MarketLine, error)
	// MetricsFor returns the team-week efficiency row, or ErrNotFound
	// when the feed has no entry.
	MetricsFor(ctx context.Context, teamID string, season, week int) (*models.TeamWeekMetrics, error)
}

// Engine orchestrates historical replay runs
type Engine struct {
	cfg       config.BacktestConfig
	ratingCfg config.RatingConfig
	source    Source
	projector *projection.Projector
	evaluator *edge.Evaluator
	logger    *logrus.Logger
	audit     *logger.AuditLogger
}

// NewEngine creates a backtesting engine. The train/test boundary in
// cfg is fixed up front and never tuned against test-set results.
func NewEngine(cfg config.BacktestConfig, ratingCfg config.RatingConfig, projCfg config.ProjectionConfig, edgeCfg config.EdgeConfig, source Source, log *logrus.Logger) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if log == nil {
		log = logrus.New()
	}
	evaluator, err := edge.NewEvaluator(edgeCfg, log)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		ratingCfg: ratingCfg,
		source:    source,
		projector: projection.NewProjector(projCfg, log),
		evaluator: evaluator,
		logger:    log,
		audit:     logger.NewAuditLogger(log),
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() config.BacktestConfig {
	return e.cfg
}

// Run replays the configured season range and produces a report.
// Replaying the same frozen input reproduces identical aggregate
// metrics; randomness is confined to the seeded bootstrap step.
// A leakage violation aborts the whole run, it is never skipped.
func (e *Engine) Run(ctx context.Context) (*models.BacktestReport, *ReplayState, error) {
	start := time.Now()
	e.logger.WithFields(logrus.Fields{
		"start_season": e.cfg.StartSeason,
		"end_season":   e.cfg.EndSeason,
		"train_end":    e.cfg.TrainEndSeason,
	}).Info("Starting backtest run")

	state, err := e.replay(ctx)
	if err != nil {
		return nil, nil, err
	}

	summary := Summarize(state.Bets)
	boot := RunBootstrap(state.Bets, BootstrapConfig{
		Iterations:      e.cfg.BootstrapIterations,
		Seed:            e.cfg.BootstrapSeed,
		ConfidenceLevel: e.cfg.ConfidenceLevel,
	})

	report := &models.BacktestReport{
		ID:            uuid.New(),
		ModelVersion:  e.projector.ModelVersion(),
		RunDate:       time.Now().UTC(),
		TrainEnd:      e.cfg.TrainEndSeason,
		Bets:          summary.Bets,
		Wins:          summary.Wins,
		Losses:        summary.Losses,
		Pushes:        summary.Pushes,
		WinRate:       summary.WinRate,
		ROI:           models.Interval{Estimate: summary.ROI, Lower: boot.ROI.Lower, Upper: boot.ROI.Upper},
		CLV:           models.Interval{Estimate: summary.CLV, Lower: boot.CLV.Lower, Upper: boot.CLV.Upper},
		Brier:         models.Interval{Estimate: summary.Brier, Lower: boot.Brier.Lower, Upper: boot.Brier.Upper},
		BootstrapSeed: boot.Seed,
		EdgeBuckets:   summary.EdgeBuckets,
		Exclusions:    state.ExclusionsJSON(),
		CreatedAt:     time.Now().UTC(),
	}

	metrics.LastBacktestROI.Set(summary.ROI)
	metrics.BacktestDuration.Observe(time.Since(start).Seconds())
	for _, b := range summary.EdgeBuckets {
		if b.Bets > 0 {
			bucket := fmt.Sprintf("%.1f-%.1f", b.LowerEdge, b.UpperEdge)
			metrics.CalibrationDrift.WithLabelValues(bucket).Set(b.WinRate - b.ExpectedWinRate)
		}
	}
	e.logger.WithFields(logrus.Fields{
		"bets":       report.Bets,
		"win_rate":   report.WinRate,
		"roi":        report.ROI.Estimate,
		"exclusions": state.TotalExclusions(),
	}).Info("Backtest run complete")
	return report, state, nil
}

// replay walks the frozen game feed in order, betting on test-set
// games before folding each result into the ratings.
func (e *Engine) replay(ctx context.Context) (*ReplayState, error) {
	store := rating.NewStore(e.ratingCfg.Baseline, e.ratingCfg.CarryoverFactor)
	engine, err := rating.NewEngine(e.ratingCfg, store, e.logger)
	if err != nil {
		return nil, err
	}

	games, err := e.source.CompletedGames(ctx, e.cfg.StartSeason, e.cfg.EndSeason)
	if err != nil {
		return nil, fmt.Errorf("loading games: %w", err)
	}

	state := NewReplayState()
	currentSeason := 0
	var prevStart time.Time

	for _, game := range games {
		if game.Season < currentSeason || (game.Season == currentSeason && game.StartTime.Before(prevStart)) {
			return nil, fmt.Errorf("game feed out of order at event %s", game.EventID)
		}
		if game.Season > currentSeason {
			if currentSeason != 0 {
				engine.ResetSeason()
			}
			currentSeason = game.Season
		}
		prevStart = game.StartTime
		state.GamesProcessed++

		if !game.IsCompleted() {
			state.RecordExclusion(game.Season, ExclusionMissingResult)
			e.audit.LogGameExclusion(game.EventID, game.Season, ExclusionMissingResult)
			continue
		}

		if game.Season > e.cfg.TrainEndSeason {
			if err := e.betOnGame(ctx, game, engine, store, state); err != nil {
				return nil, err
			}
		}

		if _, err := engine.Update(game); err != nil {
			return nil, fmt.Errorf("rating update for event %s: %w", game.EventID, err)
		}
		state.GamesRated++
	}

	return state, nil
}

// betOnGame projects, evaluates and grades one test-set game. All
// inputs are validated against kickoff before use; a future-dated
// input is fatal for the whole run.
func (e *Engine) betOnGame(ctx context.Context, game *models.Game, engine *rating.Engine, store *rating.Store, state *ReplayState) error {
	lines, err := e.source.LineHistory(ctx, game.EventID)
	if err != nil {
		return fmt.Errorf("loading lines for event %s: %w", game.EventID, err)
	}
	betLine, closing := selectLines(lines, game.StartTime)
	if closing == nil {
		state.RecordExclusion(game.Season, ExclusionMissingClosingLine)
		e.audit.LogGameExclusion(game.EventID, game.Season, ExclusionMissingClosingLine)
		return nil
	}

	homeRating := store.Get(game.HomeTeamID, game.Season)
	awayRating := store.Get(game.AwayTeamID, game.Season)
	if homeRating.GamesPlayed == 0 || awayRating.GamesPlayed == 0 {
		// A rating with no current-season evidence behind it is
		// treated as missing rather than bet on blind.
		state.RecordExclusion(game.Season, ExclusionMissingRating)
		e.audit.LogGameExclusion(game.EventID, game.Season, ExclusionMissingRating)
		return nil
	}

	proj, err := e.projector.Project(projection.Inputs{
		Game:        game,
		HomeRating:  homeRating,
		AwayRating:  awayRating,
		HomeBoost:   engine.ProjectionBoost(game.HomeTeamID, game.Season),
		AwayBoost:   engine.ProjectionBoost(game.AwayTeamID, game.Season),
		HomeMetrics: e.lookupMetrics(ctx, game.HomeTeamID, game.Season, game.Week),
		AwayMetrics: e.lookupMetrics(ctx, game.AwayTeamID, game.Season, game.Week),
	})
	if err != nil {
		// Leakage aborts the run; it must never degrade to a skip.
		return err
	}

	edgeRec, err := e.evaluator.Evaluate(proj, betLine)
	if err != nil {
		return err
	}
	if !edgeRec.Qualifies {
		return nil
	}

	bet, err := GradeBet(game, edgeRec, betLine, closing)
	if err != nil {
		return err
	}
	state.RecordBet(bet)
	return nil
}

func (e *Engine) lookupMetrics(ctx context.Context, teamID string, season, week int) *models.TeamWeekMetrics {
	m, err := e.source.MetricsFor(ctx, teamID, season, week)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			e.logger.WithError(err).WithField("team_id", teamID).Warn("Metrics lookup failed, treating as absent")
		}
		return nil
	}
	return m
}

// selectLines picks the bet line and the closing line from one event's
// snapshot series. The bet line is the earliest pre-kickoff snapshot,
// the closing line the latest; both come from a single consistent
// read of the series. Post-kickoff snapshots are never considered.
func selectLines(lines []*models.MarketLine, kickoff time.Time) (betLine, closing *models.MarketLine) {
	for _, line := range lines {
		if line.MarketType != models.MarketTypeSpread {
			continue
		}
		if !line.CapturedAt.Before(kickoff) {
			continue
		}
		if betLine == nil {
			betLine = line
		}
		closing = line
	}
	return betLine, closing
}
