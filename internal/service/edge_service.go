package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/edge"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
	"github.com/wheels195/cfb-market-edge-sub002/internal/projection"
	"github.com/wheels195/cfb-market-edge-sub002/internal/repository"
)

// ScanResult summarises one pass over the upcoming slate
type ScanResult struct {
	GamesScanned int
	Projected    int
	Evaluated    int
	Qualified    int
	Skipped      int
}

// EdgeService runs the live pipeline: project upcoming games against
// the current rating store, compare each projection to the latest
// pre-kickoff line, and persist the resulting edge records.
type EdgeService struct {
	cfg       config.EdgeConfig
	repos     *repository.Repositories
	ratings   *RatingService
	projector *projection.Projector
	anchorer  *projection.Anchorer
	cache     *ProjectionCache
	evaluator *edge.Evaluator
	logger    *logrus.Logger
}

// NewEdgeService creates an edge service
func NewEdgeService(cfg config.EdgeConfig, projCfg config.ProjectionConfig, repos *repository.Repositories, ratings *RatingService, logger *logrus.Logger) (*EdgeService, error) {
	if repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if ratings == nil {
		return nil, fmt.Errorf("rating service is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	evaluator, err := edge.NewEvaluator(cfg, logger)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	svc := &EdgeService{
		cfg:       cfg,
		repos:     repos,
		ratings:   ratings,
		projector: projection.NewProjector(projCfg, logger),
		evaluator: evaluator,
		cache:     NewProjectionCache(ttl),
		logger:    logger,
	}
	if projCfg.Anchor.Enabled {
		svc.anchorer = projection.NewAnchorer(projCfg.Anchor, projCfg.ModelVersion+"-anchored", logger)
	}
	return svc, nil
}

// InvalidateProjections drops cached projections after rating updates
func (s *EdgeService) InvalidateProjections() {
	s.cache.Invalidate()
}

// ScanUpcoming projects every upcoming game, evaluates each against
// its most recent spread snapshot, and saves the edge records. A
// failure on one game skips that game rather than aborting the scan;
// leakage is the exception and aborts immediately.
func (s *EdgeService) ScanUpcoming(ctx context.Context, limit int) (*ScanResult, error) {
	games, err := s.repos.Game.GetUpcoming(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading upcoming games: %w", err)
	}

	result := &ScanResult{GamesScanned: len(games)}
	now := time.Now()
	for _, game := range games {
		if !game.StartTime.After(now) {
			result.Skipped++
			continue
		}
		record, err := s.scanGame(ctx, game)
		if err != nil {
			if models.IsLeakage(err) {
				return nil, err
			}
			s.logger.WithError(err).WithField("event_id", game.EventID).Warn("Skipping game in scan")
			result.Skipped++
			continue
		}
		result.Projected++
		result.Evaluated++
		if record.Qualifies {
			result.Qualified++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"scanned":   result.GamesScanned,
		"evaluated": result.Evaluated,
		"qualified": result.Qualified,
		"skipped":   result.Skipped,
	}).Info("Edge scan complete")
	return result, nil
}

// RescanEvent re-evaluates a single event, bypassing the projection
// cache so a fresh line snapshot is always compared against current
// ratings. Used when a new line capture arrives for a tracked event.
func (s *EdgeService) RescanEvent(ctx context.Context, eventID string) (*models.Edge, error) {
	game, err := s.repos.Game.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", eventID, err)
	}
	if game.Status != models.GameStatusScheduled {
		return nil, fmt.Errorf("event %s is %s, not scheduled", eventID, game.Status)
	}
	s.cache.Delete(eventID, s.projector.ModelVersion())
	return s.scanGame(ctx, game)
}

func (s *EdgeService) scanGame(ctx context.Context, game *models.Game) (*models.Edge, error) {
	line, err := s.repos.MarketLine.GetLatestBefore(ctx, game.EventID, models.MarketTypeSpread, game.StartTime)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("loading line for %s: %w", game.EventID, err)
	}

	proj, err := s.project(ctx, game, line)
	if err != nil {
		return nil, err
	}

	record, err := s.evaluator.Evaluate(proj, line)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Edge.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("saving edge for %s: %w", game.EventID, err)
	}
	return record, nil
}

// project builds the model line for a game. With anchoring enabled the
// latest market snapshot is the baseline and the bounded adjustment
// factors are layered on top; otherwise the rating or ensemble
// projection stands alone. Anchored projections are not cached, since
// they change with every new snapshot.
func (s *EdgeService) project(ctx context.Context, game *models.Game, line *models.MarketLine) (*models.Projection, error) {
	if s.anchorer != nil && line != nil {
		return s.anchorer.Anchor(game, line, s.anchorFactors(ctx, game))
	}

	if cached := s.cache.Get(game.EventID, s.projector.ModelVersion()); cached != nil {
		return cached, nil
	}

	store := s.ratings.Store()
	engine := s.ratings.Engine()
	in := projection.Inputs{
		Game:        game,
		HomeRating:  store.Get(game.HomeTeamID, game.Season),
		AwayRating:  store.Get(game.AwayTeamID, game.Season),
		HomeBoost:   engine.ProjectionBoost(game.HomeTeamID, game.Season),
		AwayBoost:   engine.ProjectionBoost(game.AwayTeamID, game.Season),
		HomeMetrics: s.lookupMetrics(ctx, game.HomeTeamID, game.Season, game.Week),
		AwayMetrics: s.lookupMetrics(ctx, game.AwayTeamID, game.Season, game.Week),
	}

	proj, err := s.projector.Project(in)
	if err != nil {
		return nil, err
	}
	s.cache.Set(proj)
	return proj, nil
}

// anchorFactors assembles the adjustment signals available from stored
// data. Sharp movement is the drift between the first and last
// pre-kickoff snapshots; the remaining factors have no feed wired and
// contribute zero with a warning.
func (s *EdgeService) anchorFactors(ctx context.Context, game *models.Game) projection.AnchorFactors {
	var factors projection.AnchorFactors

	history, err := s.repos.MarketLine.GetHistory(ctx, game.EventID)
	if err != nil {
		s.logger.WithError(err).WithField("event_id", game.EventID).Warn("Line history unavailable for sharp-move signal")
		return factors
	}

	var first, last *models.MarketLine
	for _, snap := range history {
		if snap.MarketType != models.MarketTypeSpread || !snap.CapturedAt.Before(game.StartTime) {
			continue
		}
		if first == nil {
			first = snap
		}
		last = snap
	}
	if first != nil && last != nil && first != last {
		move := last.Points - first.Points
		factors.SharpMove = &move
	}
	return factors
}

func (s *EdgeService) lookupMetrics(ctx context.Context, teamID string, season, week int) *models.TeamWeekMetrics {
	m, err := s.repos.TeamMetrics.GetForTeamWeek(ctx, teamID, season, week)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.WithError(err).WithField("team_id", teamID).Warn("Metrics lookup failed, treating as absent")
		}
		return nil
	}
	return m
}
