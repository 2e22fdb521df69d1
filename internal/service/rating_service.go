package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub002/internal/rating"
	"github.com/wheels195/cfb-market-edge-sub002/internal/repository"
)

// RatingService rebuilds team ratings from the game history and
// persists snapshots. Rebuilding from scratch keeps the store's
// chronology invariant trivially satisfied on every sync.
type RatingService struct {
	cfg    config.RatingConfig
	repos  *repository.Repositories
	logger *logrus.Logger

	store  *rating.Store
	engine *rating.Engine
}

// NewRatingService creates a rating service
func NewRatingService(cfg config.RatingConfig, repos *repository.Repositories, logger *logrus.Logger) (*RatingService, error) {
	if repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	store := rating.NewStore(cfg.Baseline, cfg.CarryoverFactor)
	engine, err := rating.NewEngine(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	return &RatingService{cfg: cfg, repos: repos, logger: logger, store: store, engine: engine}, nil
}

// Store exposes the current rating store for projections
func (s *RatingService) Store() *rating.Store {
	return s.store
}

// Engine exposes the update engine for recency boosts
func (s *RatingService) Engine() *rating.Engine {
	return s.engine
}

// Rebuild replays the full completed-game history into a fresh store
// and persists the resulting season snapshot.
func (s *RatingService) Rebuild(ctx context.Context, startSeason, endSeason int) error {
	store := rating.NewStore(s.cfg.Baseline, s.cfg.CarryoverFactor)
	engine, err := rating.NewEngine(s.cfg, store, s.logger)
	if err != nil {
		return err
	}

	games, err := s.repos.Game.GetCompletedBySeasonRange(ctx, startSeason, endSeason)
	if err != nil {
		return fmt.Errorf("loading game history: %w", err)
	}

	currentSeason := 0
	applied := 0
	for _, game := range games {
		if !game.IsCompleted() {
			continue
		}
		if game.Season > currentSeason {
			if currentSeason != 0 {
				engine.ResetSeason()
			}
			currentSeason = game.Season
		}
		if _, err := engine.Update(game); err != nil {
			return fmt.Errorf("applying event %s: %w", game.EventID, err)
		}
		applied++
	}

	if err := s.repos.Rating.UpsertBatch(ctx, store.Snapshot()); err != nil {
		return fmt.Errorf("persisting ratings: %w", err)
	}

	s.store = store
	s.engine = engine
	metrics.TrackedRatings.Set(float64(store.Len()))
	s.logger.WithFields(logrus.Fields{
		"games_applied": applied,
		"teams":         store.Len(),
		"through":       endSeason,
	}).Info("Rating rebuild complete")
	return nil
}
