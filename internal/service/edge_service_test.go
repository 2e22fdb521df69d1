package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
	"github.com/wheels195/cfb-market-edge-sub002/internal/repository"
)

type fakeGameRepo struct {
	upcoming  []*models.Game
	completed []*models.Game
	byID      map[string]*models.Game
}

func (f *fakeGameRepo) Upsert(_ context.Context, game *models.Game) error {
	if f.byID == nil {
		f.byID = make(map[string]*models.Game)
	}
	f.byID[game.EventID] = game
	return nil
}

func (f *fakeGameRepo) GetByEventID(_ context.Context, eventID string) (*models.Game, error) {
	if g, ok := f.byID[eventID]; ok {
		return g, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeGameRepo) GetCompletedBySeasonRange(_ context.Context, startSeason, endSeason int) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range f.completed {
		if g.Season >= startSeason && g.Season <= endSeason {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGameRepo) GetUpcoming(_ context.Context, limit int) ([]*models.Game, error) {
	if limit > 0 && limit < len(f.upcoming) {
		return f.upcoming[:limit], nil
	}
	return f.upcoming, nil
}

type fakeLineRepo struct {
	lines map[string][]*models.MarketLine
}

func (f *fakeLineRepo) Insert(_ context.Context, line *models.MarketLine) error {
	if f.lines == nil {
		f.lines = make(map[string][]*models.MarketLine)
	}
	f.lines[line.EventID] = append(f.lines[line.EventID], line)
	return nil
}

func (f *fakeLineRepo) InsertBatch(ctx context.Context, lines []*models.MarketLine) error {
	for _, line := range lines {
		if err := f.Insert(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeLineRepo) GetHistory(_ context.Context, eventID string) ([]*models.MarketLine, error) {
	return f.lines[eventID], nil
}

func (f *fakeLineRepo) GetLatestBefore(_ context.Context, eventID string, marketType models.MarketType, cutoff time.Time) (*models.MarketLine, error) {
	var latest *models.MarketLine
	for _, l := range f.lines[eventID] {
		if l.MarketType != marketType || !l.CapturedAt.Before(cutoff) {
			continue
		}
		if latest == nil || l.CapturedAt.After(latest.CapturedAt) {
			latest = l
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return latest, nil
}

type fakeMetricsRepo struct{}

func (fakeMetricsRepo) Upsert(_ context.Context, _ *models.TeamWeekMetrics) error { return nil }
func (fakeMetricsRepo) GetForTeamWeek(_ context.Context, _ string, _, _ int) (*models.TeamWeekMetrics, error) {
	return nil, models.ErrNotFound
}

type fakeRatingRepo struct {
	saved []models.TeamRating
}

func (f *fakeRatingRepo) UpsertBatch(_ context.Context, ratings []models.TeamRating) error {
	f.saved = ratings
	return nil
}

func (f *fakeRatingRepo) GetSeason(_ context.Context, _ int) ([]*models.TeamRating, error) {
	return nil, nil
}

type fakeEdgeRepo struct {
	saved map[string]*models.Edge
}

func (f *fakeEdgeRepo) Save(_ context.Context, edge *models.Edge) error {
	if f.saved == nil {
		f.saved = make(map[string]*models.Edge)
	}
	f.saved[edge.Key()] = edge
	return nil
}

func (f *fakeEdgeRepo) GetByEventID(_ context.Context, _ string) ([]*models.Edge, error) {
	return nil, nil
}

func (f *fakeEdgeRepo) GetQualified(_ context.Context, _ int) ([]*models.Edge, error) {
	return nil, nil
}

type fakeReportRepo struct{}

func (fakeReportRepo) Save(_ context.Context, _ *models.BacktestReport) error { return nil }
func (fakeReportRepo) GetLatest(_ context.Context, _ int) ([]*models.BacktestReport, error) {
	return nil, nil
}

func serviceConfigs() (config.RatingConfig, config.ProjectionConfig, config.EdgeConfig) {
	rating := config.RatingConfig{Baseline: 1500, CarryoverFactor: 0.75, KFixed: 20}
	proj := config.ProjectionConfig{
		ModelVersion:       "elo-v2",
		Divisor:            25,
		HomeFieldAdvantage: 2.5,
	}
	edges := config.EdgeConfig{
		MinEdge:            2.5,
		MaxEdge:            5.0,
		DisagreementGate:   4.0,
		CalibrationVersion: "2024.1",
		CacheTTLSeconds:    60,
	}
	return rating, proj, edges
}

func newTestEdgeService(t *testing.T, games *fakeGameRepo, lines *fakeLineRepo) (*EdgeService, *fakeEdgeRepo) {
	t.Helper()
	edgeRepo := &fakeEdgeRepo{}
	repos := &repository.Repositories{
		Game:           games,
		MarketLine:     lines,
		TeamMetrics:    fakeMetricsRepo{},
		Rating:         &fakeRatingRepo{},
		Edge:           edgeRepo,
		BacktestReport: fakeReportRepo{},
	}
	ratingCfg, projCfg, edgeCfg := serviceConfigs()
	ratings, err := NewRatingService(ratingCfg, repos, nil)
	if err != nil {
		t.Fatalf("NewRatingService: %v", err)
	}
	svc, err := NewEdgeService(edgeCfg, projCfg, repos, ratings, nil)
	if err != nil {
		t.Fatalf("NewEdgeService: %v", err)
	}
	return svc, edgeRepo
}

func upcomingGame(kickoff time.Time) *models.Game {
	return &models.Game{
		EventID:    "2024-wk10-aub-bama",
		Season:     2024,
		Week:       10,
		HomeTeamID: "bama",
		AwayTeamID: "aub",
		StartTime:  kickoff,
		Status:     models.GameStatusScheduled,
	}
}

func TestScanUpcomingQualifiesEdge(t *testing.T) {
	kickoff := time.Now().Add(24 * time.Hour)
	game := upcomingGame(kickoff)
	games := &fakeGameRepo{upcoming: []*models.Game{game}}
	lines := &fakeLineRepo{lines: map[string][]*models.MarketLine{
		game.EventID: {{
			EventID:    game.EventID,
			Book:       "consensus",
			MarketType: models.MarketTypeSpread,
			Points:     -7.8,
			CapturedAt: time.Now().Add(-time.Hour),
		}},
	}}
	svc, edgeRepo := newTestEdgeService(t, games, lines)
	svc.ratings.Store().Seed("bama", 2024, 1600)
	svc.ratings.Store().Seed("aub", 2024, 1400)

	result, err := svc.ScanUpcoming(context.Background(), 0)
	if err != nil {
		t.Fatalf("ScanUpcoming: %v", err)
	}
	if result.Evaluated != 1 || result.Qualified != 1 {
		t.Fatalf("expected 1 evaluated and 1 qualified, got %+v", result)
	}

	record, ok := edgeRepo.saved[game.EventID+"/consensus/spread"]
	if !ok {
		t.Fatalf("edge record not saved, have %v", edgeRepo.saved)
	}
	// model line -10.5, market -7.8, edge +2.7
	if math.Abs(record.RawEdge-2.7) > 1e-9 {
		t.Errorf("raw edge = %f, want 2.7", record.RawEdge)
	}
	if record.Side != models.SideHome {
		t.Errorf("side = %s, want home", record.Side)
	}
	if record.ReasonCode != models.ReasonQualified {
		t.Errorf("reason = %s, want qualified", record.ReasonCode)
	}
}

func TestScanUpcomingAnchoredModeClampsSharpMove(t *testing.T) {
	kickoff := time.Now().Add(24 * time.Hour)
	game := upcomingGame(kickoff)
	games := &fakeGameRepo{upcoming: []*models.Game{game}}
	snapshot := func(points float64, capturedAt time.Time) *models.MarketLine {
		return &models.MarketLine{
			EventID:    game.EventID,
			Book:       "consensus",
			MarketType: models.MarketTypeSpread,
			Points:     points,
			CapturedAt: capturedAt,
		}
	}
	lines := &fakeLineRepo{lines: map[string][]*models.MarketLine{
		game.EventID: {
			snapshot(-7.0, kickoff.Add(-72*time.Hour)),
			snapshot(-10.0, kickoff.Add(-25*time.Hour)),
		},
	}}

	edgeRepo := &fakeEdgeRepo{}
	repos := &repository.Repositories{
		Game:           games,
		MarketLine:     lines,
		TeamMetrics:    fakeMetricsRepo{},
		Rating:         &fakeRatingRepo{},
		Edge:           edgeRepo,
		BacktestReport: fakeReportRepo{},
	}
	ratingCfg, projCfg, edgeCfg := serviceConfigs()
	projCfg.Anchor = config.AnchorConfig{
		Enabled: true, ConferenceBound: 2, InjuryBound: 3, SharpMoveBound: 1.5,
		WeatherBound: 2, SituationalBound: 1.5, MaxTotalAdjustment: 4, SanityCeiling: 6,
	}
	ratings, err := NewRatingService(ratingCfg, repos, nil)
	if err != nil {
		t.Fatalf("NewRatingService: %v", err)
	}
	svc, err := NewEdgeService(edgeCfg, projCfg, repos, ratings, nil)
	if err != nil {
		t.Fatalf("NewEdgeService: %v", err)
	}

	result, err := svc.ScanUpcoming(context.Background(), 0)
	if err != nil {
		t.Fatalf("ScanUpcoming: %v", err)
	}
	if result.Evaluated != 1 {
		t.Fatalf("expected 1 evaluated, got %+v", result)
	}

	record, ok := edgeRepo.saved[game.EventID+"/consensus/spread"]
	if !ok {
		t.Fatalf("edge record not saved, have %v", edgeRepo.saved)
	}
	// Sharp move -3.0 clamps to -1.5, so the model line is -10.0 + (-1.5)
	// and the edge against the latest -10.0 snapshot comes out +1.5.
	if math.Abs(record.ModelLine-(-11.5)) > 1e-9 {
		t.Errorf("model line = %f, want -11.5", record.ModelLine)
	}
	if math.Abs(record.RawEdge-1.5) > 1e-9 {
		t.Errorf("raw edge = %f, want 1.5", record.RawEdge)
	}
	if record.Side != models.SideHome {
		t.Errorf("side = %s, want home", record.Side)
	}
	if record.ReasonCode != models.ReasonEdgeTooSmall {
		t.Errorf("reason = %s, want edge_too_small", record.ReasonCode)
	}
	// The four unwired signals each surface a warning.
	if len(record.Warnings) != 4 {
		t.Errorf("warnings = %v, want one per missing signal", record.Warnings)
	}
}

func TestScanUpcomingRecordsMissingLine(t *testing.T) {
	game := upcomingGame(time.Now().Add(24 * time.Hour))
	games := &fakeGameRepo{upcoming: []*models.Game{game}}
	svc, edgeRepo := newTestEdgeService(t, games, &fakeLineRepo{})

	result, err := svc.ScanUpcoming(context.Background(), 0)
	if err != nil {
		t.Fatalf("ScanUpcoming: %v", err)
	}
	if result.Evaluated != 1 || result.Qualified != 0 {
		t.Fatalf("expected 1 evaluated and 0 qualified, got %+v", result)
	}
	if len(edgeRepo.saved) != 1 {
		t.Fatalf("expected one saved record, got %d", len(edgeRepo.saved))
	}
	for _, record := range edgeRepo.saved {
		if record.ReasonCode != models.ReasonMissingLine {
			t.Errorf("reason = %s, want missing_line", record.ReasonCode)
		}
		if record.Qualifies {
			t.Error("record without a line must not qualify")
		}
	}
}

func TestScanUpcomingSkipsStartedGames(t *testing.T) {
	game := upcomingGame(time.Now().Add(-time.Hour))
	games := &fakeGameRepo{upcoming: []*models.Game{game}}
	svc, edgeRepo := newTestEdgeService(t, games, &fakeLineRepo{})

	result, err := svc.ScanUpcoming(context.Background(), 0)
	if err != nil {
		t.Fatalf("ScanUpcoming: %v", err)
	}
	if result.Skipped != 1 || result.Evaluated != 0 {
		t.Fatalf("expected started game to be skipped, got %+v", result)
	}
	if len(edgeRepo.saved) != 0 {
		t.Errorf("no record should be saved for a started game")
	}
}

func TestRescanEventPicksUpNewLine(t *testing.T) {
	kickoff := time.Now().Add(24 * time.Hour)
	game := upcomingGame(kickoff)
	games := &fakeGameRepo{
		upcoming: []*models.Game{game},
		byID:     map[string]*models.Game{game.EventID: game},
	}
	lines := &fakeLineRepo{lines: map[string][]*models.MarketLine{
		game.EventID: {{
			EventID:    game.EventID,
			Book:       "consensus",
			MarketType: models.MarketTypeSpread,
			Points:     -7.8,
			CapturedAt: time.Now().Add(-2 * time.Hour),
		}},
	}}
	svc, _ := newTestEdgeService(t, games, lines)
	svc.ratings.Store().Seed("bama", 2024, 1600)
	svc.ratings.Store().Seed("aub", 2024, 1400)

	if _, err := svc.ScanUpcoming(context.Background(), 0); err != nil {
		t.Fatalf("ScanUpcoming: %v", err)
	}

	// Line moves toward the model: the edge shrinks below the band.
	lines.lines[game.EventID] = append(lines.lines[game.EventID], &models.MarketLine{
		EventID:    game.EventID,
		Book:       "consensus",
		MarketType: models.MarketTypeSpread,
		Points:     -9.5,
		CapturedAt: time.Now().Add(-time.Minute),
	})

	record, err := svc.RescanEvent(context.Background(), game.EventID)
	if err != nil {
		t.Fatalf("RescanEvent: %v", err)
	}
	if math.Abs(record.RawEdge-1.0) > 1e-9 {
		t.Errorf("raw edge after move = %f, want 1.0", record.RawEdge)
	}
	if record.ReasonCode != models.ReasonEdgeTooSmall {
		t.Errorf("reason = %s, want edge_too_small", record.ReasonCode)
	}
}

func TestRescanEventRejectsCompletedGame(t *testing.T) {
	game := upcomingGame(time.Now().Add(-48 * time.Hour))
	game.Status = models.GameStatusCompleted
	games := &fakeGameRepo{byID: map[string]*models.Game{game.EventID: game}}
	svc, _ := newTestEdgeService(t, games, &fakeLineRepo{})

	if _, err := svc.RescanEvent(context.Background(), game.EventID); err == nil {
		t.Fatal("expected an error rescanning a completed game")
	}
}

func TestProjectionCacheRoundTrip(t *testing.T) {
	pc := NewProjectionCache(time.Minute)
	proj := &models.Projection{EventID: "e1", ModelVersion: "elo-v2", Spread: -3.5}

	if pc.Get("e1", "elo-v2") != nil {
		t.Fatal("cache should start empty")
	}
	pc.Set(proj)
	if got := pc.Get("e1", "elo-v2"); got == nil || got.Spread != -3.5 {
		t.Fatalf("cache get = %+v, want cached projection", got)
	}
	if pc.Get("e1", "other-model") != nil {
		t.Error("model version must partition the cache")
	}
	pc.Delete("e1", "elo-v2")
	if pc.Get("e1", "elo-v2") != nil {
		t.Error("delete should remove the entry")
	}
	pc.Set(proj)
	pc.Invalidate()
	if pc.Get("e1", "elo-v2") != nil {
		t.Error("invalidate should flush the cache")
	}
}

func TestRatingServiceRebuildPersistsSnapshot(t *testing.T) {
	gameRepo := &fakeGameRepo{}
	ratingRepo := &fakeRatingRepo{}
	repos := &repository.Repositories{
		Game:           gameRepo,
		MarketLine:     &fakeLineRepo{},
		TeamMetrics:    fakeMetricsRepo{},
		Rating:         ratingRepo,
		Edge:           &fakeEdgeRepo{},
		BacktestReport: fakeReportRepo{},
	}
	ratingCfg, _, _ := serviceConfigs()
	svc, err := NewRatingService(ratingCfg, repos, nil)
	if err != nil {
		t.Fatalf("NewRatingService: %v", err)
	}

	completed := func(eventID string, season, week, home, away int, start time.Time) *models.Game {
		return &models.Game{
			EventID:    eventID,
			Season:     season,
			Week:       week,
			HomeTeamID: "bama",
			AwayTeamID: "aub",
			HomeScore:  home,
			AwayScore:  away,
			StartTime:  start,
			Status:     models.GameStatusCompleted,
		}
	}
	base := time.Date(2023, 9, 2, 18, 0, 0, 0, time.UTC)
	gameRepo.completed = []*models.Game{
		completed("g1", 2023, 1, 28, 14, base),
		completed("g2", 2024, 1, 21, 17, base.AddDate(1, 0, 0)),
	}

	if err := svc.Rebuild(context.Background(), 2023, 2024); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	// Two teams over two seasons leaves four team-season entries.
	if len(ratingRepo.saved) != 4 {
		t.Fatalf("expected 4 persisted ratings, got %d", len(ratingRepo.saved))
	}
	bama := svc.Store().Get("bama", 2024)
	aub := svc.Store().Get("aub", 2024)
	if !(bama.Rating > aub.Rating) {
		t.Errorf("winner should out-rate loser: %f vs %f", bama.Rating, aub.Rating)
	}
	if bama.GamesPlayed != 1 {
		t.Errorf("current-season games played = %d, want 1", bama.GamesPlayed)
	}
}
