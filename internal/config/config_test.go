package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{Name: "cfb-market-edge", Environment: "development", LogLevel: "info"},
		Database: DatabaseConfig{
			Host: "localhost", Port: 5432, Name: "cfb", User: "cfb", Password: "secret",
			SSLMode: "disable", MaxConnections: 10, MaxIdleConnections: 2, PageSize: 500,
		},
		Rating: RatingConfig{
			Baseline: 1500, CarryoverFactor: 0.75, KFixed: 20,
			KNew: 32, KEstablished: 16, GamesEstablished: 8,
			BlowoutMargin: 24, BlowoutCapFactor: 0.5, MarginScale: 0.8,
			RecencyWindow: 5, RecencyDecay: 0.7, RecencyBoostScale: 0.5,
		},
		Projection: ProjectionConfig{
			ModelVersion: "elo-v2", Divisor: 25, HomeFieldAdvantage: 2.5,
			RatingWeight: 0.5, CompositeWeight: 0.3, EfficiencyWeight: 0.2,
			CompositeHFA: 2.5, EfficiencyHFA: 2.0, CompositeScale: 1.0, EfficiencyScale: 0.35,
			Anchor: AnchorConfig{
				ConferenceBound: 2, InjuryBound: 3, SharpMoveBound: 1.5,
				WeatherBound: 2, SituationalBound: 1.5, MaxTotalAdjustment: 4, SanityCeiling: 7,
			},
		},
		Edge: EdgeConfig{
			MinEdge: 2.5, MaxEdge: 5.0, DisagreementGate: 6.0,
			CalibrationVersion: "2024.1", CacheTTLSeconds: 300,
		},
		Backtest: BacktestConfig{
			StartSeason: 2019, EndSeason: 2024, TrainEndSeason: 2022,
			StakeUnit: 1, BootstrapIterations: 2000, ConfidenceLevel: 0.95,
			SubPeriodWeek: 8, OutputPath: "./output/report.json",
		},
		Scheduler: SchedulerConfig{RescanSchedule: "*/15 * * * *"},
		Metrics:   MetricsConfig{Enabled: true, Port: 9090, Path: "/metrics"},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidateRejectsBothMarginStrategies(t *testing.T) {
	cfg := validConfig()
	cfg.Rating.BlowoutCapEnabled = true
	cfg.Rating.MarginMultiplier = true

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot both be set")
}

func TestValidateRejectsEnsembleWeightsNotSummingToOne(t *testing.T) {
	cfg := validConfig()
	cfg.Projection.EnsembleEnabled = true
	cfg.Projection.RatingWeight = 0.6

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights must sum to 1")
}

func TestValidateRejectsTrainBoundaryOutsideRange(t *testing.T) {
	cfg := validConfig()
	cfg.Backtest.TrainEndSeason = cfg.Backtest.EndSeason

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "train_end_season")
}

func TestValidateRejectsInvertedEdgeBand(t *testing.T) {
	cfg := validConfig()
	cfg.Edge.MinEdge = 5.0
	cfg.Edge.MaxEdge = 2.5

	require.Error(t, Validate(cfg))
}

func TestValidateRejectsProductionWithoutSSL(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"

	require.Error(t, Validate(cfg))
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "cfb-market-edge", cfg.App.Name)
	assert.Equal(t, 1500.0, cfg.Rating.Baseline)
	assert.Equal(t, 25.0, cfg.Projection.Divisor)
	assert.Equal(t, 2.5, cfg.Edge.MinEdge)
	assert.Equal(t, 5.0, cfg.Edge.MaxEdge)
	assert.Equal(t, 2000, cfg.Backtest.BootstrapIterations)
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "hunter2")

	content := `
app:
  name: cfb-market-edge
  environment: development
  log_level: info
database:
  host: localhost
  port: 5432
  name: cfb
  user: cfb
  password: ${TEST_DB_PASSWORD}
  ssl_mode: disable
  max_connections: 10
  max_idle_connections: 2
  page_size: 500
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Database.Password)
}
