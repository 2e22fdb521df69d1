// Package config provides configuration management for the CFB market edge engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Rating     RatingConfig     `mapstructure:"rating" validate:"required"`
	Projection ProjectionConfig `mapstructure:"projection" validate:"required"`
	Edge       EdgeConfig       `mapstructure:"edge" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
	PageSize           int    `mapstructure:"page_size" validate:"required,gt=0"`
}

// RatingConfig represents rating engine configuration. Exactly one of
// the margin strategies (blowout cap, log multiplier) may be enabled.
type RatingConfig struct {
	Baseline          float64 `mapstructure:"baseline" validate:"required,gt=0"`
	CarryoverFactor   float64 `mapstructure:"carryover_factor" validate:"gte=0,lte=1"`
	KFixed            float64 `mapstructure:"k_fixed" validate:"required,gt=0"`
	DynamicK          bool    `mapstructure:"dynamic_k"`
	KNew              float64 `mapstructure:"k_new" validate:"omitempty,gt=0"`
	KEstablished      float64 `mapstructure:"k_established" validate:"omitempty,gt=0"`
	GamesEstablished  int     `mapstructure:"games_established" validate:"omitempty,gt=0"`
	BlowoutCapEnabled bool    `mapstructure:"blowout_cap_enabled"`
	BlowoutMargin     int     `mapstructure:"blowout_margin" validate:"omitempty,gt=0"`
	BlowoutCapFactor  float64 `mapstructure:"blowout_cap_factor" validate:"omitempty,gt=0,lt=1"`
	MarginMultiplier  bool    `mapstructure:"margin_multiplier"`
	MarginScale       float64 `mapstructure:"margin_scale" validate:"omitempty,gt=0"`
	RecencyEnabled    bool    `mapstructure:"recency_enabled"`
	RecencyWindow     int     `mapstructure:"recency_window" validate:"omitempty,gt=0"`
	RecencyDecay      float64 `mapstructure:"recency_decay" validate:"omitempty,gt=0,lte=1"`
	RecencyBoostScale float64 `mapstructure:"recency_boost_scale" validate:"omitempty,gte=0"`
}

// ProjectionConfig represents ensemble and market-anchored projection configuration
type ProjectionConfig struct {
	ModelVersion       string       `mapstructure:"model_version" validate:"required"`
	Divisor            float64      `mapstructure:"divisor" validate:"required,gt=0"`
	HomeFieldAdvantage float64      `mapstructure:"home_field_advantage" validate:"gte=0"`
	EnsembleEnabled    bool         `mapstructure:"ensemble_enabled"`
	RatingWeight       float64      `mapstructure:"rating_weight" validate:"gte=0,lte=1"`
	CompositeWeight    float64      `mapstructure:"composite_weight" validate:"gte=0,lte=1"`
	EfficiencyWeight   float64      `mapstructure:"efficiency_weight" validate:"gte=0,lte=1"`
	CompositeHFA       float64      `mapstructure:"composite_hfa" validate:"gte=0"`
	EfficiencyHFA      float64      `mapstructure:"efficiency_hfa" validate:"gte=0"`
	CompositeScale     float64      `mapstructure:"composite_scale" validate:"omitempty,gt=0"`
	EfficiencyScale    float64      `mapstructure:"efficiency_scale" validate:"omitempty,gt=0"`
	Anchor             AnchorConfig `mapstructure:"anchor"`
}

// AnchorConfig bounds the named adjustments layered on top of the
// observed market line in market-anchored mode.
type AnchorConfig struct {
	Enabled            bool    `mapstructure:"enabled"`
	ConferenceBound    float64 `mapstructure:"conference_bound" validate:"gte=0"`
	InjuryBound        float64 `mapstructure:"injury_bound" validate:"gte=0"`
	SharpMoveBound     float64 `mapstructure:"sharp_move_bound" validate:"gte=0"`
	WeatherBound       float64 `mapstructure:"weather_bound" validate:"gte=0"`
	SituationalBound   float64 `mapstructure:"situational_bound" validate:"gte=0"`
	MaxTotalAdjustment float64 `mapstructure:"max_total_adjustment" validate:"gte=0"`
	SanityCeiling      float64 `mapstructure:"sanity_ceiling" validate:"gte=0"`
}

// EdgeConfig represents edge evaluation configuration
type EdgeConfig struct {
	MinEdge            float64 `mapstructure:"min_edge" validate:"required,gt=0"`
	MaxEdge            float64 `mapstructure:"max_edge" validate:"required,gt=0"`
	DisagreementGate   float64 `mapstructure:"disagreement_gate" validate:"required,gt=0"`
	CalibrationVersion string  `mapstructure:"calibration_version" validate:"required"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartSeason         int     `mapstructure:"start_season" validate:"required,gt=1900"`
	EndSeason           int     `mapstructure:"end_season" validate:"required,gt=1900"`
	TrainEndSeason      int     `mapstructure:"train_end_season" validate:"required,gt=1900"`
	StakeUnit           float64 `mapstructure:"stake_unit" validate:"required,gt=0"`
	BootstrapIterations int     `mapstructure:"bootstrap_iterations" validate:"required,gt=0"`
	BootstrapSeed       int64   `mapstructure:"bootstrap_seed"`
	ConfidenceLevel     float64 `mapstructure:"confidence_level" validate:"required,gt=0,lt=1"`
	SubPeriodWeek       int     `mapstructure:"sub_period_week" validate:"required,gt=0"`
	OutputPath          string  `mapstructure:"output_path" validate:"required"`
}

// SchedulerConfig represents the edge rescan schedule
type SchedulerConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	RescanSchedule string `mapstructure:"rescan_schedule" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
