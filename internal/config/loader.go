// Package config provides configuration management for the CFB market edge engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("CFB_EDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields; a missing config file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("CFB_EDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cfb-market-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("database.page_size", 500)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	// Rating engine defaults: fixed-K zero-sum Elo
	v.SetDefault("rating.baseline", 1500.0)
	v.SetDefault("rating.carryover_factor", 0.75)
	v.SetDefault("rating.k_fixed", 20.0)
	v.SetDefault("rating.k_new", 32.0)
	v.SetDefault("rating.k_established", 16.0)
	v.SetDefault("rating.games_established", 8)
	v.SetDefault("rating.blowout_margin", 24)
	v.SetDefault("rating.blowout_cap_factor", 0.5)
	v.SetDefault("rating.margin_scale", 0.8)
	v.SetDefault("rating.recency_window", 5)
	v.SetDefault("rating.recency_decay", 0.7)
	v.SetDefault("rating.recency_boost_scale", 0.5)

	v.SetDefault("projection.model_version", "elo-v2")
	v.SetDefault("projection.divisor", 25.0)
	v.SetDefault("projection.home_field_advantage", 2.5)
	v.SetDefault("projection.rating_weight", 0.5)
	v.SetDefault("projection.composite_weight", 0.3)
	v.SetDefault("projection.efficiency_weight", 0.2)
	v.SetDefault("projection.composite_hfa", 2.5)
	v.SetDefault("projection.efficiency_hfa", 2.0)
	v.SetDefault("projection.composite_scale", 1.0)
	v.SetDefault("projection.efficiency_scale", 0.35)
	v.SetDefault("projection.anchor.conference_bound", 2.0)
	v.SetDefault("projection.anchor.injury_bound", 3.0)
	v.SetDefault("projection.anchor.sharp_move_bound", 1.5)
	v.SetDefault("projection.anchor.weather_bound", 2.0)
	v.SetDefault("projection.anchor.situational_bound", 1.5)
	v.SetDefault("projection.anchor.max_total_adjustment", 4.0)
	v.SetDefault("projection.anchor.sanity_ceiling", 7.0)

	v.SetDefault("edge.min_edge", 2.5)
	v.SetDefault("edge.max_edge", 5.0)
	v.SetDefault("edge.disagreement_gate", 6.0)
	v.SetDefault("edge.calibration_version", "2024.1")
	v.SetDefault("edge.cache_ttl_seconds", 300)

	v.SetDefault("backtest.stake_unit", 1.0)
	v.SetDefault("backtest.bootstrap_iterations", 2000)
	v.SetDefault("backtest.confidence_level", 0.95)
	v.SetDefault("backtest.sub_period_week", 8)
	v.SetDefault("backtest.output_path", "./output/backtest_report.json")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.rescan_schedule", "*/15 * * * *")
}
