// Package config provides configuration management for the CFB market edge engine.
package config

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Rating.BlowoutCapEnabled && cfg.Rating.MarginMultiplier {
		return fmt.Errorf("rating: blowout_cap_enabled and margin_multiplier cannot both be set")
	}

	if cfg.Rating.DynamicK {
		if cfg.Rating.KNew <= 0 || cfg.Rating.KEstablished <= 0 || cfg.Rating.GamesEstablished <= 0 {
			return fmt.Errorf("rating: dynamic_k requires k_new, k_established and games_established")
		}
		if cfg.Rating.KNew < cfg.Rating.KEstablished {
			return fmt.Errorf("rating: k_new must be at least k_established")
		}
	}

	if cfg.Projection.EnsembleEnabled {
		sum := cfg.Projection.RatingWeight + cfg.Projection.CompositeWeight + cfg.Projection.EfficiencyWeight
		if math.Abs(sum-1.0) > 1e-9 {
			return fmt.Errorf("projection: ensemble weights must sum to 1, got %.6f", sum)
		}
	}

	if cfg.Edge.MinEdge >= cfg.Edge.MaxEdge {
		return fmt.Errorf("edge: min_edge must be below max_edge")
	}

	if cfg.Backtest.StartSeason > cfg.Backtest.EndSeason {
		return fmt.Errorf("backtest: start_season must not exceed end_season")
	}
	// Train/test boundary is fixed up front and must leave held-out seasons
	if cfg.Backtest.TrainEndSeason < cfg.Backtest.StartSeason || cfg.Backtest.TrainEndSeason >= cfg.Backtest.EndSeason {
		return fmt.Errorf("backtest: train_end_season must fall inside [start_season, end_season)")
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
