// Package edge compares model projections against observed market
// lines and decides bet qualification using frozen calibration tables.
package edge

import (
	"fmt"
	"sort"

	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// CalibrationBucket maps an absolute-edge sub-range to backtest-derived
// performance constants. MinEdge is inclusive, MaxEdge exclusive.
type CalibrationBucket struct {
	MinEdge        float64
	MaxEdge        float64
	WinProbability float64
	ExpectedValue  float64 // profit per unit staked
	Tier           models.ConfidenceTier
}

// Contains reports whether absEdge falls inside the bucket
func (b *CalibrationBucket) Contains(absEdge float64) bool {
	return absEdge >= b.MinEdge && absEdge < b.MaxEdge
}

// Calibration is a versioned, immutable set of edge buckets. The
// constants are frozen once a validation backtest signs them off and
// must never change in place; a revision gets a new version string.
type Calibration struct {
	Version   string
	Validated bool
	Buckets   []CalibrationBucket
}

// calibrations holds every known calibration version. Buckets derive
// from the 2019-2023 validation backtest.
var calibrations = map[string]*Calibration{
	"2024.1": {
		Version:   "2024.1",
		Validated: true,
		Buckets: []CalibrationBucket{
			{MinEdge: 2.5, MaxEdge: 3.0, WinProbability: 0.595, ExpectedValue: 0.1364, Tier: models.TierHigh},
			{MinEdge: 3.0, MaxEdge: 4.0, WinProbability: 0.558, ExpectedValue: 0.0661, Tier: models.TierMedium},
			{MinEdge: 4.0, MaxEdge: 5.0, WinProbability: 0.548, ExpectedValue: 0.0455, Tier: models.TierLow},
		},
	},
	// Pending re-validation; loading it is an error until the
	// sign-off backtest completes.
	"2025.0-rc1": {
		Version:   "2025.0-rc1",
		Validated: false,
		Buckets: []CalibrationBucket{
			{MinEdge: 2.5, MaxEdge: 3.0, WinProbability: 0.601, ExpectedValue: 0.1478, Tier: models.TierHigh},
			{MinEdge: 3.0, MaxEdge: 4.0, WinProbability: 0.561, ExpectedValue: 0.0718, Tier: models.TierMedium},
			{MinEdge: 4.0, MaxEdge: 5.0, WinProbability: 0.545, ExpectedValue: 0.0398, Tier: models.TierLow},
		},
	},
}

// LoadCalibration returns the calibration for version, rejecting
// unknown versions and versions that have not passed validation.
func LoadCalibration(version string) (*Calibration, error) {
	cal, ok := calibrations[version]
	if !ok {
		return nil, fmt.Errorf("unknown calibration version %q", version)
	}
	if !cal.Validated {
		return nil, fmt.Errorf("calibration version %q: %w", version, models.ErrUnvalidatedConfig)
	}
	return cal, nil
}

// Lookup returns the bucket containing absEdge, or false when the
// magnitude falls outside every bucket.
func (c *Calibration) Lookup(absEdge float64) (*CalibrationBucket, bool) {
	for i := range c.Buckets {
		if c.Buckets[i].Contains(absEdge) {
			return &c.Buckets[i], true
		}
	}
	return nil, false
}

// Versions lists the known calibration versions in sorted order
func Versions() []string {
	out := make([]string, 0, len(calibrations))
	for v := range calibrations {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
