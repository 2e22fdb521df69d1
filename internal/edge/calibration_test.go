package edge

import (
	"errors"
	"math"
	"testing"

	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

func TestLoadCalibrationKnownVersion(t *testing.T) {
	cal, err := LoadCalibration("2024.1")
	if err != nil {
		t.Fatalf("LoadCalibration failed: %v", err)
	}
	if !cal.Validated {
		t.Fatalf("2024.1 should be validated")
	}
	if len(cal.Buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(cal.Buckets))
	}
}

func TestLoadCalibrationUnknownVersion(t *testing.T) {
	if _, err := LoadCalibration("1999.0"); err == nil {
		t.Fatalf("expected error for unknown version")
	}
}

func TestLoadCalibrationUnvalidatedVersion(t *testing.T) {
	_, err := LoadCalibration("2025.0-rc1")
	if !errors.Is(err, models.ErrUnvalidatedConfig) {
		t.Fatalf("expected ErrUnvalidatedConfig, got %v", err)
	}
}

func TestLookupBoundaries(t *testing.T) {
	cal, err := LoadCalibration("2024.1")
	if err != nil {
		t.Fatalf("LoadCalibration failed: %v", err)
	}

	bucket, ok := cal.Lookup(2.7)
	if !ok {
		t.Fatalf("2.7 should land in the first bucket")
	}
	if math.Abs(bucket.WinProbability-0.595) > 1e-12 || math.Abs(bucket.ExpectedValue-0.1364) > 1e-12 {
		t.Fatalf("2.7 resolved to wrong bucket: %+v", bucket)
	}

	// Upper bound is exclusive: 5.0 falls outside every bucket.
	if _, ok := cal.Lookup(5.0); ok {
		t.Fatalf("5.0 must not resolve to a bucket")
	}

	bucket, ok = cal.Lookup(3.0)
	if !ok || math.Abs(bucket.WinProbability-0.558) > 1e-12 {
		t.Fatalf("3.0 should land in the second bucket, got %+v ok=%v", bucket, ok)
	}

	if _, ok := cal.Lookup(2.49); ok {
		t.Fatalf("2.49 must not resolve to a bucket")
	}
}

func TestVersionsSorted(t *testing.T) {
	versions := Versions()
	if len(versions) < 2 {
		t.Fatalf("expected at least 2 versions, got %d", len(versions))
	}
	for i := 1; i < len(versions); i++ {
		if versions[i-1] >= versions[i] {
			t.Fatalf("versions not sorted: %v", versions)
		}
	}
}
