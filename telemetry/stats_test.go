package telemetry

import (
	"math"
	"testing"
)

func TestComputeEnergyStats(t *testing.T) {
	values := []float64{100, 10, 50, 30, 70, 20, 90, 40, 80, 60}

	mean, p10, p50, p90 := ComputeEnergyStats(values)

	if math.Abs(mean-55) > 1e-9 {
		t.Errorf("mean = %v, want 55", mean)
	}
	// Empirical quantiles return the smallest sample at or above the
	// requested cumulative weight, not an interpolated value.
	if p10 != 10 {
		t.Errorf("p10 = %v, want 10", p10)
	}
	if p50 != 50 {
		t.Errorf("p50 = %v, want 50", p50)
	}
	if p90 != 90 {
		t.Errorf("p90 = %v, want 90", p90)
	}
}

func TestComputeEnergyStatsDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputeEnergyStats(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestComputeEnergyStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeEnergyStats(nil)
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Errorf("got (%v, %v, %v, %v), want all zeros", mean, p10, p50, p90)
	}
}

func TestComputeMeanStd(t *testing.T) {
	mean, std := ComputeMeanStd([]float64{1, 3})
	if math.Abs(mean-2) > 1e-9 {
		t.Errorf("mean = %v, want 2", mean)
	}
	if math.Abs(std-math.Sqrt2) > 1e-9 {
		t.Errorf("std = %v, want sqrt(2)", std)
	}
}

func TestComputeMeanStdSingleValue(t *testing.T) {
	mean, std := ComputeMeanStd([]float64{42})
	if mean != 42 {
		t.Errorf("mean = %v, want 42", mean)
	}
	if std != 0 {
		t.Errorf("std = %v, want 0 for a single sample", std)
	}
}

func TestComputeMeanStdEmpty(t *testing.T) {
	mean, std := ComputeMeanStd(nil)
	if mean != 0 || std != 0 {
		t.Errorf("got (%v, %v), want (0, 0)", mean, std)
	}
}
