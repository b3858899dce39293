// Package main provides CMA-ES optimization for reef simulation parameters.
package main

import (
	"github.com/pthm-cable/reef/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Steering weights and body sizes are locked; the search covers the
// energy economy and the lifecycle chain throughput.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Energy - grazers
			{Name: "fry_eat_gain", Path: "fry.eat_gain", Min: 8, Max: 40, Default: 20},
			{Name: "fry_energy_drain", Path: "fry.energy_drain", Min: 0.004, Max: 0.03, Default: 0.01},
			{Name: "krill_eat_gain", Path: "krill.eat_gain", Min: 6, Max: 30, Default: 15},
			{Name: "krill_energy_drain", Path: "krill.energy_drain", Min: 0.002, Max: 0.02, Default: 0.006},
			// Energy - tuna
			{Name: "tuna_eat_gain", Path: "tuna.eat_gain", Min: 10, Max: 50, Default: 25},
			{Name: "tuna_energy_drain", Path: "tuna.energy_drain", Min: 0.005, Max: 0.03, Default: 0.012},
			{Name: "tuna_hunt_drain", Path: "tuna.hunt_drain", Min: 0.01, Max: 0.08, Default: 0.03},
			{Name: "tuna_hunt_threshold", Path: "tuna.hunt_energy_threshold", Min: 15, Max: 60, Default: 30},
			// Reproduction chain
			{Name: "lay_chance", Path: "fry.lay_chance", Min: 0.3, Max: 1.0, Default: 0.8},
			{Name: "lay_cooldown", Path: "fry.lay_cooldown_ticks", Min: 300, Max: 2400, Default: 900},
			{Name: "fert_chance", Path: "eggs.fertilization_chance", Min: 0.2, Max: 1.0, Default: 0.6},
			{Name: "hatching_ticks", Path: "eggs.hatching_ticks", Min: 600, Max: 3600, Default: 1800},
			// Krill lifecycle
			{Name: "offspring_interval", Path: "krill.offspring_interval_ticks", Min: 180, Max: 900, Default: 420},
			{Name: "pale_maturation", Path: "krill.pale_maturation_ticks", Min: 240, Max: 1800, Default: 720},
			// Food supply (marine snow)
			{Name: "snow_interval", Path: "detritus.ambient_interval_ticks", Min: 30, Max: 300, Default: 90},
			{Name: "snow_count", Path: "detritus.ambient_count", Min: 1, Max: 6, Default: 2},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	// Clamp values to ensure they're within bounds
	clamped := pv.Clamp(values)

	// Order must match Specs order
	i := 0

	cfg.Fry.EatGain = clamped[i]; i++
	cfg.Fry.EnergyDrain = clamped[i]; i++
	cfg.Krill.EatGain = clamped[i]; i++
	cfg.Krill.EnergyDrain = clamped[i]; i++

	cfg.Tuna.EatGain = clamped[i]; i++
	cfg.Tuna.EnergyDrain = clamped[i]; i++
	cfg.Tuna.HuntDrain = clamped[i]; i++
	cfg.Tuna.HuntEnergyThreshold = clamped[i]; i++

	cfg.Fry.LayChance = clamped[i]; i++
	cfg.Fry.LayCooldownTicks = int(clamped[i]); i++
	cfg.Eggs.FertilizationChance = clamped[i]; i++
	cfg.Eggs.HatchingTicks = int(clamped[i]); i++

	cfg.Krill.OffspringIntervalTicks = int(clamped[i]); i++
	cfg.Krill.PaleMaturationTicks = int(clamped[i]); i++

	cfg.Detritus.AmbientIntervalTicks = int(clamped[i]); i++
	cfg.Detritus.AmbientCount = int(clamped[i])
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Fry.EatGain,
		cfg.Fry.EnergyDrain,
		cfg.Krill.EatGain,
		cfg.Krill.EnergyDrain,

		cfg.Tuna.EatGain,
		cfg.Tuna.EnergyDrain,
		cfg.Tuna.HuntDrain,
		cfg.Tuna.HuntEnergyThreshold,

		cfg.Fry.LayChance,
		float64(cfg.Fry.LayCooldownTicks),
		cfg.Eggs.FertilizationChance,
		float64(cfg.Eggs.HatchingTicks),

		float64(cfg.Krill.OffspringIntervalTicks),
		float64(cfg.Krill.PaleMaturationTicks),

		float64(cfg.Detritus.AmbientIntervalTicks),
		float64(cfg.Detritus.AmbientCount),
	}
}
